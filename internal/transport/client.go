package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/capsaicin/pathfuzz/internal/config"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Outcome is the result of probing one candidate. A transport failure has
// Err set and carries no status or length.
type Outcome struct {
	StatusCode int
	Length     int64
	Elapsed    time.Duration
	Method     string
	Header     http.Header
	Err        error
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

type Client struct {
	httpClient    *http.Client
	headers       map[string]string
	limiters      map[string]*rate.Limiter
	limitersMu    sync.RWMutex
	rateLimit     int
	retryAttempts int
	maxBodyBytes  int64
	rng           *rand.Rand
	rngMu         sync.Mutex
}

func NewClient(timeout int, rateLimit int, retryAttempts int, maxBodyMB int, insecure bool) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   100,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: time.Duration(timeout) * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				DisableCompression:    true,
				TLSClientConfig:       &tls.Config{InsecureSkipVerify: insecure},
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 120 * time.Second,
				}).DialContext,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headers:       make(map[string]string),
		limiters:      make(map[string]*rate.Limiter),
		rateLimit:     rateLimit,
		retryAttempts: retryAttempts,
		maxBodyBytes:  int64(maxBodyMB) * 1024 * 1024,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FromConfig builds a client with the scan's transport settings and custom headers.
func FromConfig(cfg *config.Config) *Client {
	c := NewClient(cfg.Timeout, cfg.RateLimit, cfg.RetryAttempts, cfg.MaxResponseMB, cfg.Insecure)
	for key, value := range cfg.CustomHeaders {
		c.headers[key] = value
	}
	return c
}

func (c *Client) getRateLimiter(host string) *rate.Limiter {
	if c.rateLimit <= 0 {
		return nil
	}

	c.limitersMu.RLock()
	limiter, exists := c.limiters[host]
	c.limitersMu.RUnlock()

	if exists {
		return limiter
	}

	c.limitersMu.Lock()
	defer c.limitersMu.Unlock()

	if limiter, exists := c.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(c.rateLimit), 1)
	c.limiters[host] = limiter
	return limiter
}

func (c *Client) wait(ctx context.Context, rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	limiter := c.getRateLimiter(parsedURL.Host)
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter cancelled: %w", err)
		}
	}
	return nil
}

func (c *Client) jitter(attempt int) time.Duration {
	ceiling := 30 * time.Second
	base := time.Duration(math.Pow(2, float64(attempt))) * time.Second
	if base > ceiling {
		base = ceiling
	}
	c.rngMu.Lock()
	d := time.Duration(c.rng.Int63n(int64(base)))
	c.rngMu.Unlock()
	return d
}

func (c *Client) userAgent() string {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return userAgents[c.rng.Intn(len(userAgents))]
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent())
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// Probe sends HEAD and, when the server answers 405, repeats the request as
// GET. Elapsed spans both attempts. The rate limiter is consulted once per
// probe; the fallback rides on the HEAD's token.
func (c *Client) Probe(ctx context.Context, rawURL string) Outcome {
	if err := c.wait(ctx, rawURL); err != nil {
		return Outcome{Err: err}
	}

	start := time.Now()

	out := c.attempt(ctx, http.MethodHead, rawURL)
	if !out.Failed() && out.StatusCode == http.StatusMethodNotAllowed {
		out = c.attempt(ctx, http.MethodGet, rawURL)
	}

	out.Elapsed = time.Since(start)
	return out
}

func (c *Client) attempt(ctx context.Context, method, rawURL string) Outcome {
	req, err := c.newRequest(ctx, method, rawURL)
	if err != nil {
		return Outcome{Err: err}
	}

	resp, body, err := c.do(ctx, req)
	if err != nil {
		return Outcome{Err: err}
	}

	length := resp.ContentLength
	if length < 0 {
		length = int64(len(body))
	}

	return Outcome{
		StatusCode: resp.StatusCode,
		Length:     length,
		Method:     method,
		Header:     resp.Header,
	}
}

// Fetch issues a GET and returns the response with its body, capped at the
// configured size.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*http.Response, []byte, error) {
	if err := c.wait(ctx, rawURL); err != nil {
		return nil, nil, err
	}

	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, nil, err
	}
	return c.do(ctx, req)
}

// do retries transport and body-read errors only. Any HTTP status, 5xx
// included, is a completed response.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	req = req.WithContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= c.retryAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.jitter(attempt - 1)
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := c.readBody(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return resp, body, nil
	}

	return nil, nil, fmt.Errorf("request failed after %d attempts: %w", c.retryAttempts+1, lastErr)
}

func (c *Client) readBody(body io.ReadCloser) ([]byte, error) {
	limitedReader := io.LimitReader(body, c.maxBodyBytes)
	return io.ReadAll(limitedReader)
}
