package detection

import (
	"context"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/capsaicin/pathfuzz/internal/config"
)

const (
	tokenLength = 12
	// lengthTolerance is the exclusive bound on |length - baseline| that still
	// counts as the not-found page.
	lengthTolerance = 5
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Baseline is the signature of the target's not-found response. The zero
// value is inactive and suppresses nothing.
type Baseline struct {
	Active     bool
	URL        string
	StatusCode int
	Length     int64
	Lines      int
	Words      int
	WAF        string
}

// Suppresses reports whether a response of this length looks like the
// not-found page.
func (b Baseline) Suppresses(length int64) bool {
	if !b.Active {
		return false
	}
	if length == b.Length {
		return true
	}
	return b.Length > 0 && abs(length-b.Length) < lengthTolerance
}

// Fetcher issues a GET and returns the response with its body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, []byte, error)
}

var calRng = struct {
	mu  sync.Mutex
	rng *rand.Rand
}{
	rng: rand.New(rand.NewSource(time.Now().UnixNano())),
}

// RandomToken returns n random alphanumeric characters.
func RandomToken(n int) string {
	calRng.mu.Lock()
	defer calRng.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[calRng.rng.Intn(len(tokenAlphabet))]
	}
	return string(b)
}

// Calibrate requests a random path that should not exist and records the
// response signature. Any failure yields an inactive baseline and the error.
func Calibrate(ctx context.Context, fetcher Fetcher, target string) (Baseline, error) {
	url := config.Resolve(target, RandomToken(tokenLength))

	resp, body, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return Baseline{URL: url}, err
	}

	length := resp.ContentLength
	if length < 0 {
		length = int64(len(body))
	}

	content := string(body)
	waf := DetectWAF(resp.Header)
	if waf == "" {
		waf = DetectWAFFromBody(content)
	}

	return Baseline{
		Active:     true,
		URL:        url,
		StatusCode: resp.StatusCode,
		Length:     length,
		Lines:      strings.Count(content, "\n") + 1,
		Words:      len(strings.Fields(content)),
		WAF:        waf,
	}, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
