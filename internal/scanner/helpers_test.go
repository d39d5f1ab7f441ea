package scanner

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/capsaicin/pathfuzz/internal/transport"
)

func createWordlist(t *testing.T, words ...string) string {
	t.Helper()
	wordlist, err := os.CreateTemp("", "wordlist-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(wordlist.Name()) })
	wordlist.WriteString(strings.Join(words, "\n") + "\n")
	wordlist.Close()
	return wordlist.Name()
}

// fakeProber answers probes from a function and records what it saw.
type fakeProber struct {
	respond func(url string) transport.Outcome
	delay   time.Duration

	fetchResp *http.Response
	fetchBody []byte
	fetchErr  error

	mu     sync.Mutex
	probed []string

	inflight    int64
	maxInflight int64
}

func (f *fakeProber) Probe(ctx context.Context, url string) transport.Outcome {
	n := atomic.AddInt64(&f.inflight, 1)
	defer atomic.AddInt64(&f.inflight, -1)
	for {
		max := atomic.LoadInt64(&f.maxInflight)
		if n <= max || atomic.CompareAndSwapInt64(&f.maxInflight, max, n) {
			break
		}
	}

	f.mu.Lock()
	f.probed = append(f.probed, url)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.respond == nil {
		return transport.Outcome{StatusCode: 404, Method: http.MethodHead}
	}
	return f.respond(url)
}

func (f *fakeProber) Fetch(ctx context.Context, url string) (*http.Response, []byte, error) {
	if f.fetchErr != nil {
		return nil, nil, f.fetchErr
	}
	if f.fetchResp == nil {
		return &http.Response{StatusCode: 404, ContentLength: -1, Header: http.Header{}}, f.fetchBody, nil
	}
	return f.fetchResp, f.fetchBody, nil
}

func (f *fakeProber) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.probed...)
}

func okOutcome(length int64) transport.Outcome {
	return transport.Outcome{StatusCode: 200, Length: length, Method: http.MethodHead, Elapsed: time.Millisecond}
}

func statusOutcome(code int) transport.Outcome {
	return transport.Outcome{StatusCode: code, Method: http.MethodHead, Elapsed: time.Millisecond}
}

// sliceSource yields candidates from a fixed list.
func sliceSource(urls ...string) func() (string, bool) {
	i := 0
	var mu sync.Mutex
	return func() (string, bool) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(urls) {
			return "", false
		}
		i++
		return urls[i-1], true
	}
}
