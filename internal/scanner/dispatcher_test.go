package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/capsaicin/pathfuzz/internal/transport"
)

func candidates(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://x/%d", i)
	}
	return urls
}

func TestDispatch_HandlesEveryCandidate(t *testing.T) {
	prober := &fakeProber{respond: func(url string) transport.Outcome { return okOutcome(1) }}
	d := NewDispatcher(semaphore.NewWeighted(4), prober, 0)

	var mu sync.Mutex
	var handled []string
	urls := candidates(50)

	err := d.Dispatch(context.Background(), sliceSource(urls...), func(p Probe) {
		mu.Lock()
		handled = append(handled, p.URL)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(handled) != len(urls) {
		t.Fatalf("expected %d handled, got %d", len(urls), len(handled))
	}
	sort.Strings(handled)
	expected := append([]string(nil), urls...)
	sort.Strings(expected)
	for i := range expected {
		if handled[i] != expected[i] {
			t.Fatalf("missing %s", expected[i])
		}
	}
}

func TestDispatch_RespectsCeiling(t *testing.T) {
	prober := &fakeProber{
		respond: func(url string) transport.Outcome { return okOutcome(1) },
		delay:   5 * time.Millisecond,
	}
	sem := semaphore.NewWeighted(3)
	d := NewDispatcher(sem, prober, 0)

	// Two passes dispatching at once share the same permits.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Dispatch(context.Background(), sliceSource(candidates(20)...), func(Probe) {})
		}()
	}
	wg.Wait()

	if max := atomic.LoadInt64(&prober.maxInflight); max > 3 {
		t.Errorf("expected at most 3 in-flight probes, saw %d", max)
	}
	if got := len(prober.urls()); got != 40 {
		t.Errorf("expected 40 probes, got %d", got)
	}
}

func TestDispatch_PermitReleasedBeforeHandle(t *testing.T) {
	prober := &fakeProber{respond: func(url string) transport.Outcome { return okOutcome(1) }}
	sem := semaphore.NewWeighted(1)
	d := NewDispatcher(sem, prober, 0)

	err := d.Dispatch(context.Background(), sliceSource("http://x/a"), func(Probe) {
		if !sem.TryAcquire(1) {
			t.Error("expected permit to be free while handling")
			return
		}
		sem.Release(1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatch_Jitter(t *testing.T) {
	prober := &fakeProber{respond: func(url string) transport.Outcome { return okOutcome(1) }}
	d := NewDispatcher(semaphore.NewWeighted(10), prober, 30*time.Millisecond)

	start := time.Now()
	d.Dispatch(context.Background(), sliceSource(candidates(10)...), func(Probe) {})
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("jitter should stay below its bound, took %s", elapsed)
	}
	if got := len(prober.urls()); got != 10 {
		t.Errorf("expected 10 probes, got %d", got)
	}
}

func TestDispatch_Cancelled(t *testing.T) {
	prober := &fakeProber{
		respond: func(url string) transport.Outcome { return okOutcome(1) },
		delay:   20 * time.Millisecond,
	}
	d := NewDispatcher(semaphore.NewWeighted(1), prober, 0)

	ctx, cancel := context.WithCancel(context.Background())
	var handled int64
	done := make(chan error, 1)
	go func() {
		done <- d.Dispatch(ctx, sliceSource(candidates(100)...), func(Probe) {
			atomic.AddInt64(&handled, 1)
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("expected cancellation error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not stop after cancellation")
	}

	if n := atomic.LoadInt64(&handled); n >= 100 {
		t.Errorf("expected feeding to stop early, handled %d", n)
	}
}
