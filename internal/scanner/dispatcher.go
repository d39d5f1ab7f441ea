package scanner

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/capsaicin/pathfuzz/internal/transport"
)

// Probe pairs a candidate with its outcome.
type Probe struct {
	URL     string
	Outcome transport.Outcome
}

// Dispatcher issues probes under a permit pool shared by every pass of a
// scan.
type Dispatcher struct {
	sem    *semaphore.Weighted
	prober Prober
	jitter time.Duration
	rng    *rand.Rand
	rngMu  sync.Mutex
}

func NewDispatcher(sem *semaphore.Weighted, prober Prober, jitter time.Duration) *Dispatcher {
	return &Dispatcher{
		sem:    sem,
		prober: prober,
		jitter: jitter,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Dispatch probes every candidate yielded by next. Feeding blocks while all
// permits are held. A permit is released as soon as its probe completes,
// before handle runs, so handle may be slow without starving other passes.
// Dispatch returns once every probe it started has been handled; handle is
// called concurrently and in completion order.
func (d *Dispatcher) Dispatch(ctx context.Context, next func() (string, bool), handle func(Probe)) error {
	var wg sync.WaitGroup

	for {
		url, ok := next()
		if !ok {
			break
		}

		if err := d.sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return err
		}

		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			d.sleep(ctx)
			outcome := d.prober.Probe(ctx, url)
			d.sem.Release(1)

			handle(Probe{URL: url, Outcome: outcome})
		}(url)
	}

	wg.Wait()
	return nil
}

func (d *Dispatcher) sleep(ctx context.Context) {
	if d.jitter <= 0 {
		return
	}

	d.rngMu.Lock()
	delay := time.Duration(d.rng.Int63n(int64(d.jitter)))
	d.rngMu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
