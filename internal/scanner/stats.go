package scanner

import (
	"sync/atomic"
	"time"
)

type Stats struct {
	Total     int64
	Processed int64
	Found     int64
	Errors    int64
	WAFHits   int64
	Passes    int64
	StartTime time.Time

	// latency is the smoothed probe latency in nanoseconds, 0 until the
	// first sample.
	latency int64
}

func NewStats() *Stats {
	return &Stats{
		StartTime: time.Now(),
	}
}

func (s *Stats) IncrementProcessed() {
	atomic.AddInt64(&s.Processed, 1)
}

func (s *Stats) IncrementFound() {
	atomic.AddInt64(&s.Found, 1)
}

func (s *Stats) IncrementErrors() {
	atomic.AddInt64(&s.Errors, 1)
}

func (s *Stats) IncrementWAFHits() {
	atomic.AddInt64(&s.WAFHits, 1)
}

func (s *Stats) IncrementPasses() {
	atomic.AddInt64(&s.Passes, 1)
}

func (s *Stats) IncrementTotal(delta int64) {
	atomic.AddInt64(&s.Total, delta)
}

// Observe folds one probe latency into the estimate: the first sample is
// taken as is, later ones are averaged with the prior value. The load and
// store are separate, so concurrent samples can overwrite each other. The
// estimate is only shown on the progress line and tolerates that.
func (s *Stats) Observe(d time.Duration) {
	prior := atomic.LoadInt64(&s.latency)
	if prior == 0 {
		atomic.StoreInt64(&s.latency, int64(d))
		return
	}
	atomic.StoreInt64(&s.latency, (prior+int64(d))/2)
}

func (s *Stats) Latency() time.Duration {
	return time.Duration(atomic.LoadInt64(&s.latency))
}

func (s *Stats) GetProcessed() int64 {
	return atomic.LoadInt64(&s.Processed)
}

func (s *Stats) GetFound() int64 {
	return atomic.LoadInt64(&s.Found)
}

func (s *Stats) GetErrors() int64 {
	return atomic.LoadInt64(&s.Errors)
}

func (s *Stats) GetWAFHits() int64 {
	return atomic.LoadInt64(&s.WAFHits)
}

func (s *Stats) GetPasses() int64 {
	return atomic.LoadInt64(&s.Passes)
}

func (s *Stats) GetTotal() int64 {
	return atomic.LoadInt64(&s.Total)
}

// Rate returns completed probes per second since the scan started.
func (s *Stats) Rate() float64 {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.GetProcessed()) / elapsed
}
