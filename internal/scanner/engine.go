package scanner

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/capsaicin/pathfuzz/internal/config"
	"github.com/capsaicin/pathfuzz/internal/detection"
	"github.com/capsaicin/pathfuzz/internal/transport"
)

// Prober is the HTTP capability the engine needs: HEAD/GET probes for
// candidates and a plain GET for calibration.
type Prober interface {
	Probe(ctx context.Context, url string) transport.Outcome
	detection.Fetcher
}

// Progress receives one Advance per completed probe.
type Progress interface {
	Advance()
	SetStatus(status string)
}

// Sink receives reported results as they are found. Report is called
// concurrently.
type Sink interface {
	Report(Result) error
}

type noopProgress struct{}

func (noopProgress) Advance() {}

func (noopProgress) SetStatus(string) {}

type noopSink struct{}

func (noopSink) Report(Result) error { return nil }

type Option func(*Engine)

func WithProber(p Prober) Option {
	return func(e *Engine) { e.prober = p }
}

func WithLogger(l *logrus.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithProgress(p Progress) Option {
	return func(e *Engine) { e.progress = p }
}

func WithSink(s Sink) Option {
	return func(e *Engine) { e.sink = s }
}

func WithWordlist(src WordlistSource) Option {
	return func(e *Engine) { e.wordlist = src }
}

func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

type Engine struct {
	config   *config.Config
	prober   Prober
	logger   *logrus.Logger
	progress Progress
	sink     Sink
	wordlist WordlistSource
	runID    string
}

func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		config:   cfg,
		progress: noopProgress{},
		sink:     noopSink{},
		wordlist: FileWordlist(cfg.Wordlist),
		runID:    uuid.NewString(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.prober == nil {
		e.prober = transport.FromConfig(cfg)
	}
	if e.logger == nil {
		e.logger = logrus.New()
		e.logger.SetOutput(io.Discard)
	}

	return e
}

func (e *Engine) RunID() string {
	return e.runID
}

// scan is the state shared by every pass of one Run.
type scan struct {
	*Engine
	log        *logrus.Entry
	stats      *Stats
	baseline   detection.Baseline
	dispatcher *Dispatcher
	frontier   *Frontier

	mu      sync.Mutex
	results []Result
}

// Run calibrates when smart filtering is on, then scans the target and every
// directory found below it up to the configured depth. Results come back in
// no particular order. A cancelled context stops feeding new candidates; Run
// then returns what was found so far with the context's error.
func (e *Engine) Run(ctx context.Context) ([]Result, *Stats, error) {
	s := &scan{
		Engine: e,
		log:    e.logger.WithField("run_id", e.runID),
		stats:  NewStats(),
	}

	if e.config.SmartFilter {
		s.baseline = s.calibrate(ctx)
	}

	sem := semaphore.NewWeighted(int64(e.config.Threads))
	s.dispatcher = NewDispatcher(sem, e.prober, e.config.Jitter)
	s.frontier = NewFrontier(ctx, e.config.MaxDepth, s.runPass)

	s.log.WithFields(logrus.Fields{
		"target":    e.config.Target,
		"threads":   e.config.Threads,
		"max_depth": e.config.MaxDepth,
	}).Info("scan started")

	s.frontier.Submit(Pass{Base: e.config.Target, Depth: 1})
	s.frontier.Wait()

	s.log.WithFields(logrus.Fields{
		"processed": s.stats.GetProcessed(),
		"found":     s.stats.GetFound(),
		"passes":    s.stats.GetPasses(),
	}).Info("scan finished")

	return s.results, s.stats, ctx.Err()
}

func (s *scan) calibrate(ctx context.Context) detection.Baseline {
	baseline, err := detection.Calibrate(ctx, s.prober, s.config.Target)
	if err != nil {
		s.log.WithError(err).WithField("url", baseline.URL).Warn("calibration failed, smart filter disabled")
		return baseline
	}

	s.log.WithFields(logrus.Fields{
		"url":    baseline.URL,
		"status": baseline.StatusCode,
		"length": baseline.Length,
		"lines":  baseline.Lines,
		"words":  baseline.Words,
	}).Info("calibrated")
	if baseline.WAF != "" {
		s.log.WithField("waf", baseline.WAF).Warn("target appears to sit behind a WAF")
	}
	return baseline
}

func (s *scan) runPass(ctx context.Context, pass Pass) {
	log := s.log.WithFields(logrus.Fields{"base": pass.Base, "depth": pass.Depth})

	expander, err := NewExpander(s.wordlist, pass.Base, s.config.Extensions)
	if err != nil {
		log.WithError(err).Warn("cannot open wordlist, pass skipped")
		return
	}
	defer expander.Close()

	s.stats.IncrementPasses()
	log.Debug("pass started")

	next := func() (string, bool) {
		candidate, ok := expander.Next()
		if ok {
			s.stats.IncrementTotal(1)
		}
		return candidate, ok
	}

	if err := s.dispatcher.Dispatch(ctx, next, func(p Probe) { s.handle(pass, p) }); err != nil {
		log.WithError(err).Debug("pass interrupted")
	}
	if err := expander.Err(); err != nil {
		log.WithError(err).Warn("wordlist read failed, pass ended early")
	}
	if n := expander.Skipped(); n > 0 {
		log.WithField("lines", n).Warn("skipped oversized wordlist lines")
	}

	log.Debug("pass finished")
}

func (s *scan) handle(pass Pass, p Probe) {
	out := p.Outcome

	s.stats.IncrementProcessed()
	s.stats.Observe(out.Elapsed)
	s.progress.Advance()
	s.progress.SetStatus(fmt.Sprintf("latency %dms", s.stats.Latency().Milliseconds()))

	if out.Failed() {
		s.stats.IncrementErrors()
	}

	verdict := Classify(out, s.config, s.baseline)
	if !verdict.Report {
		entry := s.log.WithFields(logrus.Fields{"url": p.URL, "reason": verdict.Reason})
		if out.Failed() {
			entry = entry.WithError(out.Err)
		} else {
			entry = entry.WithField("status", out.StatusCode)
		}
		entry.Debug("suppressed")
		return
	}

	result := Result{
		URL:           p.URL,
		StatusCode:    out.StatusCode,
		ContentLength: out.Length,
		Depth:         pass.Depth,
		Method:        out.Method,
		ElapsedMS:     out.Elapsed.Milliseconds(),
		WAFDetected:   detection.DetectWAF(out.Header),
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	s.stats.IncrementFound()
	if result.WAFDetected != "" {
		s.stats.IncrementWAFHits()
	}

	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()

	if err := s.sink.Report(result); err != nil {
		s.log.WithError(err).WithField("url", p.URL).Warn("cannot write result")
	}

	if s.frontier.Descend(pass, out.StatusCode, p.URL) {
		s.log.WithFields(logrus.Fields{"base": DirectoryBase(p.URL), "depth": pass.Depth + 1}).Debug("directory queued")
	}
}
