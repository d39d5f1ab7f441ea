package ui

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Progress is a spinner with a running count and a status text. Every
// operation, including the suspend scope, is serialized so that lines written
// through Suspend or Writer never land in the middle of a redraw. A Progress
// built with enabled false draws nothing.
type Progress struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func NewProgress(w io.Writer, enabled bool) *Progress {
	if !enabled {
		return &Progress{}
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]starting[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("req"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &Progress{bar: bar}
}

func (p *Progress) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *Progress) SetStatus(status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Describe(status)
	}
}

// Suspend clears the spinner, runs fn, then redraws.
func (p *Progress) Suspend(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		fn()
		return
	}

	_ = p.bar.Clear()
	fn()
	_ = p.bar.RenderBlank()
}

// Writer wraps w so that every write happens inside Suspend.
func (p *Progress) Writer(w io.Writer) io.Writer {
	return suspendWriter{p: p, w: w}
}

func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

type suspendWriter struct {
	p *Progress
	w io.Writer
}

func (s suspendWriter) Write(b []byte) (n int, err error) {
	s.p.Suspend(func() {
		n, err = s.w.Write(b)
	})
	return n, err
}
