package reporting

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/capsaicin/pathfuzz/internal/scanner"
)

// Suspender pauses a live display while fn writes to the terminal.
type Suspender interface {
	Suspend(fn func())
}

type direct struct{}

func (direct) Suspend(fn func()) { fn() }

var (
	successColor  = color.New(color.FgGreen, color.Bold)
	redirectColor = color.New(color.FgBlue, color.Bold)
	clientColor   = color.New(color.FgRed, color.Bold)
	serverColor   = color.New(color.FgYellow, color.Bold)
	otherColor    = color.New(color.FgWhite)
)

func statusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return successColor
	case code >= 300 && code < 400:
		return redirectColor
	case code >= 400 && code < 500:
		return clientColor
	case code >= 500:
		return serverColor
	default:
		return otherColor
	}
}

// FormatLine renders a result as "[status] length | url" with the status
// colored by class.
func FormatLine(r scanner.Result) string {
	return fmt.Sprintf("%s %d | %s", statusColor(r.StatusCode).Sprintf("[%d]", r.StatusCode), r.ContentLength, r.URL)
}

// TextWriter prints one line per result. Writes are serialized and run inside
// the display's suspend scope so they never interleave with the progress line.
type TextWriter struct {
	out     io.Writer
	display Suspender
	mu      sync.Mutex
}

func NewTextWriter(out io.Writer, display Suspender) *TextWriter {
	if display == nil {
		display = direct{}
	}
	return &TextWriter{out: out, display: display}
}

func (w *TextWriter) Report(r scanner.Result) error {
	line := FormatLine(r)

	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	w.display.Suspend(func() {
		_, err = fmt.Fprintln(w.out, line)
	})
	return err
}
