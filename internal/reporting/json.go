package reporting

import (
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/capsaicin/pathfuzz/internal/scanner"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonLine struct {
	RunID string `json:"run_id"`
	scanner.Result
}

// JSONWriter emits one JSON object per result, each on its own line.
type JSONWriter struct {
	enc     *jsoniter.Encoder
	runID   string
	display Suspender
	mu      sync.Mutex
}

func NewJSONWriter(out io.Writer, runID string, display Suspender) *JSONWriter {
	if display == nil {
		display = direct{}
	}
	return &JSONWriter{
		enc:     json.NewEncoder(out),
		runID:   runID,
		display: display,
	}
}

func (w *JSONWriter) Report(r scanner.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err error
	w.display.Suspend(func() {
		err = w.enc.Encode(jsonLine{RunID: w.runID, Result: r})
	})
	return err
}
