package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		debug   bool
		warning bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(tt.level, &buf)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			logger.Debug("debug line")
			logger.Warn("warn line")

			if got := strings.Contains(buf.String(), "debug line"); got != tt.debug {
				t.Errorf("debug visible = %v, expected %v", got, tt.debug)
			}
			if got := strings.Contains(buf.String(), "warn line"); got != tt.warning {
				t.Errorf("warn visible = %v, expected %v", got, tt.warning)
			}
		})
	}
}

func TestNew_Format(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.WithField("url", "http://x/a").Info("probe")

	out := buf.String()
	if strings.Contains(out, "time=") {
		t.Errorf("expected no timestamp, got %q", out)
	}
	if !strings.Contains(out, "url=\"http://x/a\"") && !strings.Contains(out, "url=http://x/a") {
		t.Errorf("expected url field, got %q", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("loud", &bytes.Buffer{}); err == nil {
		t.Error("expected error for invalid level")
	}
}
