package scanner

import (
	"github.com/capsaicin/pathfuzz/internal/config"
	"github.com/capsaicin/pathfuzz/internal/detection"
	"github.com/capsaicin/pathfuzz/internal/transport"
)

type Reason int

const (
	Reported Reason = iota
	Failed
	ExcludedStatus
	ExcludedLength
	Calibrated
)

func (r Reason) String() string {
	switch r {
	case Reported:
		return "reported"
	case Failed:
		return "failed"
	case ExcludedStatus:
		return "excluded-status"
	case ExcludedLength:
		return "excluded-length"
	case Calibrated:
		return "calibrated"
	default:
		return "unknown"
	}
}

type Verdict struct {
	Report bool
	Reason Reason
}

// Classify decides whether an outcome is shown. Rules are checked in order
// and the first one that matches suppresses the outcome.
func Classify(out transport.Outcome, cfg *config.Config, baseline detection.Baseline) Verdict {
	switch {
	case out.Failed():
		return Verdict{Reason: Failed}
	case cfg.ExcludesStatus(out.StatusCode):
		return Verdict{Reason: ExcludedStatus}
	case cfg.ExcludesLength(out.Length):
		return Verdict{Reason: ExcludedLength}
	case cfg.SmartFilter && baseline.Suppresses(out.Length):
		return Verdict{Reason: Calibrated}
	}
	return Verdict{Report: true, Reason: Reported}
}
