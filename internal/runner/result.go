package runner

import (
	"time"

	"qaforge/internal/classify"
)

// RunResult is the record of one framework run. It is append-only while the
// run streams and immutable once sealed.
type RunResult struct {
	Framework string
	ExitCode  int
	Duration  time.Duration
	Lines     []string
	Hints     []classify.Hint
	Status    Status
	Phase     Phase

	sealed bool
}

// NewRunResult creates a pending result for a framework.
func NewRunResult(framework string) *RunResult {
	return &RunResult{
		Framework: framework,
		ExitCode:  -1,
		Phase:     PhasePending,
	}
}

// AppendLine records an output line. No-op after sealing.
func (r *RunResult) AppendLine(line string) {
	if r.sealed {
		return
	}
	r.Lines = append(r.Lines, line)
}

// AppendHint records a classifier hint. No-op after sealing.
func (r *RunResult) AppendHint(h classify.Hint) {
	if r.sealed {
		return
	}
	r.Hints = append(r.Hints, h)
}

// SetPhase advances the lifecycle phase. No-op after sealing.
func (r *RunResult) SetPhase(p Phase) {
	if r.sealed {
		return
	}
	r.Phase = p
}

// Seal fixes the terminal outcome. Further mutation is ignored.
func (r *RunResult) Seal(status Status, exitCode int, d time.Duration) {
	if r.sealed {
		return
	}
	r.Status = status
	r.ExitCode = exitCode
	r.Duration = d
	r.sealed = true
}

// Sealed reports whether the result is final.
func (r *RunResult) Sealed() bool {
	return r.sealed
}
