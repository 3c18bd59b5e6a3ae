// Package runner executes framework test suites as isolated subprocesses,
// one at a time, streaming their output through the failure classifier.
package runner

// Status is the terminal outcome of a framework run.
type Status string

const (
	StatusPassed  Status = "passed"  // Runner exited with a success code
	StatusFailed  Status = "failed"  // Runner exited with a non-success code
	StatusCrashed Status = "crashed" // Runner could not be launched or timed out
	StatusSkipped Status = "skipped" // Run never started (cancelled sequence)
)

// Phase tracks a run through its lifecycle. Transitions are strictly
// forward: Pending -> Launched -> Streaming -> terminal.
type Phase string

const (
	PhasePending       Phase = "pending"
	PhaseLaunched      Phase = "launched"
	PhaseStreaming     Phase = "streaming"
	PhaseCompleted     Phase = "completed"
	PhaseTimedOut      Phase = "timed_out"
	PhaseCrashedLaunch Phase = "crashed_launch"
)
