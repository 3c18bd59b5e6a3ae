package runner

import (
	"context"
	"fmt"
	"time"

	"qaforge/internal/classify"
	"qaforge/internal/config"
	"qaforge/internal/logging"
)

// LineFunc observes one output line during a run. The returned hint, if any,
// is appended to the run result.
type LineFunc func(framework, line string) (classify.Hint, bool)

// Options carry execution wiring shared by all adapters.
type Options struct {
	// DefaultTimeout applies when the framework spec carries none.
	DefaultTimeout time.Duration

	// OnLine is invoked for every output line, in arrival order.
	OnLine LineFunc
}

// Adapter executes one framework's suite and produces a sealed result.
type Adapter interface {
	Framework() string
	Execute(ctx context.Context) *RunResult
}

// CommandAdapter runs a framework suite through its configured command line.
// All three built-in frameworks share this execution contract and differ only
// in their spec.
type CommandAdapter struct {
	spec config.FrameworkSpec
	opts Options
}

// NewCommandAdapter creates an adapter for an arbitrary framework spec.
func NewCommandAdapter(spec config.FrameworkSpec, opts Options) *CommandAdapter {
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 300 * time.Second
	}
	return &CommandAdapter{spec: spec, opts: opts}
}

// NewCypressAdapter binds Cypress conventions: npx spec run against the
// generated suite file.
func NewCypressAdapter(spec config.FrameworkSpec, opts Options) Adapter {
	if len(spec.Command) == 0 {
		spec.Command = []string{"npx", "cypress", "run", "--spec", spec.TargetPath}
	}
	return NewCommandAdapter(spec, opts)
}

// NewPlaywrightAdapter binds Playwright conventions.
func NewPlaywrightAdapter(spec config.FrameworkSpec, opts Options) Adapter {
	if len(spec.Command) == 0 {
		spec.Command = []string{"npx", "playwright", "test", spec.TargetPath}
	}
	return NewCommandAdapter(spec, opts)
}

// NewAPIAdapter binds the jest/supertest API runner conventions.
func NewAPIAdapter(spec config.FrameworkSpec, opts Options) Adapter {
	if len(spec.Command) == 0 {
		spec.Command = []string{"npx", "jest", spec.TargetPath, "--runTestsByPath"}
	}
	return NewCommandAdapter(spec, opts)
}

// Framework returns the framework name this adapter runs.
func (a *CommandAdapter) Framework() string {
	return a.spec.Name
}

// Execute runs the suite to completion. The result is always sealed on
// return: crashed when the launch failed or the run timed out, failed on a
// non-success exit, passed otherwise.
func (a *CommandAdapter) Execute(ctx context.Context) *RunResult {
	result := NewRunResult(a.spec.Name)
	timeout := a.spec.GetTimeout(a.opts.DefaultTimeout)
	start := time.Now()

	cmd, err := startCommand(ctx, a.spec, timeout)
	if err != nil {
		logging.RunnerError("Launch failed for %s: %v", a.spec.Name, err)
		result.AppendLine(err.Error())
		result.SetPhase(PhaseCrashedLaunch)
		result.Seal(StatusCrashed, -1, time.Since(start))
		return result
	}
	result.SetPhase(PhaseLaunched)

	for line := range cmd.Lines() {
		if result.Phase == PhaseLaunched {
			result.SetPhase(PhaseStreaming)
		}
		result.AppendLine(line)
		if a.opts.OnLine != nil {
			if hint, ok := a.opts.OnLine(a.spec.Name, line); ok {
				result.AppendHint(hint)
			}
		}
	}

	exitCode, timedOut, waitErr := cmd.Wait()
	duration := time.Since(start)

	switch {
	case timedOut:
		msg := fmt.Sprintf("%s timed out after %v", a.spec.Name, timeout)
		logging.RunnerWarn("%s", msg)
		result.AppendHint(classify.Hint{Category: classify.CategoryTimeout, Advice: msg})
		result.SetPhase(PhaseTimedOut)
		result.Seal(StatusCrashed, exitCode, duration)
	case waitErr != nil:
		logging.RunnerError("Wait failed for %s: %v", a.spec.Name, waitErr)
		result.AppendLine(waitErr.Error())
		result.SetPhase(PhaseCompleted)
		result.Seal(StatusFailed, exitCode, duration)
	case a.spec.IsSuccessExit(exitCode):
		logging.Runner("%s passed: exit=%d duration=%v", a.spec.Name, exitCode, duration)
		result.SetPhase(PhaseCompleted)
		result.Seal(StatusPassed, exitCode, duration)
	default:
		logging.Runner("%s failed: exit=%d duration=%v", a.spec.Name, exitCode, duration)
		result.SetPhase(PhaseCompleted)
		result.Seal(StatusFailed, exitCode, duration)
	}

	return result
}
