package pipeline

import (
	"qaforge/internal/report"
	"qaforge/internal/runner"
)

// Process exit codes.
const (
	ExitOK              = 0 // All suites passed
	ExitExecutionFailed = 1 // At least one suite failed, crashed or was skipped
	ExitFatal           = 2 // Requirement or generation failure, nothing executed
)

// ExitCode maps a pipeline outcome to the process exit code.
func ExitCode(rep *report.CombinedReport, err error) int {
	if err != nil {
		return ExitFatal
	}
	if rep == nil || rep.Overall != runner.StatusPassed {
		return ExitExecutionFailed
	}
	return ExitOK
}
