// Package report folds framework run results into a combined report and
// renders it for the console and disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"qaforge/internal/logging"
	"qaforge/internal/runner"
)

// CombinedReport is the unified outcome of one orchestration run.
type CombinedReport struct {
	RunID       string              `json:"run_id"`
	Results     []*runner.RunResult `json:"results"`
	Overall     runner.Status       `json:"overall"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// Aggregate folds sealed results into a combined report. The inputs are not
// modified. Overall is failed when any framework failed or crashed; skipped
// frameworks don't fail the run. An empty result list is a failure.
func Aggregate(runID string, results []*runner.RunResult) *CombinedReport {
	overall := runner.StatusPassed
	if len(results) == 0 {
		overall = runner.StatusFailed
	}
	for _, r := range results {
		if r.Status == runner.StatusFailed || r.Status == runner.StatusCrashed {
			overall = runner.StatusFailed
			break
		}
	}

	logging.Report("Aggregated run %s: %d results, overall=%s", runID, len(results), overall)

	return &CombinedReport{
		RunID:       runID,
		Results:     results,
		Overall:     overall,
		GeneratedAt: time.Now(),
	}
}

// reportJSON is the persisted shape. RunResult keeps its mutation guard
// unexported, so the serializable fields are lifted out explicitly.
type reportJSON struct {
	RunID       string       `json:"run_id"`
	Overall     string       `json:"overall"`
	GeneratedAt time.Time    `json:"generated_at"`
	Results     []resultJSON `json:"results"`
}

type resultJSON struct {
	Framework string   `json:"framework"`
	Status    string   `json:"status"`
	ExitCode  int      `json:"exit_code"`
	Duration  string   `json:"duration"`
	Lines     int      `json:"line_count"`
	Hints     []string `json:"hints,omitempty"`
}

// WriteJSON persists the report to path, creating parent directories.
func WriteJSON(path string, r *CombinedReport) error {
	out := reportJSON{
		RunID:       r.RunID,
		Overall:     string(r.Overall),
		GeneratedAt: r.GeneratedAt,
		Results:     make([]resultJSON, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		rj := resultJSON{
			Framework: res.Framework,
			Status:    string(res.Status),
			ExitCode:  res.ExitCode,
			Duration:  res.Duration.String(),
			Lines:     len(res.Lines),
		}
		for _, h := range res.Hints {
			rj.Hints = append(rj.Hints, fmt.Sprintf("[%s] %s", h.Category, h.Advice))
		}
		out.Results = append(out.Results, rj)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logging.Report("Wrote report to %s", path)
	return nil
}
