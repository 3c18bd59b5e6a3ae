package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"qaforge/internal/classify"
	"qaforge/internal/runner"
)

func sealedResult(framework string, status runner.Status, exitCode int, hints ...classify.Hint) *runner.RunResult {
	r := runner.NewRunResult(framework)
	r.AppendLine("output line")
	for _, h := range hints {
		r.AppendHint(h)
	}
	r.Seal(status, exitCode, 1500*time.Millisecond)
	return r
}

func TestAggregateAllPassed(t *testing.T) {
	results := []*runner.RunResult{
		sealedResult("cypress", runner.StatusPassed, 0),
		sealedResult("playwright", runner.StatusPassed, 0),
		sealedResult("api", runner.StatusPassed, 0),
	}

	rep := Aggregate("run-1", results)
	if rep.Overall != runner.StatusPassed {
		t.Errorf("Overall = %s", rep.Overall)
	}
	if rep.RunID != "run-1" {
		t.Errorf("RunID = %s", rep.RunID)
	}
	if rep.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestAggregateAnyFailureFailsOverall(t *testing.T) {
	tests := []struct {
		name   string
		status runner.Status
	}{
		{"failed", runner.StatusFailed},
		{"crashed", runner.StatusCrashed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := []*runner.RunResult{
				sealedResult("cypress", runner.StatusPassed, 0),
				sealedResult("playwright", tt.status, 1),
			}
			rep := Aggregate("run-2", results)
			if rep.Overall != runner.StatusFailed {
				t.Errorf("Overall = %s, want failed", rep.Overall)
			}
		})
	}
}

// A framework that never started does not fail the run on its own.
func TestAggregateSkippedDoesNotFailOverall(t *testing.T) {
	results := []*runner.RunResult{
		sealedResult("cypress", runner.StatusPassed, 0),
		sealedResult("playwright", runner.StatusSkipped, -1),
	}
	rep := Aggregate("run-8", results)
	if rep.Overall != runner.StatusPassed {
		t.Errorf("Overall = %s, want passed", rep.Overall)
	}
}

func TestAggregateEmptyIsFailure(t *testing.T) {
	rep := Aggregate("run-3", nil)
	if rep.Overall != runner.StatusFailed {
		t.Errorf("Overall = %s", rep.Overall)
	}
}

func TestAggregateDoesNotMutateResults(t *testing.T) {
	r := sealedResult("cypress", runner.StatusFailed, 2)
	lines := len(r.Lines)
	hints := len(r.Hints)

	Aggregate("run-4", []*runner.RunResult{r})

	if len(r.Lines) != lines || len(r.Hints) != hints {
		t.Error("Aggregate modified a result")
	}
	if r.Status != runner.StatusFailed || r.ExitCode != 2 {
		t.Error("Aggregate changed result outcome")
	}
}

func TestRender(t *testing.T) {
	hint := classify.Hint{Category: classify.CategoryTimeout, Advice: "The page took too long to respond."}
	results := []*runner.RunResult{
		sealedResult("cypress", runner.StatusPassed, 0),
		sealedResult("playwright", runner.StatusFailed, 1, hint),
		sealedResult("api", runner.StatusSkipped, -1),
	}
	rep := Aggregate("run-5", results)

	var buf bytes.Buffer
	Render(&buf, rep)
	out := buf.String()

	for _, want := range []string{"cypress", "PASSED", "playwright", "FAILED", "api", "SKIPPED", "run-5", "timeout", "Next steps"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAllPassed(t *testing.T) {
	rep := Aggregate("run-6", []*runner.RunResult{sealedResult("cypress", runner.StatusPassed, 0)})

	var buf bytes.Buffer
	Render(&buf, rep)

	if !strings.Contains(buf.String(), "All test suites passed") {
		t.Errorf("missing pass banner:\n%s", buf.String())
	}
}

func TestWriteJSON(t *testing.T) {
	hint := classify.Hint{Category: classify.CategoryAssertion, Advice: "An assertion failed."}
	rep := Aggregate("run-7", []*runner.RunResult{
		sealedResult("cypress", runner.StatusFailed, 1, hint),
	})

	path := filepath.Join(t.TempDir(), "reports", "run-7.json")
	if err := WriteJSON(path, rep); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		RunID   string `json:"run_id"`
		Overall string `json:"overall"`
		Results []struct {
			Framework string   `json:"framework"`
			Status    string   `json:"status"`
			ExitCode  int      `json:"exit_code"`
			Hints     []string `json:"hints"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if decoded.RunID != "run-7" || decoded.Overall != "failed" {
		t.Errorf("decoded = %+v", decoded)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].Framework != "cypress" {
		t.Fatalf("results = %+v", decoded.Results)
	}
	if len(decoded.Results[0].Hints) != 1 || !strings.Contains(decoded.Results[0].Hints[0], "assertion") {
		t.Errorf("hints = %v", decoded.Results[0].Hints)
	}
}
