package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"qaforge/internal/classify"
	"qaforge/internal/runner"
)

var (
	successColor = lipgloss.Color("#8BC34A")
	failureColor = lipgloss.Color("#e53935")
	warningColor = lipgloss.Color("#FFC107")
	mutedColor   = lipgloss.Color("#6b7280")

	titleStyle  = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(failureColor).Bold(true)
	skipStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	hintStyle   = lipgloss.NewStyle().Foreground(warningColor)
	detailStyle = lipgloss.NewStyle().Foreground(mutedColor)
)

func statusStyle(s runner.Status) lipgloss.Style {
	switch s {
	case runner.StatusPassed:
		return passStyle
	case runner.StatusSkipped:
		return skipStyle
	default:
		return failStyle
	}
}

func statusLabel(s runner.Status) string {
	switch s {
	case runner.StatusPassed:
		return "PASSED"
	case runner.StatusFailed:
		return "FAILED"
	case runner.StatusCrashed:
		return "CRASHED"
	case runner.StatusSkipped:
		return "SKIPPED"
	}
	return strings.ToUpper(string(s))
}

// EchoLine writes one streamed runner output line, with the classifier hint
// inline when the line matched a rule.
func EchoLine(w io.Writer, framework, line string, hint *classify.Hint) {
	fmt.Fprintf(w, "%s %s\n", detailStyle.Render("["+framework+"]"), line)
	if hint != nil {
		fmt.Fprintln(w, hintStyle.Render(fmt.Sprintf("  ai hint [%s]: %s", hint.Category, hint.Advice)))
	}
}

// Render writes the console summary: one line per framework, its hints, and
// the overall verdict.
func Render(w io.Writer, r *CombinedReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Test Run Summary"))
	fmt.Fprintln(w, detailStyle.Render("run "+r.RunID))
	fmt.Fprintln(w)

	for _, res := range r.Results {
		line := fmt.Sprintf("  %-12s %s", res.Framework, statusStyle(res.Status).Render(statusLabel(res.Status)))
		if res.Status != runner.StatusSkipped {
			line += detailStyle.Render(fmt.Sprintf("  exit=%d  %s", res.ExitCode, res.Duration.Round(10*time.Millisecond)))
		}
		fmt.Fprintln(w, line)

		for _, h := range res.Hints {
			fmt.Fprintln(w, hintStyle.Render(fmt.Sprintf("    hint [%s]: %s", h.Category, h.Advice)))
		}
	}

	fmt.Fprintln(w)
	if r.Overall == runner.StatusPassed {
		fmt.Fprintln(w, passStyle.Render("All test suites passed."))
	} else {
		fmt.Fprintln(w, failStyle.Render("Some test suites did not pass."))
		fmt.Fprintln(w, detailStyle.Render("Next steps: review the hints above, fix the application or regenerate the suites, then run again."))
	}
}
