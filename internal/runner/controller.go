package runner

import (
	"context"
	"time"

	"qaforge/internal/classify"
	"qaforge/internal/config"
	"qaforge/internal/logging"
)

// EchoFunc receives each output line for live display. hint is non-nil when
// the line matched a classifier rule.
type EchoFunc func(framework, line string, hint *classify.Hint)

// Policy controls how the controller advances through the sequence.
type Policy struct {
	// ContinueOnFailure keeps running later frameworks after a failure.
	ContinueOnFailure bool

	// DefaultTimeout applies to frameworks without their own timeout.
	DefaultTimeout time.Duration
}

// Controller runs framework suites strictly one at a time, in the order
// given, classifying output lines as they stream.
type Controller struct {
	registry   *Registry
	classifier *classify.Classifier
	policy     Policy
	echo       EchoFunc
}

// NewController creates a controller. echo may be nil for silent runs.
func NewController(registry *Registry, classifier *classify.Classifier, policy Policy, echo EchoFunc) *Controller {
	if registry == nil {
		registry = NewRegistry()
	}
	if policy.DefaultTimeout <= 0 {
		policy.DefaultTimeout = 300 * time.Second
	}
	return &Controller{
		registry:   registry,
		classifier: classifier,
		policy:     policy,
		echo:       echo,
	}
}

// Run executes each spec in order and returns the sealed results. A failure
// under stop-on-failure policy ends the sequence early with the partial
// result list. A cancelled context marks unstarted frameworks skipped.
func (c *Controller) Run(ctx context.Context, specs []config.FrameworkSpec) []*RunResult {
	results := make([]*RunResult, 0, len(specs))

	for _, spec := range specs {
		if ctx.Err() != nil {
			r := NewRunResult(spec.Name)
			r.Seal(StatusSkipped, -1, 0)
			results = append(results, r)
			logging.Runner("Skipped %s: run cancelled", spec.Name)
			continue
		}

		opts := Options{
			DefaultTimeout: c.policy.DefaultTimeout,
			OnLine:         c.observe,
		}
		adapter := c.registry.Create(spec, opts)

		logging.Runner("Executing %s", spec.Name)
		result := adapter.Execute(ctx)
		results = append(results, result)

		if result.Status != StatusPassed && !c.policy.ContinueOnFailure {
			logging.Runner("Stopping sequence: %s %s", spec.Name, result.Status)
			break
		}
	}

	return results
}

// observe classifies every line and forwards it to the echo sink whether or
// not a rule matched.
func (c *Controller) observe(framework, line string) (classify.Hint, bool) {
	var hint classify.Hint
	matched := false

	if c.classifier != nil {
		hint, matched = c.classifier.Classify(line)
		if matched {
			logging.Classify("%s: %s -> %s", framework, truncateLine(line, 120), hint.Category)
		}
	}

	if c.echo != nil {
		if matched {
			c.echo(framework, line, &hint)
		} else {
			c.echo(framework, line, nil)
		}
	}

	return hint, matched
}

func truncateLine(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
