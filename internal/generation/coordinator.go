package generation

import (
	"context"
	"fmt"
	"strings"

	"qaforge/internal/artifact"
	"qaforge/internal/config"
	"qaforge/internal/logging"
	"qaforge/internal/requirement"
)

// GenerationError carries the framework and issue key of a failed generation.
// Any generation failure aborts the run before execution starts.
type GenerationError struct {
	Framework string
	Key       string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s suite for %s: %v", e.Framework, e.Key, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Coordinator drives one LLM request per framework and writes the results.
type Coordinator struct {
	client LLMClient
	writer *artifact.Writer
}

// NewCoordinator creates a coordinator over a client and an artifact writer.
func NewCoordinator(client LLMClient, writer *artifact.Writer) *Coordinator {
	return &Coordinator{client: client, writer: writer}
}

// Generate produces and writes a suite for each framework spec in order.
// The returned text is used verbatim apart from code-fence stripping; the
// only structural validation is a non-empty check. On failure the partial
// artifact list written so far is returned alongside the error.
func (c *Coordinator) Generate(ctx context.Context, doc *requirement.Document, specs []config.FrameworkSpec) ([]artifact.Artifact, error) {
	artifacts := make([]artifact.Artifact, 0, len(specs))

	for _, spec := range specs {
		timer := logging.StartTimer(logging.CategoryGeneration, "generate "+spec.Name)

		system, user := PromptFor(spec, doc)
		raw, err := c.client.CompleteWithSystem(ctx, system, user)
		if err != nil {
			timer.Stop()
			return artifacts, &GenerationError{Framework: spec.Name, Key: doc.Key, Err: err}
		}

		source := StripCodeFence(raw)
		if strings.TrimSpace(source) == "" {
			timer.Stop()
			return artifacts, &GenerationError{Framework: spec.Name, Key: doc.Key, Err: fmt.Errorf("empty suite returned")}
		}

		a := artifact.Artifact{
			Framework: spec.Name,
			Path:      spec.TargetPath,
			Source:    source,
		}
		// A write failure surfaces as the writer's own error type; it is a
		// persistence problem, not a generation one.
		if err := c.writer.Write(&a); err != nil {
			timer.Stop()
			return artifacts, err
		}

		artifacts = append(artifacts, a)
		timer.StopWithInfo()
	}

	return artifacts, nil
}

// StripCodeFence removes a wrapping markdown code fence from an LLM response.
// The prompt forbids markdown but responses still arrive fenced often enough
// that the runner would otherwise choke on the first line. Inner backticks
// and unfenced text pass through untouched.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line (``` or ```lang).
	lines = lines[1:]

	// Drop a closing fence if present.
	if last := strings.TrimSpace(lines[len(lines)-1]); last == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
