// Package pipeline wires requirement fetching, suite generation, framework
// execution and reporting into one run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"qaforge/internal/artifact"
	"qaforge/internal/classify"
	"qaforge/internal/config"
	"qaforge/internal/generation"
	"qaforge/internal/logging"
	"qaforge/internal/report"
	"qaforge/internal/requirement"
	"qaforge/internal/runner"
)

// Options configure a pipeline run.
type Options struct {
	Config *config.Config

	// RequirementFile bypasses Jira and reads the requirement locally.
	RequirementFile string

	// Client overrides the LLM provider built from config. Used in tests.
	Client generation.LLMClient

	// Out receives streamed runner output and the final summary.
	// Defaults to os.Stdout.
	Out io.Writer

	// RunID overrides the generated run identifier.
	RunID string
}

// Pipeline orchestrates one requirement through generation, execution and
// reporting.
type Pipeline struct {
	cfg        *config.Config
	reqFile    string
	client     generation.LLMClient
	out        io.Writer
	runID      string
	workspace  string
	store      *requirement.Store
	registry   *runner.Registry
	classifier *classify.Classifier
}

// New builds a pipeline from options. The LLM client is only constructed
// when generation is enabled.
func New(opts Options) (*Pipeline, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	workspace := cfg.Execution.WorkspaceDir
	if workspace == "" {
		workspace = "."
	}

	client := opts.Client
	if client == nil && !cfg.Execution.SkipGeneration {
		var err error
		client, err = generation.NewClient(cfg.LLM)
		if err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		cfg:        cfg,
		reqFile:    opts.RequirementFile,
		client:     client,
		out:        out,
		runID:      runID,
		workspace:  workspace,
		store:      requirement.NewStore(filepath.Join(workspace, "requirements")),
		registry:   runner.NewRegistry(),
		classifier: classify.Default(),
	}, nil
}

// RunID returns the identifier for this pipeline run.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the full sequence. A non-nil error means the run never
// reached execution (requirement or generation failure); execution failures
// are reported through the combined report's overall status.
func (p *Pipeline) Run(ctx context.Context) (*report.CombinedReport, error) {
	logging.Boot("Starting run %s", p.runID)

	if !p.cfg.Execution.SkipGeneration {
		doc, err := p.fetchRequirement(ctx)
		if err != nil {
			return nil, err
		}
		if err := p.store.Save(doc); err != nil {
			logging.RequirementError("Could not persist requirement: %v", err)
		}

		coordinator := generation.NewCoordinator(p.client, artifact.NewWriter(p.workspace))
		fmt.Fprintf(p.out, "Generating test suites for %s (%d frameworks)...\n", doc.Key, len(p.cfg.Frameworks))
		if _, err := coordinator.Generate(ctx, doc, p.cfg.Frameworks); err != nil {
			return nil, err
		}
	}

	controller := runner.NewController(p.registry, p.classifier, runner.Policy{
		ContinueOnFailure: p.cfg.Execution.ContinueOnFailure,
		DefaultTimeout:    p.cfg.GetExecutionTimeout(),
	}, p.echo)

	results := controller.Run(ctx, p.cfg.Frameworks)

	rep := report.Aggregate(p.runID, results)
	report.Render(p.out, rep)

	reportPath := filepath.Join(p.workspace, ".qaforge", "reports", p.runID+".json")
	if err := report.WriteJSON(reportPath, rep); err != nil {
		logging.Report("Could not persist report: %v", err)
	}

	return rep, nil
}

// fetchRequirement resolves the requirement from a local file or Jira.
func (p *Pipeline) fetchRequirement(ctx context.Context) (*requirement.Document, error) {
	if p.reqFile != "" {
		return requirement.FromFile(p.reqFile, p.cfg.Jira.IssueKey)
	}

	jc := p.cfg.Jira
	if jc.Domain == "" || jc.Email == "" || jc.APIToken == "" {
		return nil, fmt.Errorf("jira credentials not configured (set JIRA_DOMAIN, JIRA_EMAIL, JIRA_API_TOKEN) or pass a requirement file")
	}

	client := requirement.NewJiraClient(jc.Domain, jc.Email, jc.APIToken, p.cfg.GetJiraTimeout())
	return client.Fetch(ctx, jc.IssueKey)
}

func (p *Pipeline) echo(framework, line string, hint *classify.Hint) {
	report.EchoLine(p.out, framework, line, hint)
}
