package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"qaforge/internal/artifact"
	"qaforge/internal/classify"
	"qaforge/internal/config"
	"qaforge/internal/generation"
	"qaforge/internal/logging"
	"qaforge/internal/pipeline"
	"qaforge/internal/requirement"
)

var version = "0.1.0"

var (
	// Global flags
	verbose     bool
	debugLogs   bool
	configPath  string
	workspace   string
	execTimeout string

	// run/generate flags
	requirementFile   string
	issueKey          string
	skipGeneration    bool
	continueOnFailure bool

	// classify flags
	classifyFile string

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "qaforge",
	Short: "qaforge - requirement-driven test generation and execution",
	Long: `qaforge converts natural-language requirements into executable test
suites and runs them across frameworks.

A run fetches the requirement (Jira issue or local file), asks an LLM for one
suite per framework, writes the suites to their runner target paths, then
executes each framework's runner one at a time. Output streams through a
failure classifier that attaches plain-language hints, and the run ends with
a combined report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, _ = os.Getwd()
		}
		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("File logging unavailable", zap.Error(err))
		}
		if debugLogs {
			logging.SetDebugMode(true)
		}

		path := configPath
		if path == "" {
			path = filepath.Join(workspace, config.DefaultConfigPath())
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		cfg.Execution.WorkspaceDir = workspace

		if issueKey != "" {
			cfg.Jira.IssueKey = issueKey
		}
		if cmd.Flags().Changed("skip-generation") {
			cfg.Execution.SkipGeneration = skipGeneration
		}
		if cmd.Flags().Changed("continue-on-failure") {
			cfg.Execution.ContinueOnFailure = continueOnFailure
		}
		if execTimeout != "" {
			if _, err := time.ParseDuration(execTimeout); err != nil {
				return fmt.Errorf("invalid --timeout %q: %w", execTimeout, err)
			}
			cfg.Execution.DefaultTimeout = execTimeout
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate suites from the requirement and execute all frameworks",
	Long: `Runs the full sequence: fetch requirement, generate one suite per
framework, execute the runners in order, and print the combined report.

Exit codes: 0 all suites passed, 1 execution failure, 2 the run never
reached execution (requirement or generation failure).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Execution.SkipGeneration {
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(pipeline.ExitFatal)
			}
		}

		ctx, cancel := signalContext()
		defer cancel()

		p, err := pipeline.New(pipeline.Options{
			Config:          cfg,
			RequirementFile: requirementFile,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(pipeline.ExitFatal)
		}

		logger.Info("Starting run", zap.String("run_id", p.RunID()), zap.String("issue", cfg.Jira.IssueKey))

		rep, err := p.Run(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(pipeline.ExitCode(rep, err))
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate test suites without executing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(pipeline.ExitFatal)
		}

		ctx, cancel := signalContext()
		defer cancel()

		doc, err := fetchRequirement(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(pipeline.ExitFatal)
		}

		client, err := generation.NewClient(cfg.LLM)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(pipeline.ExitFatal)
		}

		coordinator := generation.NewCoordinator(client, artifact.NewWriter(workspace))
		artifacts, err := coordinator.Generate(ctx, doc, cfg.Frameworks)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(pipeline.ExitFatal)
		}

		for _, a := range artifacts {
			fmt.Printf("Wrote %s suite: %s\n", a.Framework, a.Path)
		}
		return nil
	},
}

var execCmd = &cobra.Command{
	Use:   "exec [framework...]",
	Short: "Execute existing suites without regenerating them",
	Long: `Runs the framework runners against suites already on disk. With no
arguments all configured frameworks run in order; naming frameworks restricts
the sequence to those, keeping the configured order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		execCfg := *cfg
		execCfg.Execution.SkipGeneration = true
		if len(args) > 0 {
			selected := make([]config.FrameworkSpec, 0, len(args))
			for _, spec := range cfg.Frameworks {
				for _, name := range args {
					if spec.Name == name {
						selected = append(selected, spec)
					}
				}
			}
			if len(selected) == 0 {
				fmt.Fprintf(os.Stderr, "Error: no configured framework matches %v\n", args)
				os.Exit(pipeline.ExitFatal)
			}
			execCfg.Frameworks = selected
		}

		p, err := pipeline.New(pipeline.Options{Config: &execCfg})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(pipeline.ExitFatal)
		}

		rep, err := p.Run(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(pipeline.ExitCode(rep, err))
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify [line]",
	Short: "Classify runner output lines and print the matching hints",
	Long: `Feeds lines through the failure classifier. Pass one line as an
argument, a log file with --file, or pipe lines on stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		classifier := classify.Default()

		classifyLine := func(line string) {
			if hint, ok := classifier.Classify(line); ok {
				fmt.Printf("[%s] %s\n", hint.Category, hint.Advice)
			} else {
				fmt.Println("no match")
			}
		}

		if len(args) > 0 {
			classifyLine(strings.Join(args, " "))
			return nil
		}

		var in *os.File
		if classifyFile != "" {
			f, err := os.Open(classifyFile)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		} else {
			in = os.Stdin
		}

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if hint, ok := classifier.Classify(line); ok {
				fmt.Printf("%s\n  -> [%s] %s\n", line, hint.Category, hint.Advice)
			}
		}
		return scanner.Err()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resolved configuration and suite state",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("qaforge %s\n\n", version)
		fmt.Printf("Workspace:   %s\n", workspace)
		fmt.Printf("Provider:    %s (%s)\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Printf("Jira issue:  %s @ %s\n", cfg.Jira.IssueKey, valueOr(cfg.Jira.Domain, "<unset>"))
		fmt.Printf("Frameworks:  ")
		names := make([]string, 0, len(cfg.Frameworks))
		for _, f := range cfg.Frameworks {
			names = append(names, f.Name)
		}
		fmt.Println(strings.Join(names, " -> "))
		fmt.Println()

		for _, f := range cfg.Frameworks {
			path := f.TargetPath
			if !filepath.IsAbs(path) {
				path = filepath.Join(workspace, path)
			}
			state := "missing"
			if info, err := os.Stat(path); err == nil {
				state = fmt.Sprintf("present (%d bytes, %s)", info.Size(), info.ModTime().Format("2006-01-02 15:04"))
			}
			fmt.Printf("  %-12s %s: %s\n", f.Name, f.TargetPath, state)
		}

		store := requirement.NewStore(filepath.Join(workspace, "requirements"))
		fmt.Println()
		if store.Exists(cfg.Jira.IssueKey) {
			fmt.Printf("Requirement %s: cached\n", cfg.Jira.IssueKey)
		} else {
			fmt.Printf("Requirement %s: not fetched\n", cfg.Jira.IssueKey)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the qaforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qaforge %s\n", version)
	},
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so the
// controller can kill a running framework subprocess.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func fetchRequirement(ctx context.Context) (*requirement.Document, error) {
	if requirementFile != "" {
		return requirement.FromFile(requirementFile, cfg.Jira.IssueKey)
	}
	jc := cfg.Jira
	if jc.Domain == "" || jc.Email == "" || jc.APIToken == "" {
		return nil, fmt.Errorf("jira credentials not configured (set JIRA_DOMAIN, JIRA_EMAIL, JIRA_API_TOKEN) or pass --requirement-file")
	}
	client := requirement.NewJiraClient(jc.Domain, jc.Email, jc.APIToken, cfg.GetJiraTimeout())
	doc, err := client.Fetch(ctx, jc.IssueKey)
	if err != nil {
		return nil, err
	}
	store := requirement.NewStore(filepath.Join(workspace, "requirements"))
	if err := store.Save(doc); err != nil {
		logger.Warn("Could not persist requirement", zap.Error(err))
	}
	return doc, nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Write categorized debug logs under .qaforge/logs")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: .qaforge/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&execTimeout, "timeout", "", "Per-framework execution timeout (e.g. 5m, overrides config)")

	for _, c := range []*cobra.Command{runCmd, generateCmd} {
		c.Flags().StringVar(&requirementFile, "requirement-file", "", "Read the requirement from a local file instead of Jira")
		c.Flags().StringVar(&issueKey, "issue", "", "Jira issue key (overrides config)")
	}
	runCmd.Flags().BoolVar(&skipGeneration, "skip-generation", false, "Run existing suites without regenerating")
	runCmd.Flags().BoolVar(&continueOnFailure, "continue-on-failure", true, "Keep running later frameworks after a failure")

	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "Classify every line of a log file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(pipeline.ExitFatal)
	}
}
