// Package config holds all qaforge configuration. Configuration is loaded
// once at process start from YAML, overlaid with environment variables, and
// passed explicitly into the components that need it; there is no process-wide
// singleton.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all qaforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM generation backend
	LLM LLMConfig `yaml:"llm"`

	// Jira requirement source
	Jira JiraConfig `yaml:"jira"`

	// Target test frameworks, in execution order
	Frameworks []FrameworkSpec `yaml:"frameworks"`

	// Execution settings
	Execution ExecutionConfig `yaml:"execution"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ExecutionConfig configures the sequential execution controller.
type ExecutionConfig struct {
	// Keep running remaining frameworks after a failure
	ContinueOnFailure bool `yaml:"continue_on_failure"`

	// Per-runner ceiling applied when a FrameworkSpec has no timeout
	DefaultTimeout string `yaml:"default_timeout"`

	// Execute pre-existing artifacts without regenerating them
	SkipGeneration bool `yaml:"skip_generation"`

	// Directory generated artifacts and reports are rooted under
	WorkspaceDir string `yaml:"workspace_dir"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	DebugMode  bool   `yaml:"debug_mode"`
	JSONFormat bool   `yaml:"json_format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "qaforge",
		Version: "1.0.0",

		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  "120s",
		},

		Jira: JiraConfig{
			IssueKey: "KAN-1",
			Timeout:  "10s",
		},

		Frameworks: DefaultFrameworks(),

		Execution: ExecutionConfig{
			ContinueOnFailure: true,
			DefaultTimeout:    "300s",
			SkipGeneration:    false,
			WorkspaceDir:      ".",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. Missing files yield defaults;
// environment variables override file values either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "openai"
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = "gemini"
	}

	if v := os.Getenv("JIRA_EMAIL"); v != "" {
		c.Jira.Email = v
	}
	if v := os.Getenv("JIRA_API_TOKEN"); v != "" {
		c.Jira.APIToken = v
	}
	if v := os.Getenv("JIRA_DOMAIN"); v != "" {
		c.Jira.Domain = v
	}
	if v := os.Getenv("JIRA_ISSUE_KEY"); v != "" {
		c.Jira.IssueKey = v
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetJiraTimeout returns the Jira request timeout as a duration.
func (c *Config) GetJiraTimeout() time.Duration {
	d, err := time.ParseDuration(c.Jira.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetExecutionTimeout returns the default per-runner ceiling as a duration.
func (c *Config) GetExecutionTimeout() time.Duration {
	d, err := time.ParseDuration(c.Execution.DefaultTimeout)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// ValidProviders lists all supported LLM providers.
var ValidProviders = []string{"openai", "gemini"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Execution.SkipGeneration {
		if c.LLM.APIKey == "" {
			return fmt.Errorf("LLM API key not configured (set OPENAI_API_KEY or GEMINI_API_KEY)")
		}

		validProvider := false
		for _, p := range ValidProviders {
			if c.LLM.Provider == p {
				validProvider = true
				break
			}
		}
		if !validProvider {
			return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
		}
	}

	if len(c.Frameworks) == 0 {
		return fmt.Errorf("no frameworks configured")
	}
	seen := make(map[string]bool, len(c.Frameworks))
	for i := range c.Frameworks {
		if err := c.Frameworks[i].Validate(); err != nil {
			return fmt.Errorf("framework %d: %w", i, err)
		}
		if seen[c.Frameworks[i].Name] {
			return fmt.Errorf("duplicate framework name: %s", c.Frameworks[i].Name)
		}
		seen[c.Frameworks[i].Name] = true
	}

	return nil
}

// DefaultConfigPath returns the workspace-relative config location.
func DefaultConfigPath() string {
	return filepath.Join(".qaforge", "config.yaml")
}
