package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "qaforge", cfg.Name)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.True(t, cfg.Execution.ContinueOnFailure)

	// Fixed debug-first order: browser runners before the API runner.
	require.Len(t, cfg.Frameworks, 3)
	assert.Equal(t, "cypress", cfg.Frameworks[0].Name)
	assert.Equal(t, "playwright", cfg.Frameworks[1].Name)
	assert.Equal(t, "api", cfg.Frameworks[2].Name)
	assert.Equal(t, KindE2E, cfg.Frameworks[0].Kind)
	assert.Equal(t, KindE2E, cfg.Frameworks[1].Kind)
	assert.Equal(t, KindAPI, cfg.Frameworks[2].Kind)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LLM.Model, cfg.LLM.Model)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  provider: gemini
  model: gemini-2.5-flash
  api_key: file-key
execution:
  continue_on_failure: false
  default_timeout: 60s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.False(t, cfg.Execution.ContinueOnFailure)
	assert.Equal(t, 60*time.Second, cfg.GetExecutionTimeout())
	// Unset sections keep their defaults.
	assert.Len(t, cfg.Frameworks, 3)
}

func TestEnvOverridesBeatFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  provider: openai
  api_key: file-key
jira:
  issue_key: FILE-1
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JIRA_ISSUE_KEY", "ENV-7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.LLM.APIKey)
	assert.Equal(t, "ENV-7", cfg.Jira.IssueKey)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [broken"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.Model = "gpt-4o"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", loaded.LLM.Model)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.LLM.APIKey = "" },
			wantErr: "API key",
		},
		{
			name: "bad provider",
			mutate: func(c *Config) {
				c.LLM.APIKey = "k"
				c.LLM.Provider = "oracle"
			},
			wantErr: "invalid LLM provider",
		},
		{
			name: "no frameworks",
			mutate: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Frameworks = nil
			},
			wantErr: "no frameworks",
		},
		{
			name: "duplicate framework",
			mutate: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Frameworks = append(c.Frameworks, c.Frameworks[0])
			},
			wantErr: "duplicate framework",
		},
		{
			name: "skip generation tolerates missing key",
			mutate: func(c *Config) {
				c.LLM.APIKey = ""
				c.Execution.SkipGeneration = true
			},
		},
		{
			name:   "valid",
			mutate: func(c *Config) { c.LLM.APIKey = "k" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFrameworkSpecValidate(t *testing.T) {
	spec := FrameworkSpec{
		Name:       "cypress",
		Kind:       KindE2E,
		Command:    []string{"npx", "cypress", "run"},
		TargetPath: "cypress/e2e/x.cy.js",
	}
	assert.NoError(t, spec.Validate())

	bad := spec
	bad.Kind = "gui"
	assert.Error(t, bad.Validate())

	bad = spec
	bad.Command = nil
	assert.Error(t, bad.Validate())

	bad = spec
	bad.TargetPath = ""
	assert.Error(t, bad.Validate())

	bad = spec
	bad.Timeout = "fast"
	assert.Error(t, bad.Validate())
}

func TestIsSuccessExit(t *testing.T) {
	spec := FrameworkSpec{}
	assert.True(t, spec.IsSuccessExit(0))
	assert.False(t, spec.IsSuccessExit(1))

	spec.SuccessExitCodes = []int{0, 2}
	assert.True(t, spec.IsSuccessExit(2))
	assert.False(t, spec.IsSuccessExit(1))
}

func TestGetTimeout(t *testing.T) {
	spec := FrameworkSpec{}
	assert.Equal(t, time.Minute, spec.GetTimeout(time.Minute))

	spec.Timeout = "45s"
	assert.Equal(t, 45*time.Second, spec.GetTimeout(time.Minute))

	spec.Timeout = "garbage"
	assert.Equal(t, time.Minute, spec.GetTimeout(time.Minute))
}
