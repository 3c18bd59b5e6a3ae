package config

import (
	"fmt"
	"time"
)

// FrameworkKind distinguishes browser E2E runners from API runners.
type FrameworkKind string

const (
	KindE2E FrameworkKind = "e2e"
	KindAPI FrameworkKind = "api"
)

// FrameworkSpec describes one target test framework: where its generated
// artifact lives, how its runner is invoked, and how its exit code is read.
// Specs are static configuration; the same ordered set drives both
// generation and execution within a run.
type FrameworkSpec struct {
	Name             string        `yaml:"name"`
	Kind             FrameworkKind `yaml:"kind"`
	Command          []string      `yaml:"command"`
	WorkingDir       string        `yaml:"working_dir"`
	TargetPath       string        `yaml:"target_path"`
	SuccessExitCodes []int         `yaml:"success_exit_codes"`
	Timeout          string        `yaml:"timeout"`
}

// Validate checks a single framework spec.
func (s *FrameworkSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("framework name is required")
	}
	if s.Kind != KindE2E && s.Kind != KindAPI {
		return fmt.Errorf("framework %s: invalid kind %q", s.Name, s.Kind)
	}
	if len(s.Command) == 0 {
		return fmt.Errorf("framework %s: command is required", s.Name)
	}
	if s.TargetPath == "" {
		return fmt.Errorf("framework %s: target_path is required", s.Name)
	}
	if s.Timeout != "" {
		if _, err := time.ParseDuration(s.Timeout); err != nil {
			return fmt.Errorf("framework %s: invalid timeout %q", s.Name, s.Timeout)
		}
	}
	return nil
}

// IsSuccessExit maps an exit code through the spec's success convention.
// An empty list means the usual zero-is-success convention.
func (s *FrameworkSpec) IsSuccessExit(code int) bool {
	if len(s.SuccessExitCodes) == 0 {
		return code == 0
	}
	for _, c := range s.SuccessExitCodes {
		if c == code {
			return true
		}
	}
	return false
}

// GetTimeout returns the per-runner ceiling, falling back to def.
func (s *FrameworkSpec) GetTimeout(def time.Duration) time.Duration {
	if s.Timeout == "" {
		return def
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return def
	}
	return d
}

// DefaultFrameworks enumerates the supported frameworks in the fixed
// debug-first execution order: the browser runners carry the debugging
// signal, so they go first; the fast API confirmation runs last.
func DefaultFrameworks() []FrameworkSpec {
	return []FrameworkSpec{
		{
			Name:       "cypress",
			Kind:       KindE2E,
			Command:    []string{"npx", "cypress", "run", "--spec", "cypress/e2e/generated_tests.cy.js"},
			WorkingDir: ".",
			TargetPath: "cypress/e2e/generated_tests.cy.js",
			Timeout:    "300s",
		},
		{
			Name:       "playwright",
			Kind:       KindE2E,
			Command:    []string{"npx", "playwright", "test", "tests/generated_tests.spec.js"},
			WorkingDir: ".",
			TargetPath: "tests/generated_tests.spec.js",
			Timeout:    "300s",
		},
		{
			Name:       "api",
			Kind:       KindAPI,
			Command:    []string{"npx", "jest", "api/generated_tests.api.test.js", "--runTestsByPath"},
			WorkingDir: ".",
			TargetPath: "api/generated_tests.api.test.js",
			Timeout:    "120s",
		},
	}
}
