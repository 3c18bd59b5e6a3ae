package generation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qaforge/internal/artifact"
	"qaforge/internal/config"
	"qaforge/internal/requirement"
)

// fakeClient returns canned responses per call, or an error.
type fakeClient struct {
	responses []string
	errAt     int // 1-based call index that fails, 0 = never
	err       error
	calls     int
	prompts   []string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	return f.CompleteWithSystem(ctx, "", prompt)
}

func (f *fakeClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, system)
	if f.errAt > 0 && f.calls == f.errAt {
		return "", f.err
	}
	if f.calls <= len(f.responses) {
		return f.responses[f.calls-1], nil
	}
	return "describe('x', () => {})", nil
}

func testDoc() *requirement.Document {
	return &requirement.Document{
		Key:     "KAN-1",
		Summary: "Login works",
		Text:    "Login works\n\nUsers log in with valid credentials.",
	}
}

func TestGenerateWritesAllSuites(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{responses: []string{
		"describe('cypress', () => {})",
		"test('playwright', () => {})",
		"describe('api', () => {})",
	}}
	coord := NewCoordinator(client, artifact.NewWriter(root))

	specs := config.DefaultFrameworks()
	artifacts, err := coord.Generate(context.Background(), testDoc(), specs)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(artifacts) != 3 {
		t.Fatalf("artifacts = %d, want 3", len(artifacts))
	}
	for i, spec := range specs {
		if artifacts[i].Framework != spec.Name {
			t.Errorf("artifact %d framework = %q, want %q", i, artifacts[i].Framework, spec.Name)
		}
		if _, err := os.Stat(filepath.Join(root, spec.TargetPath)); err != nil {
			t.Errorf("suite for %s not written: %v", spec.Name, err)
		}
	}
	if client.calls != 3 {
		t.Errorf("calls = %d, want one per framework", client.calls)
	}
}

func TestGenerateUsesFrameworkPrompts(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{}
	coord := NewCoordinator(client, artifact.NewWriter(root))

	if _, err := coord.Generate(context.Background(), testDoc(), config.DefaultFrameworks()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(client.prompts[0], "Cypress") {
		t.Errorf("first prompt should target Cypress: %q", client.prompts[0][:60])
	}
	if !strings.Contains(client.prompts[1], "Playwright") {
		t.Errorf("second prompt should target Playwright")
	}
	if !strings.Contains(client.prompts[2], "supertest") {
		t.Errorf("third prompt should target the API stack")
	}
}

// A persistence failure surfaces as the writer's error type so the operator
// can tell a disk problem from a generation one.
func TestGenerateSurfacesWriteError(t *testing.T) {
	root := t.TempDir()
	// A plain file where the suite directory should go makes MkdirAll fail.
	if err := os.WriteFile(filepath.Join(root, "cypress"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	client := &fakeClient{}
	coord := NewCoordinator(client, artifact.NewWriter(root))

	artifacts, err := coord.Generate(context.Background(), testDoc(), config.DefaultFrameworks())
	if err == nil {
		t.Fatal("Expected error")
	}

	var writeErr *artifact.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("error type = %T, want *artifact.WriteError", err)
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		t.Errorf("write failure should not be wrapped as a generation error")
	}
	if writeErr.Framework != "cypress" {
		t.Errorf("Framework = %q", writeErr.Framework)
	}
	if len(artifacts) != 0 {
		t.Errorf("artifacts = %d, want none written", len(artifacts))
	}
}

func TestGenerateAbortsOnFailure(t *testing.T) {
	root := t.TempDir()
	wantErr := errors.New("rate limited")
	client := &fakeClient{errAt: 2, err: wantErr}
	coord := NewCoordinator(client, artifact.NewWriter(root))

	specs := config.DefaultFrameworks()
	artifacts, err := coord.Generate(context.Background(), testDoc(), specs)
	if err == nil {
		t.Fatal("Expected error")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T", err)
	}
	if genErr.Framework != "playwright" {
		t.Errorf("Framework = %q, want playwright", genErr.Framework)
	}
	if genErr.Key != "KAN-1" {
		t.Errorf("Key = %q", genErr.Key)
	}
	if !errors.Is(err, wantErr) {
		t.Error("should wrap the underlying error")
	}

	// First suite was written, nothing after the failure.
	if len(artifacts) != 1 {
		t.Errorf("partial artifacts = %d, want 1", len(artifacts))
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, generation must stop at the failure", client.calls)
	}
}

func TestGenerateRejectsEmptyResponse(t *testing.T) {
	root := t.TempDir()
	client := &fakeClient{responses: []string{"```js\n\n```"}}
	coord := NewCoordinator(client, artifact.NewWriter(root))

	_, err := coord.Generate(context.Background(), testDoc(), config.DefaultFrameworks()[:1])
	if err == nil {
		t.Fatal("Expected error for empty suite")
	}
	if !strings.Contains(err.Error(), "empty suite") {
		t.Errorf("err = %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "language fence",
			in:   "```javascript\ndescribe('x', () => {})\n```",
			want: "describe('x', () => {})",
		},
		{
			name: "bare fence",
			in:   "```\nconst a = 1;\n```",
			want: "const a = 1;",
		},
		{
			name: "unfenced passthrough",
			in:   "describe('x', () => {})",
			want: "describe('x', () => {})",
		},
		{
			name: "inner backticks preserved",
			in:   "```js\ncy.log(`value: ${x}`)\n```",
			want: "cy.log(`value: ${x}`)",
		},
		{
			name: "no closing fence",
			in:   "```js\nconst a = 1;",
			want: "const a = 1;",
		},
		{
			name: "surrounding whitespace",
			in:   "\n\n```js\nconst a = 1;\n```\n\n",
			want: "const a = 1;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPromptForEmbedsRequirement(t *testing.T) {
	doc := testDoc()
	spec := config.DefaultFrameworks()[0]

	system, user := PromptFor(spec, doc)
	if !strings.Contains(system, "the-internet.herokuapp.com/login") {
		t.Error("system prompt missing target site")
	}
	if !strings.Contains(user, "KAN-1") || !strings.Contains(user, doc.Text) {
		t.Error("user prompt must embed the full requirement")
	}
}
