package fix

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vetdiff/vetdiff/internal/review"
	"github.com/vetdiff/vetdiff/internal/rules"
)

// mockProvider returns canned completions keyed by a substring of the prompt.
type mockProvider struct {
	response string
	err      error
	prompts  []string
}

func (m *mockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func fixableViolation(path, content string, line int) review.Violation {
	return review.Violation{
		Rule: rules.AntiPattern{
			ID:          "dynamic_atom_creation",
			Name:        "Dynamic atom creation",
			Description: "Atoms are never garbage collected",
		},
		FilePath:      path,
		LineNumber:    line,
		Content:       content,
		Severity:      rules.SeverityCritical,
		Language:      rules.LangElixir,
		FixSuggestion: "Use String.to_existing_atom/1",
		AutoFixable:   true,
		Confidence:    0.85,
	}
}

func TestRunDryRun(t *testing.T) {
	provider := &mockProvider{response: "  String.to_existing_atom(name)"}
	engine := NewEngine(provider)

	v := fixableViolation("/nonexistent/user.ex", "  String.to_atom(name)", 2)
	result, err := engine.Run(context.Background(), &Request{
		Violations:          []review.Violation{v},
		DryRun:              true,
		ConfidenceThreshold: 0.8,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Fixed != 1 || result.Failed != 0 || result.Skipped != 0 {
		t.Errorf("result = %+v", result)
	}
	// Dry run never touches files.
	if len(result.FilesModified) != 0 {
		t.Errorf("FilesModified = %v, want none", result.FilesModified)
	}
	if result.Details[0].Applied {
		t.Error("dry run must not mark details as applied")
	}
	if result.Details[0].FixedCode != "  String.to_existing_atom(name)" {
		t.Errorf("FixedCode = %q", result.Details[0].FixedCode)
	}
}

func TestRunAppliesFix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.ex")
	original := "defmodule User do\n  String.to_atom(name)\nend\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := &mockProvider{response: "  String.to_existing_atom(name)"}
	engine := NewEngine(provider)

	v := fixableViolation(path, "  String.to_atom(name)", 2)
	result, err := engine.Run(context.Background(), &Request{
		Violations:          []review.Violation{v},
		ConfidenceThreshold: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Fixed != 1 {
		t.Fatalf("Fixed = %d, want 1", result.Fixed)
	}
	if len(result.FilesModified) != 1 || result.FilesModified[0] != path {
		t.Errorf("FilesModified = %v", result.FilesModified)
	}
	if !result.Details[0].Applied {
		t.Error("detail should be marked applied")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "defmodule User do\n  String.to_existing_atom(name)\nend\n"
	if string(data) != want {
		t.Errorf("file = %q, want %q", data, want)
	}
}

func TestRunRefusesDriftedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "user.ex")
	if err := os.WriteFile(path, []byte("something else entirely\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	provider := &mockProvider{response: "replacement"}
	engine := NewEngine(provider)

	v := fixableViolation(path, "  String.to_atom(name)", 1)
	result, err := engine.Run(context.Background(), &Request{
		Violations:          []review.Violation{v},
		ConfidenceThreshold: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1 (file drifted)", result.Failed)
	}
	if result.Details[0].Err == nil || !strings.Contains(result.Details[0].Err.Error(), "has changed since the scan") {
		t.Errorf("Err = %v", result.Details[0].Err)
	}
}

func TestRunSkipsNonFixableAndLowConfidence(t *testing.T) {
	provider := &mockProvider{response: "fixed"}
	engine := NewEngine(provider)

	notFixable := fixableViolation("a.ex", "x", 1)
	notFixable.AutoFixable = false
	lowConfidence := fixableViolation("b.ex", "y", 1)
	lowConfidence.Confidence = 0.5

	result, err := engine.Run(context.Background(), &Request{
		Violations:          []review.Violation{notFixable, lowConfidence},
		DryRun:              true,
		ConfidenceThreshold: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Skipped != 2 || result.Fixed != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(provider.prompts) != 0 {
		t.Errorf("provider called %d times, want 0", len(provider.prompts))
	}
}

func TestRunProviderErrorCountsAsFailed(t *testing.T) {
	provider := &mockProvider{err: errors.New("rate limited")}
	engine := NewEngine(provider)

	result, err := engine.Run(context.Background(), &Request{
		Violations:          []review.Violation{fixableViolation("a.ex", "x", 1)},
		DryRun:              true,
		ConfidenceThreshold: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
}

func TestRunRejectsUnchangedResponse(t *testing.T) {
	provider := &mockProvider{response: "  String.to_atom(name)"}
	engine := NewEngine(provider)

	result, err := engine.Run(context.Background(), &Request{
		Violations:          []review.Violation{fixableViolation("a.ex", "  String.to_atom(name)", 1)},
		DryRun:              true,
		ConfidenceThreshold: 0.8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Failed != 1 {
		t.Error("echoing the original line back should count as failed")
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "x = 1", "x = 1"},
		{"fenced", "```\nx = 1\n```", "x = 1"},
		{"fenced with language", "```elixir\nString.to_existing_atom(n)\n```", "String.to_existing_atom(n)"},
		{"surrounding whitespace", "\n  x = 1  \n", "x = 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractCode(tt.in); got != tt.want {
				t.Errorf("extractCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	v := fixableViolation("lib/user.ex", "  String.to_atom(name)", 2)
	v.ContextBefore = []string{"defmodule User do"}
	v.Rule.Examples = []rules.CodeExample{{
		Bad:  "String.to_atom(input)",
		Good: "String.to_existing_atom(input)",
	}}

	prompt := BuildPrompt(v)
	for _, want := range []string{
		"Dynamic atom creation",
		"lib/user.ex:2",
		"String.to_atom(name)",
		"defmodule User do",
		"String.to_existing_atom(input)",
		"corrected line only",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
