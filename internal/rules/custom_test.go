package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *CustomStore {
	t.Helper()
	return NewCustomStoreAt(filepath.Join(t.TempDir(), "rules.yml"))
}

func TestCustomStoreRoundTrip(t *testing.T) {
	store := tempStore(t)

	rule := CustomRule{
		ID:          "no_repo_atoms",
		Description: "Repo module must not build atoms",
		Pattern:     `Repo\..*to_atom`,
		Severity:    "critical",
		Fix:         "use String.to_existing_atom/1",
	}
	if err := store.AddProjectRule("myapp", "/src/myapp", LangElixir, rule); err != nil {
		t.Fatalf("AddProjectRule: %v", err)
	}

	patterns, err := store.GetProjectRules("myapp")
	if err != nil {
		t.Fatalf("GetProjectRules: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("len(patterns) = %d, want 1", len(patterns))
	}

	p := patterns[0]
	if p.ID != "custom_no_repo_atoms" {
		t.Errorf("ID = %q, want custom_ prefix", p.ID)
	}
	if p.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want critical", p.Severity)
	}
	if p.AutoFixable {
		t.Error("custom rules are never auto-fixable")
	}
	if len(p.Tags) != 1 || p.Tags[0] != "custom" {
		t.Errorf("Tags = %v, want [custom]", p.Tags)
	}
	if p.DetectionMethod.Kind != DetectRegex {
		t.Errorf("Kind = %v, want regex", p.DetectionMethod.Kind)
	}
}

func TestCustomStoreMissingFile(t *testing.T) {
	store := NewCustomStoreAt(filepath.Join(t.TempDir(), "absent.yml"))
	patterns, err := store.GetProjectRules("anything")
	if err != nil {
		t.Fatalf("missing file should act as empty store, got %v", err)
	}
	if patterns != nil {
		t.Errorf("patterns = %v, want nil", patterns)
	}
}

func TestCustomStoreUnknownSeverityFallsBack(t *testing.T) {
	store := tempStore(t)
	rule := CustomRule{ID: "r", Pattern: "x", Severity: "blocker"}
	if err := store.AddProjectRule("p", "/p", LangPython, rule); err != nil {
		t.Fatal(err)
	}
	patterns, err := store.GetProjectRules("p")
	if err != nil {
		t.Fatal(err)
	}
	if patterns[0].Severity != SeverityWarning {
		t.Errorf("Severity = %v, want warning fallback", patterns[0].Severity)
	}
}

func TestCustomStoreSkipsDisabledAndUnknownLanguage(t *testing.T) {
	store := tempStore(t)

	// The store API only accepts Language values, so write the document
	// directly to get an unknown language name on disk.
	doc := `projects:
  p:
    path: /p
    git_root: true
    rules:
      rust:
        - id: off
          pattern: x
          severity: major
          enabled: false
      cobol:
        - id: legacy
          pattern: MOVE
          severity: major
`
	if err := os.WriteFile(storePath(store), []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	patterns, err := store.GetProjectRules("p")
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 0 {
		t.Errorf("len(patterns) = %d, want 0 (disabled and unknown-language skipped)", len(patterns))
	}
}

func TestRemoveProjectRule(t *testing.T) {
	store := tempStore(t)
	if err := store.AddProjectRule("p", "/p", LangSQL, CustomRule{ID: "a", Pattern: "x", Severity: "major"}); err != nil {
		t.Fatal(err)
	}

	found, err := store.RemoveProjectRule("p", "a")
	if err != nil || !found {
		t.Fatalf("RemoveProjectRule = (%v, %v), want (true, nil)", found, err)
	}

	found, err = store.RemoveProjectRule("p", "a")
	if err != nil || found {
		t.Fatalf("second remove = (%v, %v), want (false, nil)", found, err)
	}

	found, err = store.RemoveProjectRule("other", "a")
	if err != nil || found {
		t.Fatalf("unknown project remove = (%v, %v), want (false, nil)", found, err)
	}
}

func TestLoadCustomRulesIntoRegistry(t *testing.T) {
	store := tempStore(t)
	rule := CustomRule{ID: "team_rule", Pattern: `forbidden\(`, Severity: "major"}
	if err := store.AddProjectRule("p", "/p", LangJavaScript, rule); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadCustomRules(store, "p"); err != nil {
		t.Fatalf("LoadCustomRules: %v", err)
	}
	r.CompileAll()

	if _, ok := r.GetPattern("custom_team_rule"); !ok {
		t.Fatal("custom rule not merged into registry")
	}
	if r.CompiledPattern("custom_team_rule") == nil {
		t.Error("custom rule regex should compile")
	}
}

func storePath(s *CustomStore) string {
	return s.path
}
