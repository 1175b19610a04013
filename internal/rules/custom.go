package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CustomRule is the on-disk shape of a user-defined rule.
type CustomRule struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Pattern     string `yaml:"pattern"`
	Severity    string `yaml:"severity"`
	Fix         string `yaml:"fix"`
	Enabled     *bool  `yaml:"enabled"`
}

// ProjectRules holds the custom rules of one project, keyed by language name.
type ProjectRules struct {
	Path    string                  `yaml:"path"`
	GitRoot bool                    `yaml:"git_root"`
	Rules   map[string][]CustomRule `yaml:"rules"`
}

// customRulesFile is the top-level structure of the custom rules document.
type customRulesFile struct {
	Projects map[string]ProjectRules `yaml:"projects"`
}

// CustomStore persists user-defined rules to a YAML file, grouped by project
// and language. The zero file (absent) behaves as an empty store.
type CustomStore struct {
	path string
}

// NewCustomStore creates a store at the default location
// (~/.config/vetdiff/rules.yml).
func NewCustomStore() *CustomStore {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &CustomStore{path: filepath.Join(home, ".config", "vetdiff", "rules.yml")}
}

// NewCustomStoreAt creates a store backed by a specific file path.
func NewCustomStoreAt(path string) *CustomStore {
	return &CustomStore{path: path}
}

func (s *CustomStore) load() (*customRulesFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &customRulesFile{Projects: make(map[string]ProjectRules)}, nil
		}
		return nil, fmt.Errorf("reading custom rules: %w", err)
	}

	var f customRulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing custom rules: %w", err)
	}
	if f.Projects == nil {
		f.Projects = make(map[string]ProjectRules)
	}
	return &f, nil
}

func (s *CustomStore) save(f *customRulesFile) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding custom rules: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing custom rules: %w", err)
	}
	return nil
}

// AddProjectRule appends a rule for the project and language, creating the
// project entry if needed, and rewrites the backing file.
func (s *CustomStore) AddProjectRule(project, projectPath string, lang Language, rule CustomRule) error {
	f, err := s.load()
	if err != nil {
		return err
	}

	pr, ok := f.Projects[project]
	if !ok {
		pr = ProjectRules{
			Path:    projectPath,
			GitRoot: true,
			Rules:   make(map[string][]CustomRule),
		}
	}
	if pr.Rules == nil {
		pr.Rules = make(map[string][]CustomRule)
	}
	key := string(lang)
	pr.Rules[key] = append(pr.Rules[key], rule)
	f.Projects[project] = pr

	return s.save(f)
}

// RemoveProjectRule deletes the rule with the given id from the project,
// across all languages. Returns whether anything was removed.
func (s *CustomStore) RemoveProjectRule(project, ruleID string) (bool, error) {
	f, err := s.load()
	if err != nil {
		return false, err
	}

	pr, ok := f.Projects[project]
	if !ok {
		return false, nil
	}

	found := false
	for lang, list := range pr.Rules {
		kept := list[:0]
		for _, rule := range list {
			if rule.ID == ruleID {
				found = true
				continue
			}
			kept = append(kept, rule)
		}
		pr.Rules[lang] = kept
	}

	if !found {
		return false, nil
	}
	f.Projects[project] = pr
	return true, s.save(f)
}

// GetProjectRules returns the project's enabled custom rules as AntiPatterns.
// Ids get a custom_ prefix and the custom tag; unknown severities fall back
// to warning; unknown languages are skipped.
func (s *CustomStore) GetProjectRules(project string) ([]AntiPattern, error) {
	f, err := s.load()
	if err != nil {
		return nil, err
	}

	pr, ok := f.Projects[project]
	if !ok {
		return nil, nil
	}

	var patterns []AntiPattern
	for langName, list := range pr.Rules {
		lang, ok := ParseLanguage(langName)
		if !ok {
			continue
		}
		for _, rule := range list {
			if rule.Enabled != nil && !*rule.Enabled {
				continue
			}
			sev, ok := ParseSeverity(rule.Severity)
			if !ok {
				sev = SeverityWarning
			}
			patterns = append(patterns, AntiPattern{
				ID:          "custom_" + rule.ID,
				Name:        rule.Description,
				Language:    lang,
				Severity:    sev,
				Description: rule.Description,
				DetectionMethod: DetectionMethod{
					Kind:    DetectRegex,
					Pattern: rule.Pattern,
				},
				FixSuggestion: rule.Fix,
				SourceURL:     "Custom project rule",
				AutoFixable:   false,
				Tags:          []string{"custom"},
				Enabled:       true,
			})
		}
	}

	return patterns, nil
}

// LoadCustomRules merges a project's custom rules into the registry.
// Call CompileAll again afterwards so their patterns get compiled.
func (r *Registry) LoadCustomRules(store *CustomStore, project string) error {
	patterns, err := store.GetProjectRules(project)
	if err != nil {
		return err
	}
	for _, p := range patterns {
		r.AddPattern(p)
	}
	return nil
}
