package rules

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yml
var builtinRules embed.FS

// builtinFiles maps each language to its embedded rule document.
var builtinFiles = map[Language]string{
	LangElixir:     "builtin/elixir.yml",
	LangJavaScript: "builtin/javascript.yml",
	LangTypeScript: "builtin/typescript.yml",
	LangPython:     "builtin/python.yml",
	LangRust:       "builtin/rust.yml",
	LangZig:        "builtin/zig.yml",
	LangSQL:        "builtin/sql.yml",
}

// LoadBuiltin loads every embedded rule set into the registry.
// Call CompileAll afterwards to build the regex matcher map.
func (r *Registry) LoadBuiltin() error {
	for _, lang := range AllLanguages {
		if err := r.LoadBuiltinLanguage(lang); err != nil {
			return err
		}
	}
	return nil
}

// LoadBuiltinLanguage loads the embedded rule set for one language.
func (r *Registry) LoadBuiltinLanguage(lang Language) error {
	name, ok := builtinFiles[lang]
	if !ok {
		return fmt.Errorf("no builtin rules for language %q", lang)
	}
	data, err := builtinRules.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading builtin rules %s: %w", name, err)
	}
	if err := r.LoadRulesFromYAML(data, lang); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// yamlRule is the on-disk shape of a rule entry. Fields are decoded as plain
// strings so a single bad entry can be skipped without failing the document.
type yamlRule struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	Language        string `yaml:"language"`
	Severity        string `yaml:"severity"`
	Description     string `yaml:"description"`
	DetectionMethod struct {
		Type      string   `yaml:"type"`
		Pattern   string   `yaml:"pattern"`
		Threshold *float64 `yaml:"threshold"`
	} `yaml:"detection_method"`
	FixSuggestion string        `yaml:"fix_suggestion"`
	SourceURL     string        `yaml:"source_url"`
	AutoFixable   bool          `yaml:"claude_code_fixable"`
	Examples      []CodeExample `yaml:"examples"`
	Tags          []string      `yaml:"tags"`
	Enabled       *bool         `yaml:"enabled"`
}

// LoadRulesFromYAML parses a rule-set document (a YAML list of rule objects)
// and upserts each recognized rule. Entries with an unknown language,
// severity, or detection-method type are skipped individually; only a
// malformed document fails the whole load.
func (r *Registry) LoadRulesFromYAML(data []byte, expected Language) error {
	var raw []yamlRule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid rule document: %w", err)
	}

	for _, y := range raw {
		lang, ok := ParseLanguage(y.Language)
		if !ok {
			r.log.Debug("skipping rule %s: unknown language %q", y.ID, y.Language)
			continue
		}
		sev, ok := ParseSeverity(y.Severity)
		if !ok {
			r.log.Debug("skipping rule %s: unknown severity %q", y.ID, y.Severity)
			continue
		}
		kind, ok := ParseDetectionKind(y.DetectionMethod.Type)
		if !ok {
			r.log.Debug("skipping rule %s: unknown detection method %q", y.ID, y.DetectionMethod.Type)
			continue
		}

		method := DetectionMethod{Kind: kind, Pattern: y.DetectionMethod.Pattern}
		switch kind {
		case DetectRatio:
			method.Threshold = 0.3
			if y.DetectionMethod.Threshold != nil {
				method.Threshold = *y.DetectionMethod.Threshold
			}
		case DetectLineCount:
			method.Threshold = 10
			if y.DetectionMethod.Threshold != nil {
				method.Threshold = *y.DetectionMethod.Threshold
			}
		}

		enabled := true
		if y.Enabled != nil {
			enabled = *y.Enabled
		}

		r.AddPattern(AntiPattern{
			ID:              y.ID,
			Name:            y.Name,
			Language:        lang,
			Severity:        sev,
			Description:     y.Description,
			DetectionMethod: method,
			FixSuggestion:   y.FixSuggestion,
			SourceURL:       y.SourceURL,
			AutoFixable:     y.AutoFixable,
			Examples:        y.Examples,
			Tags:            y.Tags,
			Enabled:         enabled,
		})
	}

	return nil
}
