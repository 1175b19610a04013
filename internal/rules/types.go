// Package rules defines anti-pattern rules and the registry that indexes them.
package rules

// Language identifies one of the supported source languages.
type Language string

const (
	LangElixir     Language = "elixir"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangZig        Language = "zig"
	LangSQL        Language = "sql"
)

// AllLanguages lists every supported language.
var AllLanguages = []Language{
	LangElixir,
	LangJavaScript,
	LangTypeScript,
	LangPython,
	LangRust,
	LangZig,
	LangSQL,
}

// ParseLanguage maps a lowercase language name to a Language.
// Returns false for names outside the supported set.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case LangElixir, LangJavaScript, LangTypeScript, LangPython, LangRust, LangZig, LangSQL:
		return Language(s), true
	}
	return "", false
}

// Extensions returns the file extensions (without dot) associated with the
// language for rule dispatch.
func (l Language) Extensions() []string {
	switch l {
	case LangElixir:
		return []string{"ex", "exs"}
	case LangJavaScript:
		return []string{"js", "jsx", "mjs"}
	case LangTypeScript:
		return []string{"ts", "tsx"}
	case LangPython:
		return []string{"py"}
	case LangRust:
		return []string{"rs"}
	case LangZig:
		return []string{"zig"}
	case LangSQL:
		return []string{"sql"}
	}
	return nil
}

// MatchesExtension reports whether ext (without dot) belongs to the language's
// extension set.
func (l Language) MatchesExtension(ext string) bool {
	for _, e := range l.Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Severity ranks how serious a rule violation is.
//
// The ordinal order is the declared one: Critical < Major < Warning.
// Severity comparisons elsewhere in the codebase use this order; see
// review.FilterBySeverity for the consequences.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityMajor
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityMajor:
		return "major"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalJSON writes the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// MarshalYAML writes the severity as its lowercase name.
func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// ParseSeverity maps a lowercase severity name to a Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "critical":
		return SeverityCritical, true
	case "major":
		return SeverityMajor, true
	case "warning":
		return SeverityWarning, true
	}
	return 0, false
}

// DetectionKind tags the matching strategy of a DetectionMethod.
type DetectionKind string

const (
	// DetectRegex matches a line when the compiled pattern matches it.
	DetectRegex DetectionKind = "regex"
	// DetectRatio matches when non-overlapping pattern matches divided by the
	// line's byte length reach the threshold.
	DetectRatio DetectionKind = "ratio"
	// DetectLineCount needs whole-function context and is not evaluated
	// against single lines.
	DetectLineCount DetectionKind = "line_count"
	// DetectCustom is reserved for rule-specific logic; not evaluated.
	DetectCustom DetectionKind = "custom"
)

// ParseDetectionKind maps a detection-method type string to its kind.
func ParseDetectionKind(s string) (DetectionKind, bool) {
	switch DetectionKind(s) {
	case DetectRegex, DetectRatio, DetectLineCount, DetectCustom:
		return DetectionKind(s), true
	}
	return "", false
}

// DetectionMethod describes how a rule recognizes a violation.
// Threshold is only meaningful for ratio and line_count kinds.
type DetectionMethod struct {
	Kind      DetectionKind `yaml:"type" json:"type"`
	Pattern   string        `yaml:"pattern" json:"pattern"`
	Threshold float64       `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

// CodeExample pairs a bad snippet with its fix.
type CodeExample struct {
	Bad         string `yaml:"bad" json:"bad"`
	Good        string `yaml:"good" json:"good"`
	Explanation string `yaml:"explanation" json:"explanation"`
}

// AntiPattern is a single detection rule. Values are built once at load time
// and treated as immutable for the rest of the scan.
type AntiPattern struct {
	ID              string          `yaml:"id" json:"id"`
	Name            string          `yaml:"name" json:"name"`
	Language        Language        `yaml:"language" json:"language"`
	Severity        Severity        `yaml:"severity" json:"severity"`
	Description     string          `yaml:"description" json:"description"`
	DetectionMethod DetectionMethod `yaml:"detection_method" json:"detection_method"`
	FixSuggestion   string          `yaml:"fix_suggestion" json:"fix_suggestion"`
	SourceURL       string          `yaml:"source_url,omitempty" json:"source_url,omitempty"`
	AutoFixable     bool            `yaml:"claude_code_fixable" json:"claude_code_fixable"`
	Examples        []CodeExample   `yaml:"examples" json:"examples"`
	Tags            []string        `yaml:"tags" json:"tags"`
	Enabled         bool            `yaml:"enabled" json:"enabled"`
}

// MatchesFileExtension reports whether the rule applies to files with the
// given extension (without dot).
func (p *AntiPattern) MatchesFileExtension(ext string) bool {
	return p.Language.MatchesExtension(ext)
}
