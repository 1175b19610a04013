// Package review evaluates anti-pattern rules against parsed diffs.
package review

import (
	"github.com/vetdiff/vetdiff/internal/rules"
)

// Violation is one rule match on one changed line. It snapshots the matched
// rule so downstream display does not need the registry.
type Violation struct {
	Rule          rules.AntiPattern `json:"rule"`
	FilePath      string            `json:"file_path"`
	LineNumber    int               `json:"line_number"`
	Content       string            `json:"content"`
	Severity      rules.Severity    `json:"severity"`
	Language      rules.Language    `json:"language"`
	FixSuggestion string            `json:"fix_suggestion"`
	AutoFixable   bool              `json:"auto_fixable"`
	ContextBefore []string          `json:"context_before"`
	ContextAfter  []string          `json:"context_after"`
	Confidence    float64           `json:"confidence"`
}

// Result is the outcome of reviewing a whole diff.
type Result struct {
	Violations          []Violation            `json:"violations"`
	FilesWithViolations map[string][]Violation `json:"files_with_violations"`
	Summary             Summary                `json:"summary"`
}

// Summary aggregates violation counts.
type Summary struct {
	TotalViolations  int      `json:"total_violations"`
	CriticalCount    int      `json:"critical_count"`
	MajorCount       int      `json:"major_count"`
	WarningCount     int      `json:"warning_count"`
	FilesAffected    []string `json:"files_affected"`
	AutoFixableCount int      `json:"auto_fixable_count"`
}
