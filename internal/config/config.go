// Package config handles configuration management for vetdiff.
//
// Configuration is loaded from multiple sources in order of precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (VETDIFF_*)
// 3. Configuration file (.vetdiff.yaml)
// 4. Default values (lowest priority)
package config

import (
	"fmt"
	"time"
)

// Config is the main configuration structure for vetdiff.
type Config struct {
	// Review configures scan behavior
	Review ReviewConfig `mapstructure:"review" yaml:"review"`

	// Rules configures rule loading
	Rules RulesConfig `mapstructure:"rules" yaml:"rules"`

	// Output configures report formatting
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// History configures the scan history store
	History HistoryConfig `mapstructure:"history" yaml:"history"`

	// Fix configures AI fix suggestions
	Fix FixConfig `mapstructure:"fix" yaml:"fix"`

	// Log configures logging
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// ReviewConfig configures scan behavior.
type ReviewConfig struct {
	// RepoPath is the git repository to scan (default: current directory)
	RepoPath string `mapstructure:"repo_path" yaml:"repo_path"`

	// Staged scans the index instead of the work tree
	Staged bool `mapstructure:"staged" yaml:"staged"`

	// Since scans changes since a ref (branch, tag, commit)
	Since string `mapstructure:"since" yaml:"since"`

	// MinSeverity filters reported violations: "critical", "major", "warning"
	MinSeverity string `mapstructure:"min_severity" yaml:"min_severity"`

	// Language restricts the scan to files of one language (empty = all)
	Language string `mapstructure:"language" yaml:"language"`
}

// RulesConfig configures rule loading.
type RulesConfig struct {
	// CustomPath overrides the custom rules file location
	CustomPath string `mapstructure:"custom_path" yaml:"custom_path"`

	// DisableCustom skips loading project custom rules
	DisableCustom bool `mapstructure:"disable_custom" yaml:"disable_custom"`
}

// OutputConfig configures report formatting.
type OutputConfig struct {
	// Format is the output format: "markdown", "json"
	Format string `mapstructure:"format" yaml:"format"`

	// File is the output path (empty = stdout)
	File string `mapstructure:"file" yaml:"file"`
}

// HistoryConfig configures the scan history store.
type HistoryConfig struct {
	// Enabled records every scan into the history database
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the SQLite database file (default: ~/.config/vetdiff/history.db)
	Path string `mapstructure:"path" yaml:"path"`
}

// FixConfig configures AI fix suggestions.
type FixConfig struct {
	// Model is the model used for fix generation
	Model string `mapstructure:"model" yaml:"model"`

	// APIKey should be set via VETDIFF_FIX_API_KEY or ANTHROPIC_API_KEY,
	// not the config file
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// MaxTokens bounds the response size
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens"`

	// Timeout is the per-request timeout
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// ConfidenceThreshold gates which violations get fix attempts
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level" yaml:"level"`
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Review.Staged && c.Review.Since != "" {
		return fmt.Errorf("review.staged and review.since are mutually exclusive")
	}

	switch c.Review.MinSeverity {
	case "", "critical", "major", "warning":
	default:
		return fmt.Errorf("invalid review.min_severity: %q", c.Review.MinSeverity)
	}

	switch c.Output.Format {
	case "", "markdown", "json":
	default:
		return fmt.Errorf("invalid output.format: %q", c.Output.Format)
	}

	if c.Fix.ConfidenceThreshold < 0 || c.Fix.ConfidenceThreshold > 1 {
		return fmt.Errorf("fix.confidence_threshold must be within [0, 1]")
	}

	return nil
}
