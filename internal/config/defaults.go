package config

import "time"

// DefaultConfig returns the baseline configuration.
func DefaultConfig() *Config {
	return &Config{
		Review: ReviewConfig{
			RepoPath:    ".",
			MinSeverity: "",
		},
		Output: OutputConfig{
			Format: "markdown",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Fix: FixConfig{
			Model:               "claude-sonnet-4-20250514",
			MaxTokens:           2048,
			Timeout:             60 * time.Second,
			ConfidenceThreshold: 0.8,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
