package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const configName = ".vetdiff"

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigName(configName)
	v.SetConfigType("yaml")

	// Search paths in order of priority
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix("VETDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// SetConfigFile sets a specific config file to use.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
	l.v.SetConfigFile(path)
}

// Load loads the configuration from all sources.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setDefaults(cfg)

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults apply.
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// The fix API key is usually set via the standard env var rather than
	// the prefixed one or the file.
	if cfg.Fix.APIKey == "" {
		cfg.Fix.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers defaults with viper so env overrides bind.
func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault("review.repo_path", cfg.Review.RepoPath)
	l.v.SetDefault("review.staged", cfg.Review.Staged)
	l.v.SetDefault("review.since", cfg.Review.Since)
	l.v.SetDefault("review.min_severity", cfg.Review.MinSeverity)
	l.v.SetDefault("review.language", cfg.Review.Language)
	l.v.SetDefault("rules.custom_path", cfg.Rules.CustomPath)
	l.v.SetDefault("rules.disable_custom", cfg.Rules.DisableCustom)
	l.v.SetDefault("output.format", cfg.Output.Format)
	l.v.SetDefault("output.file", cfg.Output.File)
	l.v.SetDefault("history.enabled", cfg.History.Enabled)
	l.v.SetDefault("history.path", cfg.History.Path)
	l.v.SetDefault("fix.model", cfg.Fix.Model)
	l.v.SetDefault("fix.max_tokens", cfg.Fix.MaxTokens)
	l.v.SetDefault("fix.timeout", cfg.Fix.Timeout)
	l.v.SetDefault("fix.confidence_threshold", cfg.Fix.ConfidenceThreshold)
	l.v.SetDefault("log.level", cfg.Log.Level)
}
