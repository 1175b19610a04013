// Package commands contains all CLI commands for vetdiff.
//
// This package uses the Cobra library for CLI management.
// Each command is defined in its own file and registered in init().
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vetdiff/vetdiff/internal/config"
	"github.com/vetdiff/vetdiff/internal/logger"
)

var (
	// cfgFile holds the path to the config file (from --config flag)
	cfgFile string

	// verbose enables debug logging
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vetdiff",
	Short: "Scan git diffs for language anti-patterns",
	Long: `Vetdiff scans the added lines of a git diff against a table of
language-specific anti-pattern rules and reports violations with
severity and fix guidance.

Examples:
  # Scan unstaged changes
  vetdiff review

  # Scan staged changes
  vetdiff review --staged

  # Scan everything since a ref
  vetdiff review --since origin/main

  # List the builtin Elixir rules
  vetdiff rules list --language elixir`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(logger.LevelDebug)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .vetdiff.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// loadConfig loads the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if verbose {
		logger.SetLevel(logger.LevelDebug)
	}
	return cfg, nil
}
