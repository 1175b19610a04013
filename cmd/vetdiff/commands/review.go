package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vetdiff/vetdiff/internal/config"
	"github.com/vetdiff/vetdiff/internal/fix"
	"github.com/vetdiff/vetdiff/internal/git"
	"github.com/vetdiff/vetdiff/internal/history"
	"github.com/vetdiff/vetdiff/internal/logger"
	"github.com/vetdiff/vetdiff/internal/project"
	"github.com/vetdiff/vetdiff/internal/report"
	"github.com/vetdiff/vetdiff/internal/review"
	"github.com/vetdiff/vetdiff/internal/rules"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Scan changed lines for anti-patterns",
	Long: `Scan the added lines of a git diff against the loaded rules.

Examples:
  # Scan unstaged changes
  vetdiff review

  # Scan the index
  vetdiff review --staged

  # Scan changes since a ref
  vetdiff review --since origin/main

  # Only Elixir files, JSON output
  vetdiff review --language elixir --json

  # Generate AI fix suggestions without touching files
  vetdiff review --fix

  # Generate and apply fixes
  vetdiff review --fix --apply`,
	Args: cobra.NoArgs,
	RunE: runReview,
}

var (
	reviewStaged    bool
	reviewSince     string
	reviewSeverity  string
	reviewLanguage  string
	reviewFormat    string
	reviewOutput    string
	reviewJSON      bool
	reviewNoHistory bool
	reviewFix       bool
	reviewApply     bool
)

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().BoolVar(&reviewStaged, "staged", false, "scan staged changes (git diff --cached)")
	reviewCmd.Flags().StringVar(&reviewSince, "since", "", "scan changes since a ref (git diff <ref>)")
	reviewCmd.Flags().StringVar(&reviewSeverity, "severity", "", "minimum severity (critical, major, warning)")
	reviewCmd.Flags().StringVar(&reviewLanguage, "language", "", "restrict the scan to one language")
	reviewCmd.Flags().StringVarP(&reviewFormat, "format", "f", "", "output format (markdown, json)")
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", "", "write report to file")
	reviewCmd.Flags().BoolVar(&reviewJSON, "json", false, "shorthand for --format json")
	reviewCmd.Flags().BoolVar(&reviewNoHistory, "no-history", false, "skip recording this scan")
	reviewCmd.Flags().BoolVar(&reviewFix, "fix", false, "generate AI fix suggestions for auto-fixable violations")
	reviewCmd.Flags().BoolVar(&reviewApply, "apply", false, "with --fix, write the fixes into the files")
}

func runReview(cmd *cobra.Command, args []string) error {
	if reviewStaged && reviewSince != "" {
		return fmt.Errorf("--staged and --since are mutually exclusive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyReviewFlags(cfg)

	ctx := cmd.Context()
	log := logger.Default().WithPrefix("REVIEW")

	proj, err := project.Detect(cfg.Review.RepoPath)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, proj.Name)
	if err != nil {
		return err
	}
	log.Debug("loaded %d rules for project %s", registry.Len(), proj.Name)

	repo, err := git.NewRepository(cfg.Review.RepoPath)
	if err != nil {
		return err
	}

	scope := git.DiffScope{Staged: cfg.Review.Staged, Since: cfg.Review.Since}
	start := time.Now()

	diff, err := repo.Diff(ctx, scope)
	if err != nil {
		return err
	}
	if cfg.Review.Language != "" {
		lang, ok := rules.ParseLanguage(cfg.Review.Language)
		if !ok {
			return fmt.Errorf("unknown language: %s", cfg.Review.Language)
		}
		diff = filterDiffByLanguage(diff, lang)
	}

	engine := review.NewEngine(registry)
	result := engine.ReviewGitDiff(diff)
	duration := time.Since(start)

	if cfg.Review.MinSeverity != "" {
		min, ok := rules.ParseSeverity(cfg.Review.MinSeverity)
		if !ok {
			return fmt.Errorf("unknown severity: %s", cfg.Review.MinSeverity)
		}
		result = rebuildResult(review.FilterBySeverity(result.Violations, min))
	}

	if cfg.History.Enabled && !reviewNoHistory {
		recordScan(ctx, cfg, proj.Name, scope, repo, result, duration)
	}

	if err := writeReport(cfg, result); err != nil {
		return err
	}

	if reviewFix {
		if err := runFixes(ctx, cfg, result.Violations); err != nil {
			return err
		}
	}

	if result.Summary.CriticalCount > 0 {
		// Non-zero exit so CI can gate on critical findings.
		os.Exit(1)
	}
	return nil
}

// applyReviewFlags overlays command-line flags onto the loaded config.
func applyReviewFlags(cfg *config.Config) {
	if reviewStaged {
		cfg.Review.Staged = true
	}
	if reviewSince != "" {
		cfg.Review.Since = reviewSince
	}
	if reviewSeverity != "" {
		cfg.Review.MinSeverity = strings.ToLower(reviewSeverity)
	}
	if reviewLanguage != "" {
		cfg.Review.Language = strings.ToLower(reviewLanguage)
	}
	if reviewJSON {
		cfg.Output.Format = "json"
	}
	if reviewFormat != "" {
		cfg.Output.Format = strings.ToLower(reviewFormat)
	}
	if reviewOutput != "" {
		cfg.Output.File = reviewOutput
		if reviewFormat == "" && !reviewJSON {
			if f := report.DetectFormatFromPath(reviewOutput); f != "" {
				cfg.Output.Format = f
			}
		}
	}
}

// buildRegistry loads builtin rules plus the project's custom rules.
func buildRegistry(cfg *config.Config, projectName string) (*rules.Registry, error) {
	registry, err := rules.NewBuiltinRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading builtin rules: %w", err)
	}

	if !cfg.Rules.DisableCustom {
		store := customStore(cfg)
		if err := registry.LoadCustomRules(store, projectName); err != nil {
			logger.Warn("failed to load custom rules for %s: %v", projectName, err)
		} else {
			registry.CompileAll()
		}
	}

	return registry, nil
}

func customStore(cfg *config.Config) *rules.CustomStore {
	if cfg.Rules.CustomPath != "" {
		return rules.NewCustomStoreAt(cfg.Rules.CustomPath)
	}
	return rules.NewCustomStore()
}

// filterDiffByLanguage keeps only files whose extension belongs to lang.
func filterDiffByLanguage(diff *git.GitDiff, lang rules.Language) *git.GitDiff {
	out := &git.GitDiff{Files: make([]git.FileDiff, 0, len(diff.Files))}
	for _, f := range diff.Files {
		if detected, ok := review.DetectLanguage(f.Path); ok && detected == lang {
			out.Files = append(out.Files, f)
		}
	}
	return out
}

// rebuildResult reassembles a Result after severity filtering.
func rebuildResult(violations []review.Violation) *review.Result {
	filesWith := make(map[string][]review.Violation)
	for _, v := range violations {
		filesWith[v.FilePath] = append(filesWith[v.FilePath], v)
	}
	return &review.Result{
		Violations:          violations,
		FilesWithViolations: filesWith,
		Summary:             review.CreateSummary(violations),
	}
}

func recordScan(ctx context.Context, cfg *config.Config, projectName string, scope git.DiffScope, repo *git.Repository, result *review.Result, duration time.Duration) {
	store, err := history.NewStore(history.StoreConfig{Path: cfg.History.Path})
	if err != nil {
		logger.Warn("history disabled: %v", err)
		return
	}
	defer store.Close()

	branch, _ := repo.CurrentBranch(ctx)
	rec := history.ScanRecord{
		Project:  projectName,
		Scope:    scope.String(),
		Branch:   branch,
		Duration: duration,
	}
	if _, err := store.RecordScan(ctx, rec, result); err != nil {
		logger.Warn("failed to record scan: %v", err)
	}
}

func writeReport(cfg *config.Config, result *review.Result) error {
	reporter, err := report.New(cfg.Output.Format)
	if err != nil {
		return err
	}
	content, err := reporter.Generate(result)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}
	return WriteOutput(content, cfg.Output.File)
}

func runFixes(ctx context.Context, cfg *config.Config, violations []review.Violation) error {
	provider, err := fix.NewProvider(fix.ProviderConfig{
		APIKey:    cfg.Fix.APIKey,
		Model:     cfg.Fix.Model,
		MaxTokens: cfg.Fix.MaxTokens,
	})
	if err != nil {
		return err
	}

	fixCtx := ctx
	if cfg.Fix.Timeout > 0 {
		var cancel context.CancelFunc
		fixCtx, cancel = context.WithTimeout(ctx, cfg.Fix.Timeout*time.Duration(len(violations)+1))
		defer cancel()
	}

	engine := fix.NewEngine(provider)
	// Files are only touched with an explicit --apply.
	result, err := engine.Run(fixCtx, &fix.Request{
		Violations:          violations,
		DryRun:              !reviewApply,
		ConfidenceThreshold: cfg.Fix.ConfidenceThreshold,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Fixes: %d generated, %d failed, %d skipped\n",
		result.Fixed, result.Failed, result.Skipped)
	for _, d := range result.Details {
		if d.FixedCode == "" {
			continue
		}
		status := "would apply"
		if d.Applied {
			status = "applied"
		}
		fmt.Fprintf(os.Stderr, "  %s %s:%d\n    - %s\n    + %s\n",
			status, d.Violation.FilePath, d.Violation.LineNumber,
			strings.TrimSpace(d.Violation.Content), strings.TrimSpace(d.FixedCode))
	}
	if len(result.FilesModified) > 0 {
		fmt.Fprintf(os.Stderr, "Modified: %s\n", strings.Join(result.FilesModified, ", "))
	}
	return nil
}
