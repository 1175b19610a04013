package commands

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vetdiff/vetdiff/internal/project"
	"github.com/vetdiff/vetdiff/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage anti-pattern rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded rules",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search rules by id, name or description",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesSearch,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <rule-id>",
	Short: "Show a rule in full, including examples",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom rule for the current project",
	Args:  cobra.NoArgs,
	RunE:  runRulesAdd,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <rule-id>",
	Short: "Remove a custom rule from the current project",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRemove,
}

var (
	rulesListLanguage string

	ruleAddID          string
	ruleAddLanguage    string
	ruleAddPattern     string
	ruleAddSeverity    string
	ruleAddDescription string
	ruleAddFix         string
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesSearchCmd, rulesShowCmd, rulesAddCmd, rulesRemoveCmd)

	rulesListCmd.Flags().StringVar(&rulesListLanguage, "language", "", "list rules for one language only")

	rulesAddCmd.Flags().StringVar(&ruleAddID, "id", "", "rule identifier (required)")
	rulesAddCmd.Flags().StringVar(&ruleAddLanguage, "language", "", "rule language (required)")
	rulesAddCmd.Flags().StringVar(&ruleAddPattern, "pattern", "", "regex matched against added lines (required)")
	rulesAddCmd.Flags().StringVar(&ruleAddSeverity, "severity", "warning", "severity: critical, major or warning")
	rulesAddCmd.Flags().StringVar(&ruleAddDescription, "description", "", "one-line description")
	rulesAddCmd.Flags().StringVar(&ruleAddFix, "fix", "", "suggested fix text")
	rulesAddCmd.MarkFlagRequired("id")
	rulesAddCmd.MarkFlagRequired("language")
	rulesAddCmd.MarkFlagRequired("pattern")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	registry, err := loadedRegistry()
	if err != nil {
		return err
	}

	var patterns []*rules.AntiPattern
	if rulesListLanguage != "" {
		lang, ok := rules.ParseLanguage(strings.ToLower(rulesListLanguage))
		if !ok {
			return fmt.Errorf("unknown language: %s", rulesListLanguage)
		}
		patterns = registry.GetPatternsForLanguage(lang)
	} else {
		for _, lang := range rules.AllLanguages {
			patterns = append(patterns, registry.GetPatternsForLanguage(lang)...)
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Language != patterns[j].Language {
			return patterns[i].Language < patterns[j].Language
		}
		return patterns[i].ID < patterns[j].ID
	})

	printRuleTable(patterns)
	return nil
}

func runRulesSearch(cmd *cobra.Command, args []string) error {
	registry, err := loadedRegistry()
	if err != nil {
		return err
	}
	matches := registry.SearchPatterns(args[0])
	if len(matches) == 0 {
		fmt.Printf("No rules match %q\n", args[0])
		return nil
	}
	printRuleTable(matches)
	return nil
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	registry, err := loadedRegistry()
	if err != nil {
		return err
	}
	p, ok := registry.GetPattern(args[0])
	if !ok {
		return fmt.Errorf("unknown rule: %s", args[0])
	}

	fmt.Printf("%s (%s)\n", p.ID, p.Name)
	fmt.Printf("  Language:  %s\n", p.Language)
	fmt.Printf("  Severity:  %s\n", p.Severity)
	fmt.Printf("  Detection: %s", p.DetectionMethod.Kind)
	if p.DetectionMethod.Pattern != "" {
		fmt.Printf("  %s", p.DetectionMethod.Pattern)
	}
	if p.DetectionMethod.Kind == rules.DetectRatio {
		fmt.Printf("  (threshold %.2f)", p.DetectionMethod.Threshold)
	}
	fmt.Println()
	fmt.Printf("  Fixable:   %v\n", p.AutoFixable)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	if p.FixSuggestion != "" {
		fmt.Printf("  Fix: %s\n", p.FixSuggestion)
	}
	for _, ex := range p.Examples {
		fmt.Println()
		if ex.Bad != "" {
			fmt.Printf("  Bad:\n%s\n", indent(ex.Bad, "    "))
		}
		if ex.Good != "" {
			fmt.Printf("  Good:\n%s\n", indent(ex.Good, "    "))
		}
		if ex.Explanation != "" {
			fmt.Printf("  %s\n", ex.Explanation)
		}
	}
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	lang, ok := rules.ParseLanguage(strings.ToLower(ruleAddLanguage))
	if !ok {
		return fmt.Errorf("unknown language: %s", ruleAddLanguage)
	}
	if _, ok := rules.ParseSeverity(strings.ToLower(ruleAddSeverity)); !ok {
		return fmt.Errorf("unknown severity: %s", ruleAddSeverity)
	}
	if _, err := regexp.Compile(ruleAddPattern); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proj, err := project.Detect(cfg.Review.RepoPath)
	if err != nil {
		return err
	}

	store := customStore(cfg)
	rule := rules.CustomRule{
		ID:          ruleAddID,
		Description: ruleAddDescription,
		Pattern:     ruleAddPattern,
		Severity:    strings.ToLower(ruleAddSeverity),
		Fix:         ruleAddFix,
	}
	if err := store.AddProjectRule(proj.Name, proj.RootPath, lang, rule); err != nil {
		return err
	}
	fmt.Printf("Added rule %s for %s (%s)\n", ruleAddID, proj.Name, lang)
	return nil
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proj, err := project.Detect(cfg.Review.RepoPath)
	if err != nil {
		return err
	}

	store := customStore(cfg)
	id := strings.TrimPrefix(args[0], "custom_")
	found, err := store.RemoveProjectRule(proj.Name, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no custom rule %q for project %s", id, proj.Name)
	}
	fmt.Printf("Removed rule %s from %s\n", id, proj.Name)
	return nil
}

// loadedRegistry builds the same rule set the review command uses.
func loadedRegistry() (*rules.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	proj, err := project.Detect(cfg.Review.RepoPath)
	if err != nil {
		// Rule inspection still works outside a project.
		return rules.NewBuiltinRegistry()
	}
	return buildRegistry(cfg, proj.Name)
}

func printRuleTable(patterns []*rules.AntiPattern) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLANGUAGE\tSEVERITY\tFIXABLE\tDESCRIPTION")
	for _, p := range patterns {
		fixable := ""
		if p.AutoFixable {
			fixable = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Language, p.Severity, fixable, truncate(p.Description, 60))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
