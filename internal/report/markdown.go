package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vetdiff/vetdiff/internal/review"
)

// MarkdownReporter renders results for humans.
type MarkdownReporter struct{}

func (r *MarkdownReporter) Format() string { return "markdown" }

func (r *MarkdownReporter) Generate(result *review.Result) (string, error) {
	var b strings.Builder

	b.WriteString("# Review Report\n\n")

	if result.Summary.TotalViolations == 0 {
		b.WriteString("No violations found.\n")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "**%d violation(s)** across %d file(s): %d critical, %d major, %d warning. %d auto-fixable.\n\n",
		result.Summary.TotalViolations,
		len(result.Summary.FilesAffected),
		result.Summary.CriticalCount,
		result.Summary.MajorCount,
		result.Summary.WarningCount,
		result.Summary.AutoFixableCount,
	)

	paths := make([]string, 0, len(result.FilesWithViolations))
	for path := range result.FilesWithViolations {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fmt.Fprintf(&b, "## %s\n\n", path)
		for _, v := range result.FilesWithViolations[path] {
			fmt.Fprintf(&b, "- **%s** `%s` (line %d): %s\n",
				strings.ToUpper(v.Severity.String()), v.Rule.ID, v.LineNumber, v.Rule.Name)
			fmt.Fprintf(&b, "  - `%s`\n", strings.TrimSpace(v.Content))
			fmt.Fprintf(&b, "  - Fix: %s\n", v.FixSuggestion)
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
