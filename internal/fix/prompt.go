package fix

import (
	"fmt"
	"strings"

	"github.com/vetdiff/vetdiff/internal/review"
)

// BuildPrompt renders the repair prompt for one violation. The prompt asks
// for the corrected line only, no commentary, so the response can be spliced
// back into the file.
func BuildPrompt(v review.Violation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fix the following %s anti-pattern in a single line of %s code.\n\n", v.Rule.Name, v.Language)
	fmt.Fprintf(&b, "Rule: %s\n", v.Rule.Description)
	fmt.Fprintf(&b, "Suggested fix: %s\n\n", v.FixSuggestion)

	if len(v.ContextBefore) > 0 {
		b.WriteString("Preceding lines:\n")
		for _, line := range v.ContextBefore {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Line to fix (%s:%d):\n%s\n\n", v.FilePath, v.LineNumber, v.Content)

	if len(v.Rule.Examples) > 0 {
		ex := v.Rule.Examples[0]
		fmt.Fprintf(&b, "Example:\n  bad:  %s\n  good: %s\n\n", ex.Bad, ex.Good)
	}

	b.WriteString("Reply with the corrected line only. Preserve the original indentation. No explanation, no code fences.")
	return b.String()
}
