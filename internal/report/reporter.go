// Package report renders review results in consumer formats.
package report

import (
	"fmt"
	"strings"

	"github.com/vetdiff/vetdiff/internal/review"
)

// Reporter generates a report from a review result.
type Reporter interface {
	// Format returns the format name (json, markdown).
	Format() string

	// Generate renders the result to a string.
	Generate(result *review.Result) (string, error)
}

// New returns the reporter for a format name.
func New(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "json":
		return &JSONReporter{Indent: true}, nil
	case "markdown", "md":
		return &MarkdownReporter{}, nil
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
}

// DetectFormatFromPath infers the output format from a file extension.
// Returns "" when the extension is not recognized.
func DetectFormatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".json"):
		return "json"
	case strings.HasSuffix(path, ".md"), strings.HasSuffix(path, ".markdown"):
		return "markdown"
	default:
		return ""
	}
}
