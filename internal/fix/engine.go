package fix

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vetdiff/vetdiff/internal/logger"
	"github.com/vetdiff/vetdiff/internal/review"
)

// Request configures a batch fix run.
type Request struct {
	Violations []review.Violation
	// DryRun reports what would change without touching files.
	DryRun bool
	// ConfidenceThreshold gates which violations get a fix attempt.
	ConfidenceThreshold float64
}

// Detail records the outcome for one violation.
type Detail struct {
	Violation review.Violation
	FixedCode string
	Applied   bool
	Err       error
}

// Result summarizes a batch fix run.
type Result struct {
	Total         int
	Fixed         int
	Failed        int
	Skipped       int
	FilesModified []string
	Details       []Detail
}

// Engine drives fix generation and optional application.
type Engine struct {
	provider Provider
	log      *logger.Logger
}

// NewEngine creates a fix engine over a provider.
func NewEngine(provider Provider) *Engine {
	return &Engine{
		provider: provider,
		log:      logger.Default().WithPrefix("FIX"),
	}
}

// Run processes each violation: only auto-fixable violations at or above the
// confidence threshold are attempted. Files are modified only when DryRun is
// false and the model returned a usable replacement.
func (e *Engine) Run(ctx context.Context, req *Request) (*Result, error) {
	result := &Result{Total: len(req.Violations)}
	modified := make(map[string]bool)

	for _, v := range req.Violations {
		if !v.AutoFixable || v.Confidence < req.ConfidenceThreshold {
			result.Skipped++
			result.Details = append(result.Details, Detail{Violation: v})
			continue
		}

		fixed, err := e.generate(ctx, v)
		if err != nil {
			e.log.Warn("fix generation failed for %s:%d: %v", v.FilePath, v.LineNumber, err)
			result.Failed++
			result.Details = append(result.Details, Detail{Violation: v, Err: err})
			continue
		}

		detail := Detail{Violation: v, FixedCode: fixed}
		if !req.DryRun {
			if err := applyToFile(v, fixed); err != nil {
				result.Failed++
				detail.Err = err
				result.Details = append(result.Details, detail)
				continue
			}
			detail.Applied = true
			if !modified[v.FilePath] {
				modified[v.FilePath] = true
				result.FilesModified = append(result.FilesModified, v.FilePath)
			}
		}
		result.Fixed++
		result.Details = append(result.Details, detail)
	}

	return result, nil
}

// generate asks the provider for a replacement line and strips any fencing.
func (e *Engine) generate(ctx context.Context, v review.Violation) (string, error) {
	raw, err := e.provider.Complete(ctx, BuildPrompt(v))
	if err != nil {
		return "", err
	}

	fixed := extractCode(raw)
	if strings.TrimSpace(fixed) == "" {
		return "", fmt.Errorf("provider returned no code")
	}
	if strings.TrimSpace(fixed) == strings.TrimSpace(v.Content) {
		return "", fmt.Errorf("provider returned the original line unchanged")
	}
	return fixed, nil
}

// applyToFile swaps the violating line for the replacement. The line must
// still hold the content the violation was recorded against; otherwise the
// file has drifted and the fix is refused.
func applyToFile(v review.Violation, fixed string) error {
	data, err := os.ReadFile(v.FilePath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", v.FilePath, err)
	}

	lines := strings.Split(string(data), "\n")
	idx := v.LineNumber - 1
	if idx < 0 || idx >= len(lines) {
		return fmt.Errorf("%s: line %d out of range", v.FilePath, v.LineNumber)
	}
	if lines[idx] != v.Content {
		return fmt.Errorf("%s:%d has changed since the scan", v.FilePath, v.LineNumber)
	}

	lines[idx] = fixed
	if err := os.WriteFile(v.FilePath, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", v.FilePath, err)
	}
	return nil
}

// extractCode pulls the code out of a possibly fenced response.
func extractCode(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i != -1 {
		s = s[i+1:] // drop the language tag line
	}
	if i := strings.LastIndex(s, "```"); i != -1 {
		s = s[:i]
	}
	return strings.TrimRight(s, "\n")
}
