package report

import (
	"encoding/json"
	"io"

	"github.com/vetdiff/vetdiff/internal/review"
)

// jsonViolation is the externally stable violation shape.
type jsonViolation struct {
	FilePath      string `json:"file_path"`
	LineNumber    int    `json:"line_number"`
	RuleID        string `json:"rule_id"`
	RuleName      string `json:"rule_name"`
	Severity      string `json:"severity"`
	Language      string `json:"language"`
	Description   string `json:"description"`
	FixSuggestion string `json:"fix_suggestion"`
	AutoFixable   bool   `json:"auto_fixable"`
}

// jsonSummary is the externally stable summary shape. files_affected is a
// count here, not the path list.
type jsonSummary struct {
	TotalViolations int `json:"total_violations"`
	CriticalCount   int `json:"critical_count"`
	MajorCount      int `json:"major_count"`
	WarningCount    int `json:"warning_count"`
	FilesAffected   int `json:"files_affected"`
	AutoFixable     int `json:"auto_fixable_count"`
}

type jsonOutput struct {
	Violations []jsonViolation `json:"violations"`
	Summary    jsonSummary     `json:"summary"`
}

// JSONReporter renders results for machine consumers.
type JSONReporter struct {
	Indent bool
}

func (r *JSONReporter) Format() string { return "json" }

func (r *JSONReporter) Generate(result *review.Result) (string, error) {
	out := buildJSONOutput(result)

	var data []byte
	var err error
	if r.Indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write streams the report to w.
func (r *JSONReporter) Write(result *review.Result, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if r.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(buildJSONOutput(result))
}

func buildJSONOutput(result *review.Result) jsonOutput {
	violations := make([]jsonViolation, 0, len(result.Violations))
	for _, v := range result.Violations {
		violations = append(violations, jsonViolation{
			FilePath:      v.FilePath,
			LineNumber:    v.LineNumber,
			RuleID:        v.Rule.ID,
			RuleName:      v.Rule.Name,
			Severity:      v.Severity.String(),
			Language:      string(v.Language),
			Description:   v.Rule.Description,
			FixSuggestion: v.FixSuggestion,
			AutoFixable:   v.AutoFixable,
		})
	}

	return jsonOutput{
		Violations: violations,
		Summary: jsonSummary{
			TotalViolations: result.Summary.TotalViolations,
			CriticalCount:   result.Summary.CriticalCount,
			MajorCount:      result.Summary.MajorCount,
			WarningCount:    result.Summary.WarningCount,
			FilesAffected:   len(result.Summary.FilesAffected),
			AutoFixable:     result.Summary.AutoFixableCount,
		},
	}
}
