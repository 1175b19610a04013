package review

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vetdiff/vetdiff/internal/git"
	"github.com/vetdiff/vetdiff/internal/logger"
	"github.com/vetdiff/vetdiff/internal/rules"
)

// defaultConfidence is attached to every detection-layer match; the engine
// does not compute per-match confidence.
const defaultConfidence = 0.85

// outcome is the result of evaluating one rule against one line.
type outcome int

const (
	outcomeNoMatch outcome = iota
	outcomeMatch
	// outcomeUnsupported marks detection kinds that cannot be evaluated
	// against a single line (line_count, custom). Distinguished from no-match
	// so tests can see the gap.
	outcomeUnsupported
)

// Engine matches registry rules against the added lines of a diff.
//
// The engine holds no mutable state: once the registry is built it is safe to
// call from multiple goroutines on independent inputs.
type Engine struct {
	registry *rules.Registry
	log      *logger.Logger
}

// NewEngine creates an engine over a built registry.
func NewEngine(registry *rules.Registry) *Engine {
	return &Engine{
		registry: registry,
		log:      logger.Default().WithPrefix("REVIEW"),
	}
}

// ReviewGitDiff reviews every file's added lines and aggregates the result.
func (e *Engine) ReviewGitDiff(diff *git.GitDiff) *Result {
	var all []Violation
	filesWith := make(map[string][]Violation)

	for _, fd := range diff.Files {
		violations := e.ReviewChangedLines(fd.Path, fd.AddedLines)
		if len(violations) == 0 {
			continue
		}
		filesWith[fd.Path] = append(filesWith[fd.Path], violations...)
		all = append(all, violations...)
	}

	return &Result{
		Violations:          all,
		FilesWithViolations: filesWith,
		Summary:             CreateSummary(all),
	}
}

// ReviewChangedLines evaluates all candidate rules for a file against its
// changed lines. Files whose extension matches no rule are skipped outright.
func (e *Engine) ReviewChangedLines(filePath string, changedLines []git.ChangedLine) []Violation {
	patterns := e.registry.GetPatternsForFile(filePath)
	if len(patterns) == 0 {
		return nil
	}

	// Language is only a label on the violation; candidate selection already
	// happened by extension above.
	language, ok := DetectLanguage(filePath)
	if !ok {
		language = rules.LangJavaScript
	}

	var violations []Violation
	for _, line := range changedLines {
		for _, pattern := range patterns {
			if v, ok := e.checkLine(filePath, line, pattern, language); ok {
				violations = append(violations, v)
			}
		}
	}
	return violations
}

// checkLine evaluates one rule against one line.
func (e *Engine) checkLine(filePath string, line git.ChangedLine, pattern *rules.AntiPattern, language rules.Language) (Violation, bool) {
	if !pattern.Enabled {
		return Violation{}, false
	}

	if e.evaluate(line.Content, pattern) != outcomeMatch {
		return Violation{}, false
	}

	return Violation{
		Rule:          *pattern,
		FilePath:      filePath,
		LineNumber:    line.LineNumber,
		Content:       line.Content,
		Severity:      pattern.Severity,
		Language:      language,
		FixSuggestion: pattern.FixSuggestion,
		AutoFixable:   pattern.AutoFixable,
		ContextBefore: line.ContextBefore,
		ContextAfter:  line.ContextAfter,
		Confidence:    defaultConfidence,
	}, true
}

// evaluate applies the rule's detection method to a single line.
func (e *Engine) evaluate(content string, pattern *rules.AntiPattern) outcome {
	method := pattern.DetectionMethod
	switch method.Kind {
	case rules.DetectRegex:
		if re := e.registry.CompiledPattern(pattern.ID); re != nil {
			if re.MatchString(content) {
				return outcomeMatch
			}
			return outcomeNoMatch
		}
		// Fallback for rules added after CompileAll: compile for this single
		// test and discard. Invalid patterns never match.
		re, err := regexp.Compile(method.Pattern)
		if err != nil {
			return outcomeNoMatch
		}
		if re.MatchString(content) {
			return outcomeMatch
		}
		return outcomeNoMatch

	case rules.DetectRatio:
		re, err := regexp.Compile(method.Pattern)
		if err != nil {
			return outcomeNoMatch
		}
		// Ratio of non-overlapping matches to line length in bytes. Most
		// configured thresholds make this nearly unreachable; kept as
		// documented behavior. Empty lines count as ratio 0.
		ratio := 0.0
		if total := len(content); total > 0 {
			ratio = float64(len(re.FindAllStringIndex(content, -1))) / float64(total)
		}
		if ratio >= method.Threshold {
			return outcomeMatch
		}
		return outcomeNoMatch

	case rules.DetectLineCount, rules.DetectCustom:
		// Need more than one line of context; not evaluable here.
		return outcomeUnsupported

	default:
		return outcomeUnsupported
	}
}

// DetectLanguage maps a file path to a language by extension. The recognized
// extension set here is wider than the rule-dispatch sets (cjs, pyw, psql,
// ...), since this only labels violations.
func DetectLanguage(filePath string) (rules.Language, bool) {
	dot := strings.LastIndexByte(filePath, '.')
	if dot == -1 || strings.ContainsAny(filePath[dot:], "/\\") {
		return "", false
	}

	switch strings.ToLower(filePath[dot+1:]) {
	case "ex", "exs":
		return rules.LangElixir, true
	case "js", "jsx", "mjs", "cjs":
		return rules.LangJavaScript, true
	case "ts", "tsx":
		return rules.LangTypeScript, true
	case "py", "pyw", "pyi":
		return rules.LangPython, true
	case "rs":
		return rules.LangRust, true
	case "zig":
		return rules.LangZig, true
	case "sql", "psql", "mysql":
		return rules.LangSQL, true
	}
	return "", false
}

// CreateSummary derives aggregate counts from a violation list.
func CreateSummary(violations []Violation) Summary {
	s := Summary{TotalViolations: len(violations)}

	for _, v := range violations {
		switch v.Severity {
		case rules.SeverityCritical:
			s.CriticalCount++
		case rules.SeverityMajor:
			s.MajorCount++
		case rules.SeverityWarning:
			s.WarningCount++
		}
		if v.AutoFixable {
			s.AutoFixableCount++
		}
		s.FilesAffected = append(s.FilesAffected, v.FilePath)
	}

	sort.Strings(s.FilesAffected)
	s.FilesAffected = dedupSorted(s.FilesAffected)
	return s
}

// FilterBySeverity keeps violations whose severity ordinal is >= min.
//
// Severity ordinals run Critical(0) < Major(1) < Warning(2), so filtering at
// Major keeps Major and Warning and drops Critical. That contradicts the
// intuitive "this severity and worse" reading but matches the documented
// comparison; TestFilterBySeverityOrdinalDirection pins it down. Do not
// invert without a product decision.
func FilterBySeverity(violations []Violation, min rules.Severity) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.Severity >= min {
			out = append(out, v)
		}
	}
	return out
}

func dedupSorted(in []string) []string {
	if len(in) == 0 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
