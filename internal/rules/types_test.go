package rules

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdinal(t *testing.T) {
	// The declared order is the comparison order used everywhere else.
	if !(SeverityCritical < SeverityMajor && SeverityMajor < SeverityWarning) {
		t.Error("severity ordinal order must be critical < major < warning")
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityCritical, "critical"},
		{SeverityMajor, "major"},
		{SeverityWarning, "warning"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.sev), got, tt.want)
		}
	}
}

func TestSeverityMarshalJSON(t *testing.T) {
	out, err := json.Marshal(SeverityCritical)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"critical"` {
		t.Errorf("json = %s, want \"critical\"", out)
	}
}

func TestParseSeverity(t *testing.T) {
	if _, ok := ParseSeverity("Critical"); ok {
		t.Error("parsing is case-sensitive by contract")
	}
	sev, ok := ParseSeverity("major")
	if !ok || sev != SeverityMajor {
		t.Errorf("ParseSeverity(major) = (%v, %v)", sev, ok)
	}
}

func TestLanguageExtensions(t *testing.T) {
	tests := []struct {
		lang Language
		ext  string
		want bool
	}{
		{LangElixir, "ex", true},
		{LangElixir, "exs", true},
		{LangElixir, "rb", false},
		{LangJavaScript, "mjs", true},
		{LangTypeScript, "tsx", true},
		{LangTypeScript, "js", false},
		{LangPython, "py", true},
		{LangSQL, "sql", true},
	}
	for _, tt := range tests {
		if got := tt.lang.MatchesExtension(tt.ext); got != tt.want {
			t.Errorf("%s.MatchesExtension(%q) = %v, want %v", tt.lang, tt.ext, got, tt.want)
		}
	}
}

func TestParseDetectionKind(t *testing.T) {
	for _, valid := range []string{"regex", "ratio", "line_count", "custom"} {
		if _, ok := ParseDetectionKind(valid); !ok {
			t.Errorf("ParseDetectionKind(%q) should succeed", valid)
		}
	}
	if _, ok := ParseDetectionKind("ast"); ok {
		t.Error("ParseDetectionKind(ast) should fail")
	}
}
