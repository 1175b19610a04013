package rules

import (
	"regexp"
	"strings"

	"github.com/vetdiff/vetdiff/internal/logger"
)

// Registry is the in-memory store of loaded anti-patterns.
//
// A registry is built once (load, then CompileAll) and must be treated as
// read-only afterwards. Concurrent reads are safe once mutation stops; a
// long-lived process that needs to add rules later should build a fresh
// registry and swap it in.
type Registry struct {
	patterns   map[string]*AntiPattern
	byLanguage map[Language][]string
	compiled   map[string]*regexp.Regexp

	log *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		patterns:   make(map[string]*AntiPattern),
		byLanguage: make(map[Language][]string),
		compiled:   make(map[string]*regexp.Regexp),
		log:        logger.Default().WithPrefix("RULES"),
	}
}

// NewBuiltinRegistry creates a registry with all embedded rule sets loaded
// and their regex patterns compiled.
func NewBuiltinRegistry() (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadBuiltin(); err != nil {
		return nil, err
	}
	r.CompileAll()
	return r, nil
}

// AddPattern upserts a rule. A rule with an existing id replaces the stored
// one; the by-language index is append-only, so adding the same id twice
// leaves it listed twice there. Callers iterating the index must tolerate
// duplicates.
func (r *Registry) AddPattern(p AntiPattern) {
	r.patterns[p.ID] = &p
	r.byLanguage[p.Language] = append(r.byLanguage[p.Language], p.ID)
}

// CompileAll compiles the regex of every regex-kind rule into the compiled
// matcher map. A pattern that fails to compile is logged and skipped; the
// rule stays in the registry but its regex will never match.
func (r *Registry) CompileAll() {
	for id, p := range r.patterns {
		if p.DetectionMethod.Kind != DetectRegex {
			continue
		}
		re, err := regexp.Compile(p.DetectionMethod.Pattern)
		if err != nil {
			r.log.Warn("failed to compile regex for pattern %s: %v", id, err)
			continue
		}
		r.compiled[id] = re
	}
}

// CompiledPattern returns the precompiled regex for a rule id, if any.
func (r *Registry) CompiledPattern(id string) *regexp.Regexp {
	return r.compiled[id]
}

// GetPattern returns the rule with the given id.
func (r *Registry) GetPattern(id string) (*AntiPattern, bool) {
	p, ok := r.patterns[id]
	return p, ok
}

// Len returns the number of distinct rules loaded.
func (r *Registry) Len() int {
	return len(r.patterns)
}

// GetPatternsForLanguage returns the rules registered for a language, in
// insertion order. Duplicate index entries yield duplicate results.
func (r *Registry) GetPatternsForLanguage(lang Language) []*AntiPattern {
	ids := r.byLanguage[lang]
	out := make([]*AntiPattern, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.patterns[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// GetPatternsForFile returns every enabled rule whose language extension set
// includes the file's extension. This is the dispatch path used during scans:
// a full pass over all rules, no language detection required.
func (r *Registry) GetPatternsForFile(path string) []*AntiPattern {
	ext := fileExtension(path)
	var out []*AntiPattern
	for _, p := range r.patterns {
		if p.Enabled && p.MatchesFileExtension(ext) {
			out = append(out, p)
		}
	}
	return out
}

// SearchPatterns returns rules whose id, name, or description contains the
// query, case-insensitively.
func (r *Registry) SearchPatterns(query string) []*AntiPattern {
	q := strings.ToLower(query)
	var out []*AntiPattern
	for _, p := range r.patterns {
		if strings.Contains(strings.ToLower(p.ID), q) ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// fileExtension extracts the extension without the dot, lowercased.
// Returns "" for paths without one.
func fileExtension(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case '.':
			return strings.ToLower(path[i+1:])
		case '/', '\\':
			return ""
		}
	}
	return ""
}
