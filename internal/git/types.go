// Package git parses unified diffs and obtains them from a repository.
package git

import "strings"

// ChangeType classifies a changed line.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	// ChangeModified is reserved; the parser never emits it.
	ChangeModified ChangeType = "modified"
)

// ChangedLine is one added or removed line with its resolved position.
//
// LineNumber is 1-based in the new file version for added lines. For removed
// lines it holds the cursor position at the time the removal was seen.
// ContextBefore carries up to the 3 unchanged lines preceding the change
// within its hunk. ContextAfter is left for downstream consumers to fill;
// the parser does not populate it.
type ChangedLine struct {
	LineNumber    int        `json:"line_number"`
	Content       string     `json:"content"`
	ChangeType    ChangeType `json:"change_type"`
	ContextBefore []string   `json:"context_before"`
	ContextAfter  []string   `json:"context_after"`
}

// FileDiff holds the changed lines of a single file.
type FileDiff struct {
	Path         string        `json:"path"`
	AddedLines   []ChangedLine `json:"added_lines"`
	RemovedLines []ChangedLine `json:"removed_lines"`
}

// GitDiff is an ordered list of file diffs. The same path may appear more
// than once; a diff mentioning a file twice yields two entries.
type GitDiff struct {
	Files []FileDiff `json:"files"`
}

// TotalAdded returns the number of added lines across all files.
func (d *GitDiff) TotalAdded() int {
	n := 0
	for _, f := range d.Files {
		n += len(f.AddedLines)
	}
	return n
}

// TotalRemoved returns the number of removed lines across all files.
func (d *GitDiff) TotalRemoved() int {
	n := 0
	for _, f := range d.Files {
		n += len(f.RemovedLines)
	}
	return n
}

// DiffScope selects which changes to diff.
type DiffScope struct {
	// Staged selects the index (git diff --cached).
	Staged bool
	// Since selects changes since a ref (git diff <ref>). Empty with
	// Staged=false means unstaged changes.
	Since string
}

// Args returns the git arguments for the scope.
func (s DiffScope) Args() []string {
	switch {
	case s.Staged:
		return []string{"diff", "--cached"}
	case s.Since != "":
		return []string{"diff", s.Since}
	default:
		return []string{"diff"}
	}
}

func (s DiffScope) String() string {
	return strings.Join(append([]string{"git"}, s.Args()...), " ")
}
