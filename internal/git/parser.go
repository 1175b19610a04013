package git

import (
	"strconv"
	"strings"
)

const maxContextLines = 3

// Parse turns raw unified-diff text into a GitDiff.
//
// It is a total function over a single forward pass: malformed input is never
// an error, it just gets skipped. A broken file header drops subsequent
// content lines until the next valid header; a broken hunk header resets the
// line cursor to 0. Binary-file diffs keep their path with no lines.
func Parse(diffText string) *GitDiff {
	diff := &GitDiff{Files: make([]FileDiff, 0, strings.Count(diffText, "diff --git"))}

	var current *FileDiff
	cursor := 0
	var context []string

	flush := func() {
		if current != nil {
			diff.Files = append(diff.Files, *current)
			current = nil
		}
	}

	// Iterate lines without allocating the full slice up front.
	start := 0
	for i := 0; i <= len(diffText); i++ {
		if i != len(diffText) && diffText[i] != '\n' {
			continue
		}
		line := diffText[start:i]
		start = i + 1

		switch {
		case strings.HasPrefix(line, "diff --git"):
			flush()
			if path, ok := extractFilePath(line); ok {
				current = &FileDiff{
					Path:         path,
					AddedLines:   []ChangedLine{},
					RemovedLines: []ChangedLine{},
				}
			}

		case strings.HasPrefix(line, "@@"):
			cursor = parseHunkHeader(line)
			context = context[:0]

		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			if current != nil {
				current.AddedLines = append(current.AddedLines, ChangedLine{
					LineNumber:    cursor,
					Content:       line[1:],
					ChangeType:    ChangeAdded,
					ContextBefore: copyContext(context),
					ContextAfter:  []string{},
				})
			}
			cursor++

		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			if current != nil {
				current.RemovedLines = append(current.RemovedLines, ChangedLine{
					LineNumber:    cursor,
					Content:       line[1:],
					ChangeType:    ChangeRemoved,
					ContextBefore: copyContext(context),
					ContextAfter:  []string{},
				})
			}
			// Removed lines don't exist in the new file; the cursor stays.

		case strings.HasPrefix(line, " "):
			context = append(context, line[1:])
			if len(context) > maxContextLines {
				context = context[1:]
			}
			cursor++

		default:
			// index lines, ---/+++ markers, binary-file notes, "\ No newline
			// at end of file" and anything unrecognized.
		}
	}

	flush()
	return diff
}

// extractFilePath pulls the path out of "diff --git a/path b/path" by taking
// the fourth whitespace token and stripping its a/ prefix.
func extractFilePath(line string) (string, bool) {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return "", false
	}
	aPath := parts[2]
	if !strings.HasPrefix(aPath, "a/") {
		return "", false
	}
	return aPath[2:], true
}

// parseHunkHeader extracts the new-file starting line from
// "@@ -old,len +new,len @@". Returns 0 when it cannot be parsed.
func parseHunkHeader(line string) int {
	plus := strings.Index(line, " +")
	if plus == -1 {
		return 0
	}
	rest := line[plus+2:]

	end := strings.IndexByte(rest, ',')
	if end == -1 {
		end = strings.IndexByte(rest, ' ')
	}
	if end == -1 {
		return 0
	}

	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0
	}
	return n
}

func copyContext(context []string) []string {
	out := make([]string, len(context))
	copy(out, context)
	return out
}
