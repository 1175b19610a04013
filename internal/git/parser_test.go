package git

import (
	"strings"
	"testing"
)

const sampleDiff = `diff --git a/lib/user.ex b/lib/user.ex
index 1234567..89abcde 100644
--- a/lib/user.ex
+++ b/lib/user.ex
@@ -10,7 +10,8 @@ defmodule User do
   def load(name) do
-    find(name)
+    atom = String.to_atom(name)
+    find(atom)
   end
`

func TestParseSingleFile(t *testing.T) {
	diff := Parse(sampleDiff)

	if len(diff.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(diff.Files))
	}
	f := diff.Files[0]
	if f.Path != "lib/user.ex" {
		t.Errorf("Path = %q, want lib/user.ex", f.Path)
	}
	if len(f.AddedLines) != 2 {
		t.Fatalf("len(AddedLines) = %d, want 2", len(f.AddedLines))
	}
	if len(f.RemovedLines) != 1 {
		t.Fatalf("len(RemovedLines) = %d, want 1", len(f.RemovedLines))
	}
}

func TestParseHunkLineNumbers(t *testing.T) {
	diff := Parse(sampleDiff)
	added := diff.Files[0].AddedLines

	// Hunk starts at 11 (header line 10 plus one context line before the
	// removal). Removed lines do not advance the cursor.
	if added[0].LineNumber != 11 {
		t.Errorf("first added LineNumber = %d, want 11", added[0].LineNumber)
	}
	if added[1].LineNumber != 12 {
		t.Errorf("second added LineNumber = %d, want 12", added[1].LineNumber)
	}
	if added[0].Content != "    atom = String.to_atom(name)" {
		t.Errorf("Content = %q", added[0].Content)
	}

	removed := diff.Files[0].RemovedLines[0]
	if removed.LineNumber != 11 {
		t.Errorf("removed LineNumber = %d, want 11", removed.LineNumber)
	}
}

func TestParseContextWindow(t *testing.T) {
	input := `diff --git a/main.py b/main.py
--- a/main.py
+++ b/main.py
@@ -1,6 +1,7 @@
 one
 two
 three
 four
+added
`
	diff := Parse(input)
	added := diff.Files[0].AddedLines[0]

	// Only the last three context lines are kept.
	want := []string{"two", "three", "four"}
	if len(added.ContextBefore) != len(want) {
		t.Fatalf("len(ContextBefore) = %d, want %d", len(added.ContextBefore), len(want))
	}
	for i, w := range want {
		if added.ContextBefore[i] != w {
			t.Errorf("ContextBefore[%d] = %q, want %q", i, added.ContextBefore[i], w)
		}
	}
}

func TestParseContextResetsPerHunk(t *testing.T) {
	input := `diff --git a/a.js b/a.js
--- a/a.js
+++ b/a.js
@@ -1,2 +1,3 @@
 first hunk ctx
+one
@@ -10,2 +11,3 @@
+two
`
	diff := Parse(input)
	added := diff.Files[0].AddedLines
	if len(added) != 2 {
		t.Fatalf("len(AddedLines) = %d, want 2", len(added))
	}
	if len(added[1].ContextBefore) != 0 {
		t.Errorf("second hunk ContextBefore = %v, want empty", added[1].ContextBefore)
	}
	if added[1].LineNumber != 11 {
		t.Errorf("second hunk LineNumber = %d, want 11", added[1].LineNumber)
	}
}

func TestParseEmptyInput(t *testing.T) {
	diff := Parse("")
	if len(diff.Files) != 0 {
		t.Errorf("len(Files) = %d, want 0", len(diff.Files))
	}
	if diff.TotalAdded() != 0 || diff.TotalRemoved() != 0 {
		t.Error("empty diff should have zero totals")
	}
}

func TestParseBinaryFile(t *testing.T) {
	input := `diff --git a/logo.png b/logo.png
index 1111111..2222222 100644
Binary files a/logo.png and b/logo.png differ
`
	diff := Parse(input)
	if len(diff.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(diff.Files))
	}
	f := diff.Files[0]
	if f.Path != "logo.png" {
		t.Errorf("Path = %q, want logo.png", f.Path)
	}
	if len(f.AddedLines) != 0 || len(f.RemovedLines) != 0 {
		t.Error("binary file should carry no changed lines")
	}
}

func TestParseMalformedHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		files int
	}{
		{
			name:  "truncated diff header drops following lines",
			input: "diff --git\n+orphan line\n",
			files: 0,
		},
		{
			name:  "header without a/ prefix is skipped",
			input: "diff --git x/f.go y/f.go\n+orphan\n",
			files: 0,
		},
		{
			name:  "garbage between files is ignored",
			input: "random noise\ndiff --git a/f.go b/f.go\n@@ -1 +1 @@\n+x\n",
			files: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := Parse(tt.input)
			if len(diff.Files) != tt.files {
				t.Errorf("len(Files) = %d, want %d", len(diff.Files), tt.files)
			}
		})
	}
}

func TestParseBrokenHunkHeaderResetsCursor(t *testing.T) {
	input := `diff --git a/f.go b/f.go
@@ broken @@
+x
`
	diff := Parse(input)
	if got := diff.Files[0].AddedLines[0].LineNumber; got != 0 {
		t.Errorf("LineNumber = %d, want 0 after unparseable hunk header", got)
	}
}

func TestParseHunkHeader(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"@@ -10,7 +10,8 @@", 10},
		{"@@ -1 +1 @@", 1},
		{"@@ -0,0 +1,5 @@", 1},
		{"@@ -5,2 +42 @@ func main() {", 42},
		{"@@ nonsense", 0},
		{"@@ -1,2 +x,3 @@", 0},
	}

	for _, tt := range tests {
		if got := parseHunkHeader(tt.line); got != tt.want {
			t.Errorf("parseHunkHeader(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestParseDuplicatePaths(t *testing.T) {
	input := `diff --git a/f.go b/f.go
@@ -1 +1 @@
+first
diff --git a/f.go b/f.go
@@ -9 +9 @@
+second
`
	diff := Parse(input)
	if len(diff.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2 separate entries", len(diff.Files))
	}
	if diff.Files[0].Path != diff.Files[1].Path {
		t.Error("both entries should keep the same path")
	}
}

func TestParseMultipleFiles(t *testing.T) {
	input := `diff --git a/a.py b/a.py
@@ -1,2 +1,3 @@
 keep
+import os
diff --git a/b.rs b/b.rs
@@ -4 +4,2 @@
+let v = x.unwrap();
-old
`
	diff := Parse(input)
	if len(diff.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(diff.Files))
	}
	if diff.TotalAdded() != 2 {
		t.Errorf("TotalAdded = %d, want 2", diff.TotalAdded())
	}
	if diff.TotalRemoved() != 1 {
		t.Errorf("TotalRemoved = %d, want 1", diff.TotalRemoved())
	}
}

func TestParsePathWithSpacesUsesFieldSplit(t *testing.T) {
	// Field splitting means a path with spaces only keeps its first token.
	// Documented limitation of the header format.
	diff := Parse("diff --git a/my file.go b/my file.go\n@@ -1 +1 @@\n+x\n")
	if len(diff.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(diff.Files))
	}
	if diff.Files[0].Path != "my" {
		t.Errorf("Path = %q, want %q", diff.Files[0].Path, "my")
	}
}

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString(sampleDiff)
	}
	input := sb.String()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Parse(input)
	}
}
