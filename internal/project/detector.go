// Package project detects the enclosing project and its languages.
//
// Detection walks up from a starting directory: git root first, then the
// nearest directory holding a package file, then the starting directory
// itself.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vetdiff/vetdiff/internal/rules"
)

// Info describes a detected project.
type Info struct {
	Name         string           `json:"name"`
	RootPath     string           `json:"root_path"`
	Languages    []rules.Language `json:"languages"`
	PackageFiles []string         `json:"package_files"`
}

// packageFiles maps package manifests to the language they indicate.
var packageFiles = []struct {
	name string
	lang rules.Language
}{
	{"mix.exs", rules.LangElixir},
	{"package.json", rules.LangJavaScript},
	{"tsconfig.json", rules.LangTypeScript},
	{"pyproject.toml", rules.LangPython},
	{"requirements.txt", rules.LangPython},
	{"Cargo.toml", rules.LangRust},
	{"build.zig", rules.LangZig},
}

// Detect resolves project info starting from dir ("" means the current
// directory).
func Detect(dir string) (*Info, error) {
	start := dir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		start = wd
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}

	if root := findGitRoot(abs); root != "" {
		return analyze(root)
	}
	if root := findPackageRoot(abs); root != "" {
		return analyze(root)
	}
	return analyze(abs)
}

// findGitRoot walks up looking for a .git entry.
func findGitRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// findPackageRoot walks up looking for a known package manifest.
func findPackageRoot(start string) string {
	dir := start
	for {
		for _, pf := range packageFiles {
			if _, err := os.Stat(filepath.Join(dir, pf.name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// analyze inspects a project root for languages and manifests.
func analyze(root string) (*Info, error) {
	info := &Info{
		Name:     filepath.Base(root),
		RootPath: root,
	}

	seen := make(map[rules.Language]bool)
	for _, pf := range packageFiles {
		if _, err := os.Stat(filepath.Join(root, pf.name)); err != nil {
			continue
		}
		info.PackageFiles = append(info.PackageFiles, pf.name)
		if !seen[pf.lang] {
			seen[pf.lang] = true
			info.Languages = append(info.Languages, pf.lang)
		}
	}

	// tsconfig.json next to package.json means the JS entry is really TS.
	if seen[rules.LangTypeScript] && seen[rules.LangJavaScript] {
		langs := info.Languages[:0]
		for _, l := range info.Languages {
			if l != rules.LangJavaScript {
				langs = append(langs, l)
			}
		}
		info.Languages = langs
	}

	return info, nil
}
