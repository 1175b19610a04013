package commands

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteOutput sends content to stdout, or to path when one is given.
func WriteOutput(content, path string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	return nil
}
