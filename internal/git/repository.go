package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repository runs git commands in a working directory and parses their output.
type Repository struct {
	path string
}

// NewRepository creates a Repository rooted at path and verifies it is inside
// a git work tree.
func NewRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo := &Repository{path: absPath}
	if _, err := repo.Root(context.Background()); err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, nil
}

// runGit executes a git command and returns stdout.
func (r *Repository) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("git %s: %w: %s", args[0], err, errMsg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.String(), nil
}

// DiffText returns the raw unified diff for the scope.
func (r *Repository) DiffText(ctx context.Context, scope DiffScope) (string, error) {
	return r.runGit(ctx, scope.Args()...)
}

// Diff returns the parsed diff for the scope.
func (r *Repository) Diff(ctx context.Context, scope DiffScope) (*GitDiff, error) {
	text, err := r.DiffText(ctx, scope)
	if err != nil {
		return nil, err
	}
	return Parse(text), nil
}

// CurrentBranch returns the current branch name, or "HEAD" when detached.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.runGit(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Root returns the top-level directory of the repository.
func (r *Repository) Root(ctx context.Context) (string, error) {
	out, err := r.runGit(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether the work tree has no uncommitted changes.
func (r *Repository) IsClean(ctx context.Context) (bool, error) {
	out, err := r.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}
