package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned by ValidateDirectory for a path that exists
// but is not a directory
var ErrNotDirectory = errors.New("path is not a directory")

// PathValidator keeps tool inputs and outputs inside one workspace directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at the given directory. The
// directory does not need to exist yet.
func NewPathValidator(root string) (*PathValidator, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace directory: %w", err)
	}

	return &PathValidator{root: resolveExisting(filepath.Clean(absRoot))}, nil
}

// Root returns the absolute workspace directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns path into an absolute, cleaned path inside the workspace.
// Relative paths are taken relative to the workspace root. Symlinks in the
// existing part of the path are followed before the containment check.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	resolved := resolveExisting(filepath.Clean(absPath))
	if !v.contains(resolved) {
		return "", fmt.Errorf("path is outside workspace directory: %s", path)
	}

	return resolved, nil
}

// ValidateDirectory resolves dir inside the workspace and checks that it
// is an existing directory. A missing directory fails with an error
// matching fs.ErrNotExist.
func (v *PathValidator) ValidateDirectory(dir string) (string, error) {
	resolved, err := v.Resolve(dir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return resolved, nil
}

func (v *PathValidator) contains(path string) bool {
	rel, err := filepath.Rel(v.root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveExisting follows symlinks in the longest existing prefix of path
// and re-attaches the part that does not exist yet.
func resolveExisting(path string) string {
	var missing []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved
		}
		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
