// Package pathutil provides path resolution shared by the CLI and GUI.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveAbsolutePath returns path as an absolute path with a leading ~
// expanded and symlinks resolved. Components that do not exist yet are kept
// as given below their deepest existing ancestor. An empty path is the
// working directory.
func ResolveAbsolutePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand ~: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	existing, missing := abs, ""
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			return filepath.Join(resolved, missing), nil
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return abs, nil
		}
		missing = filepath.Join(filepath.Base(existing), missing)
		existing = parent
	}
}

// ResolveAll resolves every path with ResolveAbsolutePath, keeping order.
func ResolveAll(paths []string) ([]string, error) {
	resolved := make([]string, len(paths))
	for i, p := range paths {
		abs, err := ResolveAbsolutePath(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		resolved[i] = abs
	}
	return resolved, nil
}
