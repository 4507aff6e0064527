// Package validation provides input validation for copy selections.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFilename validates a target filename (not a full path) before it
// is joined onto the destination directory.
//
// Returns an error if the filename:
//   - Is empty, "." or ".."
//   - Contains path separators (/ or \)
//   - Contains null bytes
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	if strings.ContainsRune(filename, 0) {
		return fmt.Errorf("filename contains null byte: %q", filename)
	}

	// Reject path separators (both Unix and Windows style)
	if strings.ContainsRune(filename, '/') || strings.ContainsRune(filename, '\\') {
		return fmt.Errorf("filename cannot contain path separators: %s", filename)
	}

	// Names like "data..v2.csv" are fine; only the bare dot names are not files
	if filename == "." || filename == ".." {
		return fmt.Errorf("filename cannot be %q", filename)
	}

	return nil
}

// ValidatePathInDirectory validates that a path, when resolved, stays within baseDir.
//
// Both path and baseDir are cleaned and made absolute before comparison.
//
// Example:
//
//	ValidatePathInDirectory("../../etc/passwd", "/tmp/dest") // Error: escapes base dir
//	ValidatePathInDirectory("report.txt", "/tmp/dest")       // OK: within base dir
func ValidatePathInDirectory(path string, baseDir string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if baseDir == "" {
		return fmt.Errorf("base directory cannot be empty")
	}

	cleanBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolvedPath := filepath.Clean(path)
	if !filepath.IsAbs(resolvedPath) {
		resolvedPath = filepath.Join(cleanBase, resolvedPath)
	}

	relPath, err := filepath.Rel(cleanBase, resolvedPath)
	if err != nil {
		return fmt.Errorf("failed to compute relative path: %w", err)
	}

	// If the relative path starts with "..", it's outside the base directory
	if strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || relPath == ".." {
		return fmt.Errorf("path escapes base directory: %s (base: %s)", path, baseDir)
	}

	return nil
}

// ValidateDirectory checks that path names an existing directory.
func ValidateDirectory(path string) error {
	if path == "" {
		return fmt.Errorf("directory cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", path)
	}
	return nil
}

// ValidateSourceFile checks that path names an existing regular file.
// The copy itself re-checks this; the CLI uses it for dry-run plans and
// early warnings.
func ValidateSourceFile(path string) error {
	if path == "" {
		return fmt.Errorf("source path cannot be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access source %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", path)
	}
	return nil
}
