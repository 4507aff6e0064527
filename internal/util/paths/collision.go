// Package paths provides utilities for deriving copy target paths.
package paths

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// CopyTarget pairs one slot of the file set with its destination path.
type CopyTarget struct {
	Index  int    // Slot index in the file set
	Source string // Source path as selected
	Target string // Full destination path
}

// PlanTargets maps every source to destDir/<basename>, then resolves
// intra-run collisions with ResolveCollisions.
func PlanTargets(sources []string, destDir string) ([]CopyTarget, int) {
	targets := make([]CopyTarget, len(sources))
	for i, src := range sources {
		targets[i] = CopyTarget{
			Index:  i,
			Source: src,
			Target: filepath.Join(destDir, filepath.Base(src)),
		}
	}
	return ResolveCollisions(targets)
}

// ResolveCollisions ensures all Target paths in a run are unique.
// When several sources share a target, each gets its slot number
// (Index+1) appended before the extension.
//
// Example: "report.txt" selected in slots 0 and 1 becomes:
//   - report_1.txt
//   - report_2.txt
//
// Concurrent workers writing one path would otherwise corrupt each other.
// Case-insensitive filesystems (Windows, macOS) compare case-folded paths.
//
// Returns the modified list (same slice, modified in place) and count of
// targets involved in collisions.
func ResolveCollisions(targets []CopyTarget) ([]CopyTarget, int) {
	if len(targets) == 0 {
		return targets, 0
	}

	// Group targets by their normalized path
	pathToIndices := make(map[string][]int)
	for i, t := range targets {
		key := collisionKey(t.Target)
		pathToIndices[key] = append(pathToIndices[key], i)
	}

	collisionCount := 0
	for _, indices := range pathToIndices {
		if len(indices) <= 1 {
			continue
		}

		collisionCount += len(indices)
		for _, idx := range indices {
			t := &targets[idx]
			ext := filepath.Ext(t.Target)
			base := t.Target[:len(t.Target)-len(ext)]
			// Insert slot number before extension: "file.txt" -> "file_2.txt"
			t.Target = fmt.Sprintf("%s_%d%s", base, t.Index+1, ext)
		}
	}

	return targets, collisionCount
}

func collisionKey(path string) string {
	path = filepath.Clean(path)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.ToLower(path)
	}
	return path
}
