// Package diskspace provides a preflight check that the destination
// filesystem can hold a copy run.
package diskspace

import (
	"errors"
	"fmt"
)

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	requiredMB := float64(e.RequiredBytes) / (1024 * 1024)
	availableMB := float64(e.AvailableBytes) / (1024 * 1024)
	return fmt.Sprintf("insufficient disk space in %s: need %.2f MB, have %.2f MB available",
		e.Path, requiredMB, availableMB)
}

// IsInsufficientSpaceError checks if an error is an InsufficientSpaceError
func IsInsufficientSpaceError(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}

// CheckAvailableSpace checks that dir's filesystem has requiredBytes free
// plus bufferPercent headroom (0.15 for 15%).
//
// When the filesystem cannot be queried the check passes, so the copy
// proceeds and fails naturally if space really runs out.
func CheckAvailableSpace(dir string, requiredBytes int64, bufferPercent float64) error {
	available, ok := availableBytes(dir)
	if !ok {
		return nil
	}

	requiredWithMargin := requiredBytes + int64(float64(requiredBytes)*bufferPercent)
	if available < requiredWithMargin {
		return &InsufficientSpaceError{
			Path:           dir,
			RequiredBytes:  requiredWithMargin,
			AvailableBytes: available,
		}
	}
	return nil
}

// GetAvailableSpace returns the available space in bytes for the filesystem
// containing dir. Returns 0 if unable to determine.
func GetAvailableSpace(dir string) int64 {
	available, _ := availableBytes(dir)
	return available
}
