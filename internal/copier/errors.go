package copier

import (
	"errors"
	"fmt"
)

// Selection and lifecycle errors. These are returned synchronously and
// leave the session unchanged.
var (
	ErrInvalidSelectionCount  = errors.New("wrong number of source files selected")
	ErrSourcesNotSelected     = errors.New("source files not selected")
	ErrDestinationNotSelected = errors.New("destination directory not selected")
	ErrAlreadyRunning         = errors.New("a copy is already running")
	ErrClosed                 = errors.New("coordinator is shut down")
)

// Per-file failure kinds, carried as FileError.Kind.
var (
	ErrSourceUnreadable      = errors.New("source unreadable")
	ErrDestinationUnwritable = errors.New("destination unwritable")
	ErrIOFailureMidCopy      = errors.New("I/O failure mid-copy")
)

// FileError reports why one slot of the file set failed.
// errors.Is matches both Kind and the underlying cause.
type FileError struct {
	Index int    // Slot index in the file set
	Path  string // Source path for read failures, target path otherwise
	Kind  error  // One of ErrSourceUnreadable, ErrDestinationUnwritable, ErrIOFailureMidCopy
	Err   error  // Underlying cause
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("file %d (%s): %v", e.Index+1, e.Path, e.Kind)
	}
	return fmt.Sprintf("file %d (%s): %v: %v", e.Index+1, e.Path, e.Kind, e.Err)
}

func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newFileError(index int, path string, kind, err error) *FileError {
	return &FileError{Index: index, Path: path, Kind: kind, Err: err}
}

// AsFileError returns err as a *FileError when it is, or wraps it as an
// I/O failure for slot index.
func AsFileError(index int, path string, err error) *FileError {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe
	}
	return newFileError(index, path, ErrIOFailureMidCopy, err)
}
