package copier

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rescale/rescale-copy/internal/logging"
	"github.com/rescale/rescale-copy/internal/session"
	"github.com/rescale/rescale-copy/internal/util/buffers"
	"github.com/rescale/rescale-copy/internal/validation"
)

var errIsDirectory = errors.New("is a directory")

// Worker copies one file of the set in fixed-size chunks, reporting each
// chunk to the sink and to the session's shared totals.
type Worker struct {
	state     *session.State
	sink      ProgressSink
	pool      *buffers.Pool
	logger    *logging.Logger
	overwrite bool
}

// NewWorker creates a worker bound to a session. A nil sink discards
// progress and a nil pool uses the shared default.
func NewWorker(state *session.State, sink ProgressSink, pool *buffers.Pool, logger *logging.Logger, overwrite bool) *Worker {
	if sink == nil {
		sink = NopSink{}
	}
	if pool == nil {
		pool = buffers.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Worker{
		state:     state,
		sink:      sink,
		pool:      pool,
		logger:    logger,
		overwrite: overwrite,
	}
}

// Run copies source into destDir for slot index and returns the terminal
// status: nil on success, otherwise a *FileError. Both files are closed on
// every path. The slot's target name is the one assigned by Prepare, or the
// source basename when none was assigned.
func (w *Worker) Run(source, destDir string, index int) (err error) {
	fp := w.state.File(index)
	defer func() { fp.Finish(err) }()

	src, err := os.Open(source)
	if err != nil {
		return newFileError(index, source, ErrSourceUnreadable, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return newFileError(index, source, ErrSourceUnreadable, err)
	}
	if info.IsDir() {
		return newFileError(index, source, ErrSourceUnreadable, errIsDirectory)
	}

	size := info.Size()
	fp.Begin(size)
	w.sink.OnFileProgress(index, 0, size)
	w.sink.OnTotalProgress(w.state.AddTotalBytes(size))

	name := filepath.Base(source)
	if t := fp.Target(); t != "" {
		name = filepath.Base(t)
	}
	target := filepath.Join(destDir, name)
	if verr := validation.ValidateFilename(name); verr != nil {
		return newFileError(index, target, ErrDestinationUnwritable, verr)
	}
	if verr := validation.ValidatePathInDirectory(target, destDir); verr != nil {
		return newFileError(index, target, ErrDestinationUnwritable, verr)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !w.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	dst, err := os.OpenFile(target, flags, 0644)
	if err != nil {
		return newFileError(index, target, ErrDestinationUnwritable, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil && err == nil {
			err = newFileError(index, target, ErrIOFailureMidCopy, cerr)
		}
	}()

	w.logger.Debug().
		Int("index", index).
		Str("source", source).
		Str("target", target).
		Int64("bytes", size).
		Msg("Copy started")

	buf := w.pool.Get()
	defer w.pool.Put(buf)

	for {
		n, rerr := src.Read(*buf)
		if n > 0 {
			if _, werr := dst.Write((*buf)[:n]); werr != nil {
				return newFileError(index, target, ErrIOFailureMidCopy, werr)
			}
			w.sink.OnFileProgress(index, fp.Add(int64(n)), size)
			w.sink.OnTotalProgress(w.state.AddCopiedBytes(int64(n)))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return newFileError(index, source, ErrIOFailureMidCopy, rerr)
		}
	}

	w.logger.Debug().
		Int("index", index).
		Int64("bytes", fp.Copied()).
		Msg("Copy finished")
	return nil
}
