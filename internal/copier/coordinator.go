// Package copier copies a fixed set of files into one directory
// concurrently, one worker per file, with shared progress totals and a
// single completion notification per run.
package copier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rescale/rescale-copy/internal/constants"
	"github.com/rescale/rescale-copy/internal/latch"
	"github.com/rescale/rescale-copy/internal/logging"
	"github.com/rescale/rescale-copy/internal/session"
	"github.com/rescale/rescale-copy/internal/util/buffers"
	"github.com/rescale/rescale-copy/internal/util/paths"
)

// Options configures a Coordinator. Zero values take the defaults.
type Options struct {
	FileCount   int             // Size of the file set (default constants.DefaultFileCount)
	ChunkSize   int             // Bytes per read/write (default constants.ChunkSize)
	NoOverwrite bool            // Fail existing targets instead of truncating them
	Sink        ProgressSink    // Progress observer (default NopSink)
	Logger      *logging.Logger // Structured logger (default discards)
}

// Result summarizes one finished run.
type Result struct {
	RunID       string
	Success     bool
	Failures    []*FileError
	Files       []session.FileSnapshot
	BytesCopied int64
	BytesTotal  int64
	Duration    time.Duration
}

// Coordinator owns the session and drives runs: it validates selections,
// launches one worker per file and delivers the completion notification.
// Thread-safe.
type Coordinator struct {
	n      int
	state  *session.State
	latch  *latch.Latch
	sink   ProgressSink
	worker *Worker
	pool   *buffers.Pool
	logger *logging.Logger

	mu         sync.Mutex    // Serializes lifecycle transitions
	done       chan struct{} // Closed after the current run's OnAllComplete returns
	lastResult *Result
	closed     bool

	inflight sync.WaitGroup // Workers and supervisors of all runs
}

// New creates a coordinator with its own session.
func New(opts Options) *Coordinator {
	if opts.FileCount <= 0 {
		opts.FileCount = constants.DefaultFileCount
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = constants.ChunkSize
	}
	if opts.Sink == nil {
		opts.Sink = NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	pool := buffers.Default()
	if opts.ChunkSize != pool.Size() {
		pool = buffers.NewPool(opts.ChunkSize)
	}

	state := session.New(opts.FileCount)
	l, _ := latch.New(opts.FileCount)

	return &Coordinator{
		n:      opts.FileCount,
		state:  state,
		latch:  l,
		sink:   opts.Sink,
		worker: NewWorker(state, opts.Sink, pool, opts.Logger, !opts.NoOverwrite),
		pool:   pool,
		logger: opts.Logger,
	}
}

// FileCount returns N, the number of files in a selection.
func (c *Coordinator) FileCount() int { return c.n }

// SelectSources replaces the source file set. Exactly N paths are required;
// existence is checked by the workers, not here.
func (c *Coordinator) SelectSources(sources []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.RunState() == session.Running {
		return ErrAlreadyRunning
	}
	if len(sources) != c.n {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidSelectionCount, len(sources), c.n)
	}
	c.state.SetSources(sources)
	return nil
}

// SelectDestination sets the destination directory.
func (c *Coordinator) SelectDestination(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.RunState() == session.Running {
		return ErrAlreadyRunning
	}
	if dir == "" {
		return ErrDestinationNotSelected
	}
	c.state.SetDestination(dir)
	return nil
}

// Start launches a run over the current selection and returns immediately
// with its ID. Until the previous run's completion notification has
// returned, Start fails with ErrAlreadyRunning. Rejected Starts touch
// neither the session nor the filesystem.
func (c *Coordinator) Start() (string, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return "", ErrClosed
	}
	if c.state.RunState() == session.Running || c.notifying() {
		c.mu.Unlock()
		return "", ErrAlreadyRunning
	}
	sources := c.state.Sources()
	if len(sources) != c.n {
		c.mu.Unlock()
		return "", ErrSourcesNotSelected
	}
	dest := c.state.Destination()
	if dest == "" {
		c.mu.Unlock()
		return "", ErrDestinationNotSelected
	}

	if err := c.latch.Reset(c.n); err != nil {
		c.mu.Unlock()
		return "", fmt.Errorf("failed to arm completion latch: %w", err)
	}
	released := c.latch.Done()
	c.state.ResetProgress()

	targets, collisions := paths.PlanTargets(sources, dest)
	for _, t := range targets {
		c.state.File(t.Index).Prepare(t.Source, t.Target)
	}

	runID := uuid.NewString()
	c.state.MarkRunning(runID)
	c.lastResult = nil
	done := make(chan struct{})
	c.done = done
	c.inflight.Add(c.n + 1)

	c.mu.Unlock()

	log := c.logger.With().Str("run_id", runID).Logger()
	log.Info().
		Int("files", c.n).
		Str("destination", dest).
		Int("renamed", collisions).
		Msg("Copy run started")

	// Observers hear about the run before any worker reports progress
	if o, ok := c.sink.(RunObserver); ok {
		o.OnRunStarted(runID, sources, dest)
	}

	for i, src := range sources {
		go func(index int, source string) {
			defer c.inflight.Done()
			defer c.latch.CountDown()

			if err := c.worker.Run(source, dest, index); err != nil {
				log.Warn().Err(err).Int("index", index).Msg("File copy failed")
			}
		}(i, src)
	}
	go c.supervise(runID, released, done)

	return runID, nil
}

// supervise waits for every worker of one run, then records the result
// and delivers the single completion notification.
func (c *Coordinator) supervise(runID string, released <-chan struct{}, done chan struct{}) {
	defer c.inflight.Done()
	defer close(done)

	<-released

	c.mu.Lock()
	duration := c.state.MarkCompleted()
	result := c.buildResult(runID, duration)
	c.lastResult = result
	c.mu.Unlock()

	ev := c.logger.Info()
	if !result.Success {
		ev = c.logger.Warn()
	}
	ev.Str("run_id", runID).
		Int64("bytes", result.BytesCopied).
		Int("failed", len(result.Failures)).
		Dur("duration", duration).
		Msg("Copy run completed")

	stats := c.pool.Stats()
	c.logger.Debug().
		Int("buffer_size", stats.BufferSize).
		Int64("allocations", stats.Allocations).
		Int64("gets", stats.Gets).
		Msg("Buffer pool usage")

	notifyComplete(c.sink, runID, result.Success, result.Failures)
}

// notifying reports whether a run is Completed but its completion
// notification has not returned yet. Caller holds c.mu.
func (c *Coordinator) notifying() bool {
	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *Coordinator) buildResult(runID string, duration time.Duration) *Result {
	snap := c.state.Snapshot()
	result := &Result{
		RunID:       runID,
		Files:       snap.Files,
		BytesCopied: snap.BytesCopied,
		BytesTotal:  snap.BytesTotal,
		Duration:    duration,
	}
	for _, f := range snap.Files {
		if f.Err != nil {
			result.Failures = append(result.Failures, AsFileError(f.Index, f.Source, f.Err))
		}
	}
	result.Success = len(result.Failures) == 0
	return result
}

// Reset clears progress and failures so the same selection can run again.
// Idempotent; rejected while a run is in flight or its completion
// notification is still being delivered.
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	if c.state.RunState() == session.Running || c.notifying() {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}

	if err := c.latch.Reset(c.n); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to arm completion latch: %w", err)
	}
	c.state.ResetProgress()
	c.state.MarkIdle()
	c.lastResult = nil
	c.mu.Unlock()

	if o, ok := c.sink.(RunObserver); ok {
		o.OnRunReset()
	}
	return nil
}

// State returns the current lifecycle state.
func (c *Coordinator) State() session.RunState {
	return c.state.RunState()
}

// Snapshot returns a point-in-time copy of the session.
func (c *Coordinator) Snapshot() session.Snapshot {
	return c.state.Snapshot()
}

// LastResult returns the result of the last completed run, or nil when
// no run has completed since the last Reset.
func (c *Coordinator) LastResult() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// Wait blocks until the current run has completed and its completion
// notification has returned. Returns immediately when no run was started.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown refuses further runs and waits for in-flight workers. When ctx
// ends first the workers are abandoned and ctx's error is returned.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		c.logger.Warn().
			Str("run_id", c.state.RunID()).
			Msg("Shutdown deadline reached, abandoning in-flight copies")
		return ctx.Err()
	}
}
