// Package session holds the state of one copy session: the selected files,
// the destination, the run lifecycle and the progress counters.
package session

import (
	"sync"
	"sync/atomic"
	"time"
)

// RunState is the lifecycle state of the session.
type RunState string

const (
	Idle      RunState = "idle"      // Nothing started, or reset after a run
	Running   RunState = "running"   // Workers in flight
	Completed RunState = "completed" // Every worker finished; results retained until Reset
)

// FileStatus is the per-file state within a run.
type FileStatus string

const (
	FilePending FileStatus = "pending" // Not yet opened
	FileCopying FileStatus = "copying" // Size known, bytes flowing
	FileDone    FileStatus = "done"    // Copied to EOF and closed
	FileFailed  FileStatus = "failed"  // Terminated with an error
)

// FileProgress tracks one slot of the file set.
// Counters are written only by the worker owning the slot and may be read
// from any goroutine.
type FileProgress struct {
	Index int

	copied atomic.Int64
	total  atomic.Int64

	mu          sync.RWMutex // Protects the fields below
	source      string
	target      string
	status      FileStatus
	err         error
	startedAt   time.Time
	completedAt time.Time
}

// Prepare assigns the source and resolved target for a new run.
func (f *FileProgress) Prepare(source, target string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.source = source
	f.target = target
}

// Begin records the byte total and moves the slot to FileCopying.
func (f *FileProgress) Begin(total int64) {
	f.total.Store(total)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = FileCopying
	f.startedAt = time.Now()
}

// Add advances the copied counter by n and returns the new value.
func (f *FileProgress) Add(n int64) int64 {
	return f.copied.Add(n)
}

// Finish marks the slot done, or failed when err is non-nil.
func (f *FileProgress) Finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	f.completedAt = time.Now()
	if err != nil {
		f.status = FileFailed
	} else {
		f.status = FileDone
	}
}

func (f *FileProgress) Copied() int64 { return f.copied.Load() }
func (f *FileProgress) Total() int64  { return f.total.Load() }

// Source returns the source path assigned by Prepare.
func (f *FileProgress) Source() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.source
}

// Target returns the resolved destination path assigned by Prepare.
func (f *FileProgress) Target() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.target
}

// Status returns the current per-file status (thread-safe).
func (f *FileProgress) Status() FileStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

// Err returns the terminal error of a failed slot.
func (f *FileProgress) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

func (f *FileProgress) reset() {
	f.copied.Store(0)
	f.total.Store(0)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = ""
	f.status = FilePending
	f.err = nil
	f.startedAt = time.Time{}
	f.completedAt = time.Time{}
}

func (f *FileProgress) snapshot() FileSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var elapsed time.Duration
	if !f.startedAt.IsZero() {
		end := f.completedAt
		if end.IsZero() {
			end = time.Now()
		}
		elapsed = end.Sub(f.startedAt)
	}
	return FileSnapshot{
		Index:       f.Index,
		Source:      f.source,
		Target:      f.target,
		BytesCopied: f.copied.Load(),
		BytesTotal:  f.total.Load(),
		Status:      f.status,
		Err:         f.err,
		Elapsed:     elapsed,
	}
}

// State is the single session object shared by the coordinator, its
// workers and any observer. Create one per process with New.
type State struct {
	n     int
	files []*FileProgress

	// totalMu guards the aggregate counters, the only values with
	// concurrent writers. It is held for the increment only.
	totalMu     sync.Mutex
	totalCopied int64
	totalBytes  int64

	mu          sync.RWMutex // Protects selection and lifecycle fields
	sources     []string
	destination string
	runState    RunState
	runID       string
	startedAt   time.Time
	completedAt time.Time
}

// New creates a session for a file set of exactly n slots.
func New(n int) *State {
	s := &State{
		n:        n,
		files:    make([]*FileProgress, n),
		runState: Idle,
	}
	for i := range s.files {
		s.files[i] = &FileProgress{Index: i, status: FilePending}
	}
	return s
}

// N returns the fixed size of the file set.
func (s *State) N() int { return s.n }

// File returns the progress slot for index i.
func (s *State) File(i int) *FileProgress { return s.files[i] }

// SetSources replaces the selected source paths. The caller validates the count.
func (s *State) SetSources(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append([]string(nil), paths...)
}

// Sources returns a copy of the selected source paths.
func (s *State) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.sources...)
}

func (s *State) SetDestination(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destination = dir
}

func (s *State) Destination() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destination
}

// RunState returns the current lifecycle state.
func (s *State) RunState() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runState
}

// RunID returns the ID of the current or last run, empty when Idle.
func (s *State) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

// MarkRunning moves the session to Running for runID.
func (s *State) MarkRunning(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runState = Running
	s.runID = runID
	s.startedAt = time.Now()
	s.completedAt = time.Time{}
}

// MarkCompleted moves the session to Completed and returns the run duration.
func (s *State) MarkCompleted() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runState = Completed
	s.completedAt = time.Now()
	return s.completedAt.Sub(s.startedAt)
}

// MarkIdle moves the session back to Idle.
func (s *State) MarkIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runState = Idle
	s.runID = ""
	s.startedAt = time.Time{}
	s.completedAt = time.Time{}
}

// ResetProgress zeroes every per-file slot and the aggregate counters.
// Selections are kept.
func (s *State) ResetProgress() {
	for _, f := range s.files {
		f.reset()
	}

	s.totalMu.Lock()
	s.totalCopied = 0
	s.totalBytes = 0
	s.totalMu.Unlock()
}

// AddTotalBytes grows the aggregate byte total and returns both counters
// as observed inside the lock.
func (s *State) AddTotalBytes(n int64) (copied, total int64) {
	s.totalMu.Lock()
	s.totalBytes += n
	copied, total = s.totalCopied, s.totalBytes
	s.totalMu.Unlock()
	return copied, total
}

// AddCopiedBytes grows the aggregate copied counter and returns both
// counters as observed inside the lock.
func (s *State) AddCopiedBytes(n int64) (copied, total int64) {
	s.totalMu.Lock()
	s.totalCopied += n
	copied, total = s.totalCopied, s.totalBytes
	s.totalMu.Unlock()
	return copied, total
}

// Total returns the aggregate counters.
func (s *State) Total() (copied, total int64) {
	s.totalMu.Lock()
	defer s.totalMu.Unlock()
	return s.totalCopied, s.totalBytes
}

// FileSnapshot is a point-in-time copy of one slot.
type FileSnapshot struct {
	Index       int
	Source      string
	Target      string
	BytesCopied int64
	BytesTotal  int64
	Status      FileStatus
	Err         error
	Elapsed     time.Duration
}

// Snapshot is a point-in-time copy of the whole session.
type Snapshot struct {
	RunState    RunState
	RunID       string
	Sources     []string
	Destination string
	Files       []FileSnapshot
	BytesCopied int64
	BytesTotal  int64
}

// Percent returns aggregate completion in [0, 100].
func (s Snapshot) Percent() float64 {
	if s.BytesTotal <= 0 {
		return 0
	}
	return float64(s.BytesCopied) / float64(s.BytesTotal) * 100
}

// Snapshot captures the session for display. Per-file and aggregate values
// are read separately and may be a chunk apart while a run is in flight.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{
		RunState:    s.runState,
		RunID:       s.runID,
		Sources:     append([]string(nil), s.sources...),
		Destination: s.destination,
	}
	s.mu.RUnlock()

	snap.Files = make([]FileSnapshot, len(s.files))
	for i, f := range s.files {
		snap.Files[i] = f.snapshot()
	}
	snap.BytesCopied, snap.BytesTotal = s.Total()
	return snap
}
