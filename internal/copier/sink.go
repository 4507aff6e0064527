package copier

// ProgressSink receives progress from a copy run.
//
// Methods are called from worker goroutines and from the run's supervisor
// goroutine, never while a lock is held. Implementations that drive a UI
// must marshal onto their own thread.
type ProgressSink interface {
	// OnFileProgress reports one file's counters. The first call for a run
	// carries bytesCopied == 0 and the file size.
	OnFileProgress(index int, bytesCopied, bytesTotal int64)

	// OnTotalProgress reports the aggregate counters as observed inside
	// the shared lock. Calls from different workers may arrive out of order.
	OnTotalProgress(bytesCopied, bytesTotal int64)

	// OnAllComplete is called exactly once per run after every worker has
	// finished. failures is sorted by index and empty on success.
	OnAllComplete(success bool, failures []*FileError)
}

// RunObserver is optionally implemented by sinks that also want lifecycle
// notifications.
type RunObserver interface {
	OnRunStarted(runID string, sources []string, destination string)
	OnRunReset()
}

// CompletionObserver is optionally implemented by sinks that need the run
// ID alongside the completion. The supervisor calls OnRunCompleted in place
// of OnAllComplete on such sinks, so each sink still hears once per run.
type CompletionObserver interface {
	OnRunCompleted(runID string, success bool, failures []*FileError)
}

// notifyComplete delivers a run's completion to s.
func notifyComplete(s ProgressSink, runID string, success bool, failures []*FileError) {
	if o, ok := s.(CompletionObserver); ok {
		o.OnRunCompleted(runID, success, failures)
		return
	}
	s.OnAllComplete(success, failures)
}

// NopSink discards all progress.
type NopSink struct{}

func (NopSink) OnFileProgress(int, int64, int64) {}
func (NopSink) OnTotalProgress(int64, int64)     {}
func (NopSink) OnAllComplete(bool, []*FileError) {}

// MultiSink fans every call out to each sink in order.
type MultiSink []ProgressSink

func (m MultiSink) OnFileProgress(index int, bytesCopied, bytesTotal int64) {
	for _, s := range m {
		s.OnFileProgress(index, bytesCopied, bytesTotal)
	}
}

func (m MultiSink) OnTotalProgress(bytesCopied, bytesTotal int64) {
	for _, s := range m {
		s.OnTotalProgress(bytesCopied, bytesTotal)
	}
}

func (m MultiSink) OnAllComplete(success bool, failures []*FileError) {
	for _, s := range m {
		s.OnAllComplete(success, failures)
	}
}

func (m MultiSink) OnRunCompleted(runID string, success bool, failures []*FileError) {
	for _, s := range m {
		notifyComplete(s, runID, success, failures)
	}
}

func (m MultiSink) OnRunStarted(runID string, sources []string, destination string) {
	for _, s := range m {
		if o, ok := s.(RunObserver); ok {
			o.OnRunStarted(runID, sources, destination)
		}
	}
}

func (m MultiSink) OnRunReset() {
	for _, s := range m {
		if o, ok := s.(RunObserver); ok {
			o.OnRunReset()
		}
	}
}
