package gui

import (
	"sync"

	"github.com/rescale/rescale-copy/internal/events"
)

// slotProgress is what one file row displays.
type slotProgress struct {
	copied int64
	total  int64
	done   bool
}

// fraction returns progress in [0, 1]. Empty files are complete once done.
func (s slotProgress) fraction() float64 {
	if s.done {
		return 1
	}
	if s.total <= 0 {
		return 0
	}
	return float64(s.copied) / float64(s.total)
}

// progressModel accumulates bus events between widget flushes. It is
// written by the event goroutine and read by the flush ticker, so every
// method takes the lock. Counters only move forward within a run because
// the bus may deliver totals from different workers out of order.
type progressModel struct {
	mu sync.Mutex

	slots   []slotProgress
	copied  int64
	total   int64
	running bool
	runID   string
	warning string
	dirty   bool

	// Run whose completion was already handled; the bus and the flush
	// fallback may both report the same completion.
	completedRunID string
}

func newProgressModel(n int) *progressModel {
	return &progressModel{slots: make([]slotProgress, n)}
}

// apply folds one event into the model.
func (m *progressModel) apply(e events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch ev := e.(type) {
	case *events.RunStartedEvent:
		m.clear()
		m.running = true
		m.runID = ev.RunID

	case *events.FileProgressEvent:
		if ev.Index < 0 || ev.Index >= len(m.slots) {
			return
		}
		s := &m.slots[ev.Index]
		s.total = ev.BytesTotal
		if ev.BytesCopied > s.copied {
			s.copied = ev.BytesCopied
		}
		if s.copied >= s.total {
			s.done = true
		}

	case *events.TotalProgressEvent:
		if ev.BytesTotal > m.total {
			m.total = ev.BytesTotal
		}
		if ev.BytesCopied > m.copied {
			m.copied = ev.BytesCopied
		}

	case *events.RunCompletedEvent:
		m.running = false

	case *events.RunResetEvent:
		m.clear()
		m.runID = ""
		m.completedRunID = ""

	case *events.LogEvent:
		if ev.Level >= events.WarnLevel {
			m.warning = ev.Message
		}

	default:
		return
	}
	m.dirty = true
}

func (m *progressModel) clear() {
	for i := range m.slots {
		m.slots[i] = slotProgress{}
	}
	m.copied, m.total = 0, 0
	m.running = false
	m.warning = ""
}

// claimCompletion reports whether the completion of runID has not been
// handled yet, and marks it handled.
func (m *progressModel) claimCompletion(runID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if runID == "" || runID == m.completedRunID {
		return false
	}
	m.completedRunID = runID
	m.running = false
	m.dirty = true
	return true
}

// activeRun returns the ID of the run the model considers in flight.
func (m *progressModel) activeRun() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runID, m.running
}

// modelView is a copy of the model for one flush.
type modelView struct {
	slots   []slotProgress
	copied  int64
	total   int64
	running bool
	runID   string
	warning string
}

// totalFraction returns aggregate progress in [0, 1].
func (v modelView) totalFraction() float64 {
	if v.total <= 0 {
		return 0
	}
	return float64(v.copied) / float64(v.total)
}

// take returns a copy of the model and whether anything changed since the
// last take.
func (m *progressModel) take() (modelView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dirty := m.dirty
	m.dirty = false
	return modelView{
		slots:   append([]slotProgress(nil), m.slots...),
		copied:  m.copied,
		total:   m.total,
		running: m.running,
		runID:   m.runID,
		warning: m.warning,
	}, dirty
}
