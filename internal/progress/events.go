package progress

import (
	"sync"
	"time"

	"github.com/rescale/rescale-copy/internal/copier"
	"github.com/rescale/rescale-copy/internal/events"
)

// EventSink republishes copy progress on the event bus for GUI mode.
// Publishing never blocks; a slow subscriber loses intermediate updates.
type EventSink struct {
	eventBus *events.EventBus

	mu    sync.Mutex
	runID string
}

// NewEventSink creates a sink publishing to eventBus.
func NewEventSink(eventBus *events.EventBus) *EventSink {
	return &EventSink{eventBus: eventBus}
}

func (s *EventSink) OnRunStarted(runID string, sources []string, destination string) {
	s.mu.Lock()
	s.runID = runID
	s.mu.Unlock()

	s.eventBus.Publish(&events.RunStartedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventRunStarted, Time: time.Now()},
		RunID:     runID,
		Sources:   append([]string(nil), sources...),
		Dest:      destination,
	})
}

func (s *EventSink) OnFileProgress(index int, bytesCopied, bytesTotal int64) {
	s.eventBus.PublishFileProgress(index, bytesCopied, bytesTotal)
}

func (s *EventSink) OnTotalProgress(bytesCopied, bytesTotal int64) {
	s.eventBus.PublishTotalProgress(bytesCopied, bytesTotal)
}

// OnAllComplete publishes under the last started run. The coordinator
// calls OnRunCompleted instead, which carries the run's own ID.
func (s *EventSink) OnAllComplete(success bool, failures []*copier.FileError) {
	s.mu.Lock()
	runID := s.runID
	s.mu.Unlock()

	s.OnRunCompleted(runID, success, failures)
}

func (s *EventSink) OnRunCompleted(runID string, success bool, failures []*copier.FileError) {
	converted := make([]events.Failure, len(failures))
	for i, f := range failures {
		converted[i] = events.Failure{Index: f.Index, Path: f.Path, Error: f}
	}

	s.eventBus.Publish(&events.RunCompletedEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventRunCompleted, Time: time.Now()},
		RunID:     runID,
		Success:   success,
		Failures:  converted,
	})
}

func (s *EventSink) OnRunReset() {
	s.eventBus.Publish(&events.RunResetEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventRunReset, Time: time.Now()},
	})
}
