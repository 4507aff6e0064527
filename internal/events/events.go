package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rescale/rescale-copy/internal/constants"
)

// EventType defines the types of events that can be emitted
type EventType string

const (
	EventLog EventType = "log"

	// Copy run events
	EventRunStarted    EventType = "run_started"    // Start accepted, workers launching
	EventFileProgress  EventType = "file_progress"  // One file advanced by a chunk
	EventTotalProgress EventType = "total_progress" // Aggregate counters changed
	EventRunCompleted  EventType = "run_completed"  // All workers finished (success or not)
	EventRunReset      EventType = "run_reset"      // Progress cleared, ready for next run
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level   LogLevel
	Message string
	RunID   string
	Error   error
}

// RunStartedEvent is published once per accepted Start
type RunStartedEvent struct {
	BaseEvent
	RunID   string
	Sources []string
	Dest    string
}

// FileProgressEvent carries one file's counters after a chunk
type FileProgressEvent struct {
	BaseEvent
	Index       int
	BytesCopied int64
	BytesTotal  int64
}

// TotalProgressEvent carries the aggregate counters
type TotalProgressEvent struct {
	BaseEvent
	BytesCopied int64
	BytesTotal  int64
}

// Failure describes one failed file in a RunCompletedEvent
type Failure struct {
	Index int
	Path  string
	Error error
}

// RunCompletedEvent is published exactly once per run
type RunCompletedEvent struct {
	BaseEvent
	RunID    string
	Success  bool
	Failures []Failure
}

// RunResetEvent is published when progress is cleared between runs
type RunResetEvent struct {
	BaseEvent
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Events for a full subscriber channel are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, runID string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: BaseEvent{
			EventType: EventLog,
			Time:      time.Now(),
		},
		Level:   level,
		Message: message,
		RunID:   runID,
		Error:   err,
	})
}

// PublishFileProgress is a convenience method for publishing per-file progress
func (eb *EventBus) PublishFileProgress(index int, copied, total int64) {
	eb.Publish(&FileProgressEvent{
		BaseEvent:   BaseEvent{EventType: EventFileProgress, Time: time.Now()},
		Index:       index,
		BytesCopied: copied,
		BytesTotal:  total,
	})
}

// PublishTotalProgress is a convenience method for publishing aggregate progress
func (eb *EventBus) PublishTotalProgress(copied, total int64) {
	eb.Publish(&TotalProgressEvent{
		BaseEvent:   BaseEvent{EventType: EventTotalProgress, Time: time.Now()},
		BytesCopied: copied,
		BytesTotal:  total,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
// This prevents memory leaks from abandoned subscriptions
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}
