package events

import (
	"errors"
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventFileProgress)

	bus.PublishFileProgress(2, 2048, 8192)

	select {
	case received := <-ch:
		progress, ok := received.(*FileProgressEvent)
		if !ok {
			t.Fatal("Expected FileProgressEvent")
		}
		if progress.Index != 2 {
			t.Errorf("Expected index 2, got %d", progress.Index)
		}
		if progress.BytesCopied != 2048 || progress.BytesTotal != 8192 {
			t.Errorf("Expected 2048/8192, got %d/%d", progress.BytesCopied, progress.BytesTotal)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventLog)
	ch2 := bus.Subscribe(EventLog)

	bus.PublishLog(InfoLevel, "Test log", "run-1", nil)

	received1 := false
	received2 := false

	select {
	case <-ch1:
		received1 = true
	case <-time.After(100 * time.Millisecond):
	}

	select {
	case <-ch2:
		received2 = true
	case <-time.After(100 * time.Millisecond):
	}

	if !received1 || !received2 {
		t.Error("Not all subscribers received the event")
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	totalCh := bus.Subscribe(EventTotalProgress)
	logCh := bus.Subscribe(EventLog)

	bus.PublishTotalProgress(10, 20)

	select {
	case <-totalCh:
	case <-time.After(100 * time.Millisecond):
		t.Error("Total progress subscriber didn't receive event")
	}

	select {
	case <-logCh:
		t.Error("Log subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.Publish(&RunStartedEvent{
		BaseEvent: BaseEvent{EventType: EventRunStarted, Time: time.Now()},
		RunID:     "run-1",
	})
	bus.Publish(&RunCompletedEvent{
		BaseEvent: BaseEvent{EventType: EventRunCompleted, Time: time.Now()},
		RunID:     "run-1",
		Success:   false,
		Failures:  []Failure{{Index: 1, Path: "/tmp/a", Error: errors.New("boom")}},
	})

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			count++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if count != 2 {
		t.Errorf("Expected to receive 2 events, got %d", count)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventFileProgress)

	for i := 0; i < 10; i++ {
		bus.PublishFileProgress(0, int64(i), 10)
	}

	// Excess events are dropped rather than blocking the publisher
	if bus.GetDroppedEventCount() != 8 {
		t.Errorf("Expected 8 dropped events, got %d", bus.GetDroppedEventCount())
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			goto done
		}
	}
done:

	if count != 2 {
		t.Errorf("Expected 2 buffered events, got %d", count)
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventFileProgress)

	bus.Close()

	_, ok := <-ch
	if ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing after close should not panic
	bus.PublishFileProgress(0, 1, 1)

	// Subscribing after close returns a closed channel
	if _, ok := <-bus.Subscribe(EventLog); ok {
		t.Error("Subscription after Close should be closed")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventRunReset)
	bus.Unsubscribe(EventRunReset, ch)

	bus.Publish(&RunResetEvent{BaseEvent: BaseEvent{EventType: EventRunReset, Time: time.Now()}})

	select {
	case <-ch:
		t.Error("Unsubscribed channel should not receive events")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level %d: expected %s, got %s", tt.level, tt.expected, got)
		}
	}
}
