package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rescale/rescale-copy/internal/events"
)

func TestLogger_SetOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("cli", nil)
	l.SetOutput(&buf)

	l.Infof("copied %d files", 4)

	if !strings.Contains(buf.String(), "copied 4 files") {
		t.Errorf("Expected message in output, got %q", buf.String())
	}
}

func TestLogger_BusHookPublishesWarnings(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventLog)

	var buf bytes.Buffer
	l := NewLogger("gui", bus)
	l.SetOutput(&buf)

	l.Info().Msg("not republished")
	l.Warn().Msg("disk nearly full")

	select {
	case ev := <-ch:
		logEv, ok := ev.(*events.LogEvent)
		if !ok {
			t.Fatal("Expected LogEvent")
		}
		if logEv.Level != events.WarnLevel {
			t.Errorf("Expected WARN, got %s", logEv.Level)
		}
		if logEv.Message != "disk nearly full" {
			t.Errorf("Unexpected message %q", logEv.Message)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for log event")
	}

	select {
	case ev := <-ch:
		t.Errorf("Unexpected extra event: %+v", ev)
	default:
	}
}

func TestLogger_EnableFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger("cli", nil)
	l.SetOutput(&bytes.Buffer{})

	path, err := l.EnableFile(dir)
	if err != nil {
		t.Fatalf("EnableFile failed: %v", err)
	}

	l.Error().Str("run_id", "abc").Msg("write failed")
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), `"run_id":"abc"`) {
		t.Errorf("Expected JSON field in log file, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.name, got, tt.expected)
		}
	}
}
