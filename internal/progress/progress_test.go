package progress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescale/rescale-copy/internal/copier"
	"github.com/rescale/rescale-copy/internal/events"
)

// Compile-time checks that every sink satisfies both interfaces.
var (
	_ copier.ProgressSink = (*TerminalUI)(nil)
	_ copier.RunObserver  = (*TerminalUI)(nil)
	_ copier.ProgressSink = (*SimpleBar)(nil)
	_ copier.RunObserver  = (*SimpleBar)(nil)
	_ copier.ProgressSink = (*EventSink)(nil)
	_ copier.RunObserver  = (*EventSink)(nil)

	_ copier.CompletionObserver = (*EventSink)(nil)
)

var testSources = []string{"/data/in/a.bin", "/data/in/b.bin", "/data/in/c.bin", "/data/in/d.bin"}

func TestTerminalUINonTerminal(t *testing.T) {
	var buf bytes.Buffer
	ui := newTerminalUI(&buf, false)
	assert.False(t, ui.IsTerminal())

	ui.OnRunStarted("run-1", testSources, "/data/out")
	ui.OnFileProgress(0, 0, 100)
	ui.OnFileProgress(0, 50, 100)
	ui.OnFileProgress(0, 100, 100)
	ui.OnFileProgress(1, 0, 0)
	ui.OnTotalProgress(100, 100)

	failure := &copier.FileError{
		Index: 2,
		Path:  "/data/in/c.bin",
		Kind:  copier.ErrSourceUnreadable,
		Err:   fs.ErrNotExist,
	}
	ui.OnAllComplete(false, []*copier.FileError{failure})

	out := buf.String()
	assert.Contains(t, out, "Copying 4 files to /data/out")
	assert.Contains(t, out, "✓ …/in/a.bin → /data/out")
	assert.Contains(t, out, "✓ …/in/b.bin → /data/out")
	assert.Contains(t, out, "✗ …/in/c.bin: source unreadable")
	assert.Equal(t, 1, strings.Count(out, "a.bin →"), "completion line printed once per file")
}

func TestTerminalUITotalsOnlyMoveForward(t *testing.T) {
	ui := newTerminalUI(&bytes.Buffer{}, false)
	ui.OnRunStarted("run-1", testSources, "/data/out")

	ui.OnTotalProgress(300, 400)
	ui.OnTotalProgress(200, 400)

	ui.totalMu.Lock()
	shown := ui.totalShown
	ui.totalMu.Unlock()
	assert.Equal(t, int64(300), shown)

	ui.OnRunReset()
	ui.totalMu.Lock()
	shown = ui.totalShown
	ui.totalMu.Unlock()
	assert.Zero(t, shown)
}

func TestTerminalUIIgnoresUnknownIndex(t *testing.T) {
	ui := newTerminalUI(&bytes.Buffer{}, false)
	ui.OnFileProgress(7, 0, 10) // before any run
	ui.OnRunStarted("run-1", testSources, "/data/out")
	ui.OnFileProgress(-1, 0, 10)
	ui.OnFileProgress(4, 0, 10)
}

func TestTerminalUIWithBars(t *testing.T) {
	var buf bytes.Buffer
	ui := newTerminalUI(&buf, true)

	ui.OnRunStarted("run-1", testSources, "/data/out")
	for i := range testSources {
		ui.OnFileProgress(i, 0, 10)
		ui.OnFileProgress(i, 10, 10)
		ui.OnTotalProgress(int64(10*(i+1)), 40)
	}

	done := make(chan struct{})
	go func() {
		ui.OnAllComplete(true, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("OnAllComplete did not return")
	}
	assert.Contains(t, buf.String(), "Total")
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path string
		n    int
		want string
	}{
		{"file.txt", 2, "file.txt"},
		{"dir/file.txt", 2, "file.txt"},
		{"/a/b/c/d/file.txt", 3, "…/c/d/file.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncatePath(tt.path, tt.n), tt.path)
	}
}

func TestSimpleBar(t *testing.T) {
	var buf bytes.Buffer
	sb := newSimpleBar(&buf)

	// Progress before a run has started is ignored
	sb.OnTotalProgress(10, 10)

	sb.OnRunStarted("run-1", testSources, "/data/out")
	sb.OnTotalProgress(0, 4096)
	sb.OnTotalProgress(2048, 8192)
	sb.OnTotalProgress(1024, 8192)

	sb.mu.Lock()
	assert.Equal(t, int64(8192), sb.max)
	assert.Equal(t, int64(2048), sb.shown)
	sb.mu.Unlock()

	sb.OnTotalProgress(8192, 8192)
	sb.OnAllComplete(true, nil)
	assert.Contains(t, buf.String(), "Copying 4 files")

	sb.OnRunStarted("run-2", testSources, "/data/out")
	failure := &copier.FileError{Index: 1, Path: "/data/out/b.bin", Kind: copier.ErrDestinationUnwritable, Err: fs.ErrPermission}
	sb.OnAllComplete(false, []*copier.FileError{failure})
	assert.Contains(t, buf.String(), "Error: file 2 (/data/out/b.bin): destination unwritable")
}

func TestEventSink(t *testing.T) {
	bus := events.NewEventBus(100)
	defer bus.Close()
	ch := bus.SubscribeAll()

	sink := NewEventSink(bus)
	sink.OnRunStarted("run-1", testSources, "/data/out")
	sink.OnFileProgress(2, 512, 1024)
	sink.OnTotalProgress(512, 4096)
	cause := errors.New("disk on fire")
	sink.OnAllComplete(false, []*copier.FileError{
		{Index: 3, Path: "/data/in/d.bin", Kind: copier.ErrIOFailureMidCopy, Err: cause},
	})
	sink.OnRunReset()

	next := func() events.Event {
		select {
		case e := <-ch:
			return e
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
			return nil
		}
	}

	started, ok := next().(*events.RunStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "run-1", started.RunID)
	assert.Equal(t, testSources, started.Sources)
	assert.Equal(t, "/data/out", started.Dest)

	fp, ok := next().(*events.FileProgressEvent)
	require.True(t, ok)
	assert.Equal(t, 2, fp.Index)
	assert.Equal(t, int64(512), fp.BytesCopied)
	assert.Equal(t, int64(1024), fp.BytesTotal)

	tp, ok := next().(*events.TotalProgressEvent)
	require.True(t, ok)
	assert.Equal(t, int64(512), tp.BytesCopied)
	assert.Equal(t, int64(4096), tp.BytesTotal)

	completed, ok := next().(*events.RunCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "run-1", completed.RunID)
	assert.False(t, completed.Success)
	require.Len(t, completed.Failures, 1)
	assert.Equal(t, 3, completed.Failures[0].Index)
	assert.ErrorIs(t, completed.Failures[0].Error, copier.ErrIOFailureMidCopy)
	assert.ErrorIs(t, completed.Failures[0].Error, cause)

	_, ok = next().(*events.RunResetEvent)
	assert.True(t, ok)
}

// blockingSink holds the first completion until release is closed.
type blockingSink struct {
	copier.NopSink
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSink) OnAllComplete(bool, []*copier.FileError) {
	b.entered <- struct{}{}
	<-b.release
}

func TestEventSinkPublishesEachRunUnderItsOwnID(t *testing.T) {
	srcDir, destDir := t.TempDir(), t.TempDir()
	sources := make([]string, 4)
	for i := range sources {
		sources[i] = filepath.Join(srcDir, fmt.Sprintf("in%d.bin", i+1))
		require.NoError(t, os.WriteFile(sources[i], bytes.Repeat([]byte{byte(i)}, 3000), 0644))
	}

	bus := events.NewEventBus(1000)
	defer bus.Close()
	completed := bus.Subscribe(events.EventRunCompleted)

	hold := &blockingSink{entered: make(chan struct{}, 2), release: make(chan struct{})}
	c := copier.New(copier.Options{FileCount: 4, Sink: copier.MultiSink{hold, NewEventSink(bus)}})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	}()
	require.NoError(t, c.SelectSources(sources))
	require.NoError(t, c.SelectDestination(destDir))

	wait := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, c.Wait(ctx))
	}

	run1, err := c.Start()
	require.NoError(t, err)
	select {
	case <-hold.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
	_, err = c.Start()
	assert.ErrorIs(t, err, copier.ErrAlreadyRunning)

	close(hold.release)
	wait()
	run2, err := c.Start()
	require.NoError(t, err)
	wait()

	var ids []string
	for len(ids) < 2 {
		select {
		case e := <-completed:
			ids = append(ids, e.(*events.RunCompletedEvent).RunID)
		case <-time.After(time.Second):
			t.Fatalf("got completions %v, want two", ids)
		}
	}
	assert.Equal(t, []string{run1, run2}, ids)
}
