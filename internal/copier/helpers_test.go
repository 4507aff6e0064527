package copier

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingSink captures every callback for later assertions.
type recordingSink struct {
	mu          sync.Mutex
	files       map[int][]int64 // bytesCopied sequence per index
	fileTotals  map[int]int64
	totals      [][2]int64
	completions int
	success     bool
	failures    []*FileError
	started     []string
	resets      int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		files:      make(map[int][]int64),
		fileTotals: make(map[int]int64),
	}
}

func (s *recordingSink) OnFileProgress(index int, bytesCopied, bytesTotal int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[index] = append(s.files[index], bytesCopied)
	s.fileTotals[index] = bytesTotal
}

func (s *recordingSink) OnTotalProgress(bytesCopied, bytesTotal int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = append(s.totals, [2]int64{bytesCopied, bytesTotal})
}

func (s *recordingSink) OnAllComplete(success bool, failures []*FileError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions++
	s.success = success
	s.failures = failures
}

func (s *recordingSink) OnRunStarted(runID string, sources []string, destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, runID)
}

func (s *recordingSink) OnRunReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
}

func (s *recordingSink) completionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completions
}

// gatedSink holds each worker at its first progress report until the test
// opens that worker's gate, so finish order is under test control.
type gatedSink struct {
	*recordingSink
	gates []chan struct{}
}

func newGatedSink(n int) *gatedSink {
	g := &gatedSink{recordingSink: newRecordingSink()}
	g.rearm(n)
	return g
}

func (g *gatedSink) rearm(n int) {
	g.gates = make([]chan struct{}, n)
	for i := range g.gates {
		g.gates[i] = make(chan struct{})
	}
}

func (g *gatedSink) OnFileProgress(index int, bytesCopied, bytesTotal int64) {
	if bytesCopied == 0 {
		<-g.gates[index]
	}
	g.recordingSink.OnFileProgress(index, bytesCopied, bytesTotal)
}

func (g *gatedSink) openAll() {
	for _, gate := range g.gates {
		close(gate)
	}
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func hashFile(t *testing.T, path string) [32]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return sha256.Sum256(data)
}

// fixture is four source files of distinct sizes around the chunk boundary.
type fixture struct {
	srcDir  string
	destDir string
	sources []string
	data    [][]byte
}

var fixtureSizes = []int{0, 2047, 2048*3 + 5, 100_000}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{srcDir: t.TempDir(), destDir: t.TempDir()}
	for i, size := range fixtureSizes {
		data := randomBytes(t, size)
		f.data = append(f.data, data)
		f.sources = append(f.sources, writeFile(t, f.srcDir, fmt.Sprintf("file%d.bin", i+1), data))
	}
	return f
}

func (f *fixture) totalSize() int64 {
	var total int64
	for _, d := range f.data {
		total += int64(len(d))
	}
	return total
}

func newTestCoordinator(t *testing.T, sink ProgressSink, f *fixture) *Coordinator {
	t.Helper()
	c := New(Options{FileCount: 4, ChunkSize: 2048, Sink: sink})
	require.NoError(t, c.SelectSources(f.sources))
	require.NoError(t, c.SelectDestination(f.destDir))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.Shutdown(ctx)
	})
	return c
}

func waitRun(t *testing.T, c *Coordinator) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Wait(ctx))
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// holdSink blocks inside OnAllComplete until release is closed, keeping
// the run Completed with its notification undelivered.
type holdSink struct {
	NopSink
	entered chan struct{}
	release chan struct{}
}

func newHoldSink() *holdSink {
	return &holdSink{entered: make(chan struct{}, 4), release: make(chan struct{})}
}

func (h *holdSink) OnAllComplete(bool, []*FileError) {
	h.entered <- struct{}{}
	<-h.release
}

func (h *holdSink) awaitHeld(t *testing.T) {
	t.Helper()
	select {
	case <-h.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the completion notification")
	}
}

// lifecycleSink logs lifecycle callbacks in order, with run IDs.
type lifecycleSink struct {
	NopSink
	mu  sync.Mutex
	log []string
}

func (s *lifecycleSink) OnRunStarted(runID string, sources []string, destination string) {
	s.append("start " + runID)
}

func (s *lifecycleSink) OnRunCompleted(runID string, success bool, failures []*FileError) {
	s.append("complete " + runID)
}

func (s *lifecycleSink) OnRunReset() {
	s.append("reset")
}

func (s *lifecycleSink) append(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, entry)
}

func (s *lifecycleSink) entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}
