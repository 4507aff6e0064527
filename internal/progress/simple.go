package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/rescale/rescale-copy/internal/copier"
)

// SimpleBar renders only the aggregate progress as a single bar.
// Suited to narrow terminals and CI logs where one bar per file is noise.
type SimpleBar struct {
	out io.Writer

	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	max   int64
	shown int64
}

// NewSimpleBar creates a single-bar sink writing to stderr.
func NewSimpleBar() *SimpleBar {
	return newSimpleBar(os.Stderr)
}

func newSimpleBar(out io.Writer) *SimpleBar {
	return &SimpleBar{out: out}
}

func (s *SimpleBar) OnRunStarted(runID string, sources []string, destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.max, s.shown = 0, 0
	s.bar = progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Copying %d files", len(sources))),
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(s.out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// OnFileProgress is ignored; only the aggregate is drawn.
func (s *SimpleBar) OnFileProgress(int, int64, int64) {}

// OnTotalProgress moves the bar forward. Out-of-order reports are dropped.
func (s *SimpleBar) OnTotalProgress(bytesCopied, bytesTotal int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil {
		return
	}
	if bytesTotal > s.max {
		s.max = bytesTotal
		s.bar.ChangeMax64(bytesTotal)
	}
	if bytesCopied > s.shown {
		s.shown = bytesCopied
		_ = s.bar.Set64(bytesCopied)
	}
}

func (s *SimpleBar) OnAllComplete(success bool, failures []*copier.FileError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		if success {
			_ = s.bar.Finish()
		} else {
			_ = s.bar.Exit()
			fmt.Fprint(s.out, "\n")
		}
		s.bar = nil
	}
	for _, f := range failures {
		fmt.Fprintf(s.out, "Error: %v\n", f)
	}
}

func (s *SimpleBar) OnRunReset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.max, s.shown = 0, 0
}
