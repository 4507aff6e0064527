package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/rescale/rescale-copy/internal/constants"
	"github.com/rescale/rescale-copy/internal/copier"
)

// TerminalUI renders one mpb bar per file plus an aggregate bar.
// When the output is not a terminal it prints one line per finished file.
// A TerminalUI is reusable across runs: each OnRunStarted builds fresh bars.
type TerminalUI struct {
	out        io.Writer
	isTerminal bool

	mu       sync.Mutex // Guards the per-run fields below
	progress *mpb.Progress
	files    []*fileBar
	total    *mpb.Bar
	dest     string

	totalMu     sync.Mutex
	totalShown  int64 // Highest aggregate value drawn; totals can arrive out of order
	totalBytes  int64
	totalUpdate time.Time
}

type fileBar struct {
	bar        *mpb.Bar
	index      int
	source     string
	done       atomic.Bool
	startTime  time.Time
	lastUpdate time.Time
}

// NewTerminalUI creates a terminal UI writing to stderr.
func NewTerminalUI() *TerminalUI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))
	if isTerminal {
		// Enable ANSI escape sequences on Windows for proper progress bar rendering
		enableANSIOnWindows(os.Stderr)
	}
	return newTerminalUI(os.Stderr, isTerminal)
}

func newTerminalUI(out io.Writer, isTerminal bool) *TerminalUI {
	return &TerminalUI{out: out, isTerminal: isTerminal}
}

// IsTerminal returns true if output is to a terminal (progress bars are active).
func (u *TerminalUI) IsTerminal() bool {
	return u.isTerminal
}

// Writer returns an io.Writer that prints above the bars of the current
// run, or straight to the output between runs.
func (u *TerminalUI) Writer() io.Writer {
	return writerFunc(func(b []byte) (int, error) {
		u.mu.Lock()
		p := u.progress
		u.mu.Unlock()
		if p != nil && u.isTerminal {
			return p.Write(b)
		}
		return u.out.Write(b)
	})
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) { return f(b) }

func (u *TerminalUI) OnRunStarted(runID string, sources []string, destination string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.dest = destination
	u.files = make([]*fileBar, len(sources))

	u.totalMu.Lock()
	u.totalShown, u.totalBytes = 0, 0
	u.totalUpdate = time.Now()
	u.totalMu.Unlock()

	if !u.isTerminal {
		u.progress = nil
		fmt.Fprintf(u.out, "Copying %d files to %s\n", len(sources), destination)
		for i, src := range sources {
			u.files[i] = &fileBar{index: i, source: src, startTime: time.Now()}
		}
		return
	}

	u.progress = mpb.New(
		mpb.WithOutput(u.out),
		mpb.WithRefreshRate(constants.TerminalRefreshRate),
		mpb.WithWidth(100),
	)

	for i, src := range sources {
		fb := &fileBar{index: i, source: src, startTime: time.Now()}
		fb.lastUpdate = fb.startTime
		label := fmt.Sprintf("[%d/%d] %s", i+1, len(sources), truncatePath(src, 2))
		fb.bar = u.progress.New(0,
			barStyle(),
			mpb.PrependDecorators(
				decor.Name(label, decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace),
			),
		)
		u.files[i] = fb
	}

	u.total = u.progress.New(0,
		barStyle(),
		mpb.PrependDecorators(
			decor.Name("Total", decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Name("  "),
			decor.Percentage(decor.WCSyncSpace),
			decor.Name("  "),
			decor.Name("ETA ", decor.WCSyncWidth),
			decor.EwmaETA(decor.ET_STYLE_GO, 30),
		),
	)
}

func barStyle() mpb.BarFillerBuilder {
	return mpb.BarStyle().
		Lbound("[").
		Filler("█"). // U+2588 - Full block for completed portion
		Tip("█").
		Padding("░"). // U+2591 - Light shade for remaining portion
		Rbound("]")
}

func (u *TerminalUI) fileBar(index int) *fileBar {
	u.mu.Lock()
	defer u.mu.Unlock()
	if index < 0 || index >= len(u.files) {
		return nil
	}
	return u.files[index]
}

// OnFileProgress advances one file's bar. Each index has a single writer,
// so the per-bar timing fields need no lock.
func (u *TerminalUI) OnFileProgress(index int, bytesCopied, bytesTotal int64) {
	fb := u.fileBar(index)
	if fb == nil {
		return
	}

	if bytesCopied == 0 && fb.bar != nil {
		fb.bar.SetTotal(bytesTotal, false)
	}

	if fb.bar != nil {
		now := time.Now()
		fb.bar.EwmaSetCurrent(bytesCopied, now.Sub(fb.lastUpdate))
		fb.lastUpdate = now
	}

	if bytesCopied >= bytesTotal && fb.done.CompareAndSwap(false, true) {
		if fb.bar != nil {
			// ENSURE exact 100% completion (no rounding errors)
			fb.bar.SetTotal(-1, true)
		}
		u.printf("✓ %s → %s (%s, %s)\n",
			truncatePath(fb.source, 2),
			u.destination(),
			FormatBytes(bytesTotal),
			time.Since(fb.startTime).Round(time.Millisecond))
	}
}

// OnTotalProgress advances the aggregate bar. Reports from different
// workers may arrive out of order; the bar only moves forward.
func (u *TerminalUI) OnTotalProgress(bytesCopied, bytesTotal int64) {
	u.mu.Lock()
	bar := u.total
	u.mu.Unlock()

	u.totalMu.Lock()
	defer u.totalMu.Unlock()

	if bar != nil && bytesTotal > u.totalBytes {
		u.totalBytes = bytesTotal
		bar.SetTotal(bytesTotal, false)
	}
	if bytesCopied <= u.totalShown {
		return
	}
	u.totalShown = bytesCopied
	if bar != nil {
		now := time.Now()
		bar.EwmaSetCurrent(bytesCopied, now.Sub(u.totalUpdate))
		u.totalUpdate = now
	}
}

// OnAllComplete finalizes every bar, reports failures and waits for the
// final render so the caller's summary prints below the bars.
func (u *TerminalUI) OnAllComplete(success bool, failures []*copier.FileError) {
	u.mu.Lock()
	p, files, total := u.progress, u.files, u.total
	u.mu.Unlock()

	for _, fb := range files {
		if fb != nil && fb.bar != nil && !fb.done.Load() {
			fb.bar.Abort(false) // false = don't remove (show failure)
		}
	}
	for _, f := range failures {
		u.printf("✗ %s: %v: %v\n", truncatePath(f.Path, 2), f.Kind, f.Err)
	}

	if total != nil {
		if success {
			total.SetTotal(-1, true)
		} else {
			total.Abort(false)
		}
	}
	if p != nil {
		p.Wait()
	}

	u.mu.Lock()
	u.progress = nil
	u.total = nil
	u.mu.Unlock()
}

func (u *TerminalUI) OnRunReset() {
	u.totalMu.Lock()
	u.totalShown, u.totalBytes = 0, 0
	u.totalMu.Unlock()
}

func (u *TerminalUI) destination() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.dest
}

// printf writes through mpb when bars are active so the line lands above them.
func (u *TerminalUI) printf(format string, args ...interface{}) {
	fmt.Fprintf(u.Writer(), format, args...)
}

// truncatePath truncates a file path to show only the last N components
// Example: truncatePath("/a/b/c/d/file.txt", 3) → "…/c/d/file.txt"
func truncatePath(path string, maxComponents int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= maxComponents {
		return filepath.Base(path)
	}
	relevant := parts[len(parts)-maxComponents:]
	return "…/" + strings.Join(relevant, "/")
}

// FormatBytes renders a byte count with binary units, e.g. "1.5 MiB".
func FormatBytes(n int64) string {
	return fmt.Sprintf("% .1f", decor.SizeB1024(n))
}

// enableANSIOnWindows enables Virtual Terminal processing on Windows for ANSI escape sequences
func enableANSIOnWindows(f *os.File) {
	if runtime.GOOS == "windows" {
		enableWindowsANSI(f)
	}
}
