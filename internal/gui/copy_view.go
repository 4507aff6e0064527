package gui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/rescale/rescale-copy/internal/constants"
	"github.com/rescale/rescale-copy/internal/copier"
	"github.com/rescale/rescale-copy/internal/events"
	"github.com/rescale/rescale-copy/internal/logging"
	"github.com/rescale/rescale-copy/internal/pathutil"
	"github.com/rescale/rescale-copy/internal/progress"
	"github.com/rescale/rescale-copy/internal/session"
)

// sourceRow is one slot of the file set.
type sourceRow struct {
	pick  *widget.Button
	name  *widget.Label
	bar   *widget.ProgressBar
	bytes *widget.Label
}

// CopyView is the single window of the GUI: one row per source file, a
// destination row, the total bar and the Copy/Reset buttons.
type CopyView struct {
	coord    *copier.Coordinator
	eventBus *events.EventBus
	window   fyne.Window
	logger   *logging.Logger
	model    *progressModel

	// Selections live here until every slot is filled, then go to the
	// coordinator in one SelectSources call. Touched only on the UI thread.
	sources []string
	dest    string

	rows       []*sourceRow
	destPick   *widget.Button
	destLabel  *widget.Label
	totalBar   *widget.ProgressBar
	totalLabel *widget.Label
	copyBtn    *widget.Button
	resetBtn   *widget.Button
	status     *StatusBar

	ctx    context.Context
	cancel context.CancelFunc
}

// NewCopyView creates the view. The coordinator's sink must publish to
// eventBus.
func NewCopyView(coord *copier.Coordinator, eventBus *events.EventBus, window fyne.Window, logger *logging.Logger) *CopyView {
	ctx, cancel := context.WithCancel(context.Background())
	n := coord.FileCount()
	return &CopyView{
		coord:    coord,
		eventBus: eventBus,
		window:   window,
		logger:   logger,
		model:    newProgressModel(n),
		sources:  make([]string, n),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Build creates the layout.
func (v *CopyView) Build() fyne.CanvasObject {
	rows := container.NewVBox()
	for i := range v.sources {
		index := i
		row := &sourceRow{
			name:  widget.NewLabel("No file selected"),
			bar:   widget.NewProgressBar(),
			bytes: widget.NewLabel(""),
		}
		row.pick = widget.NewButtonWithIcon(fmt.Sprintf("File %d…", i+1), theme.FileIcon(), func() {
			v.pickSource(index)
		})
		row.name.Truncation = fyne.TextTruncateEllipsis
		v.rows = append(v.rows, row)

		rows.Add(container.NewBorder(nil, nil, row.pick, row.bytes,
			container.NewGridWithColumns(2, row.name, row.bar)))
	}

	v.destLabel = widget.NewLabel("No destination selected")
	v.destLabel.Truncation = fyne.TextTruncateEllipsis
	v.destPick = widget.NewButtonWithIcon("Destination…", theme.FolderOpenIcon(), v.pickDestination)

	v.totalBar = widget.NewProgressBar()
	v.totalLabel = widget.NewLabel("")

	v.copyBtn = NewPrimaryButtonWithIcon("Copy", theme.MediaPlayIcon(), v.startCopy)
	v.resetBtn = widget.NewButtonWithIcon("Reset", theme.ViewRefreshIcon(), v.reset)
	v.status = NewStatusBar()
	v.updateButtons()

	header := widget.NewLabelWithStyle(
		fmt.Sprintf("Select %d files and a destination folder", len(v.sources)),
		fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	return container.NewBorder(
		container.NewVBox(header, widget.NewSeparator()),
		container.NewVBox(
			widget.NewSeparator(),
			container.NewBorder(nil, nil, widget.NewLabel("Total"), v.totalLabel, v.totalBar),
			container.NewHBox(v.copyBtn, v.resetBtn),
			v.status,
		),
		nil, nil,
		container.NewVBox(
			rows,
			VerticalSpacer(8),
			container.NewBorder(nil, nil, v.destPick, nil, v.destLabel),
		),
	)
}

// Start begins event monitoring
func (v *CopyView) Start() {
	go v.monitorEvents()
	go v.flushLoop()
}

// Stop stops event monitoring and waits briefly for in-flight copies so
// their files are closed before the process exits.
func (v *CopyView) Stop() {
	v.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownGracePeriod)
	defer cancel()
	if err := v.coord.Shutdown(ctx); err != nil {
		v.logger.Warn().Err(err).Msg("Copy workers did not stop before exit")
	}
	v.eventBus.Close()
}

func (v *CopyView) monitorEvents() {
	ch := v.eventBus.SubscribeAll()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			v.model.apply(event)

			if done, isDone := event.(*events.RunCompletedEvent); isDone {
				v.handleCompletion(done.RunID)
			}

		case <-v.ctx.Done():
			return
		}
	}
}

// flushLoop pushes model changes to the widgets at a fixed rate. It also
// catches a completion whose bus event was dropped.
func (v *CopyView) flushLoop() {
	ticker := time.NewTicker(constants.ProgressUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if runID, running := v.model.activeRun(); running && v.coord.State() == session.Completed {
				if result := v.coord.LastResult(); result != nil && result.RunID == runID {
					v.handleCompletion(result.RunID)
					continue
				}
			}
			v.flush(false)

		case <-v.ctx.Done():
			return
		}
	}
}

// flush copies the model into the widgets on the UI thread.
func (v *CopyView) flush(force bool) {
	view, dirty := v.model.take()
	if !dirty && !force {
		return
	}

	fyne.Do(func() {
		for i, row := range v.rows {
			if i >= len(view.slots) {
				break
			}
			s := view.slots[i]
			row.bar.SetValue(s.fraction())
			if s.total > 0 || s.done {
				row.bytes.SetText(fmt.Sprintf("%s / %s", progress.FormatBytes(s.copied), progress.FormatBytes(s.total)))
			} else {
				row.bytes.SetText("")
			}
		}
		v.totalBar.SetValue(view.totalFraction())
		if view.total > 0 {
			v.totalLabel.SetText(fmt.Sprintf("%s / %s", progress.FormatBytes(view.copied), progress.FormatBytes(view.total)))
		} else {
			v.totalLabel.SetText("")
		}
		if view.running {
			if view.warning != "" {
				v.status.SetWarning(view.warning)
			}
		}
		v.updateButtons()
	})
}

// handleCompletion refreshes the widgets and reports the outcome once per run.
func (v *CopyView) handleCompletion(runID string) {
	if !v.model.claimCompletion(runID) {
		return
	}
	v.flush(true)

	result := v.coord.LastResult()
	fyne.Do(func() {
		v.updateButtons()
		if result == nil || result.RunID != runID {
			v.status.SetInfo("Copy finished")
			return
		}
		if result.Success {
			msg := fmt.Sprintf("Copied %d files (%s) in %s",
				len(result.Files), progress.FormatBytes(result.BytesCopied), result.Duration.Round(time.Millisecond))
			v.status.SetSuccess(msg)
			dialog.ShowInformation("Copy complete", msg, v.window)
			return
		}
		v.status.SetError(fmt.Sprintf("%d of %d files failed", len(result.Failures), len(result.Files)))
		dialog.ShowError(failureSummary(result), v.window)
	})
}

// failureSummary lists each failed file on its own line.
func failureSummary(result *copier.Result) error {
	lines := make([]string, 0, len(result.Failures)+1)
	lines = append(lines, fmt.Sprintf("%d of %d files could not be copied:", len(result.Failures), len(result.Files)))
	for _, f := range result.Failures {
		lines = append(lines, fmt.Sprintf("• %s: %v", filepath.Base(f.Path), f.Kind))
	}
	return errors.New(strings.Join(lines, "\n"))
}

func (v *CopyView) pickSource(index int) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if reader == nil {
			return // cancelled
		}
		path, err := pathutil.ResolveAbsolutePath(reader.URI().Path())
		_ = reader.Close()
		if err != nil {
			v.status.SetError(err.Error())
			return
		}

		v.sources[index] = path
		v.rows[index].name.SetText(filepath.Base(path))
		v.commitSources()
	}, v.window)
}

// commitSources hands the selection to the coordinator once every slot
// is filled.
func (v *CopyView) commitSources() {
	for _, s := range v.sources {
		if s == "" {
			v.updateButtons()
			return
		}
	}
	if err := v.coord.SelectSources(v.sources); err != nil {
		v.status.SetError(err.Error())
		return
	}
	v.logger.Debug().Strs("sources", v.sources).Msg("Sources selected")
	v.updateButtons()
}

func (v *CopyView) pickDestination() {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, v.window)
			return
		}
		if dir == nil {
			return // cancelled; keep the previous choice
		}
		dest, err := pathutil.ResolveAbsolutePath(dir.Path())
		if err != nil {
			v.status.SetError(err.Error())
			return
		}
		if err := v.coord.SelectDestination(dest); err != nil {
			v.status.SetError(err.Error())
			return
		}
		v.dest = dest
		v.destLabel.SetText(v.dest)
		v.updateButtons()
	}, v.window)
}

func (v *CopyView) startCopy() {
	runID, err := v.coord.Start()
	if errors.Is(err, copier.ErrAlreadyRunning) {
		// Previous run is still delivering its completion
		v.status.SetWarning("Previous copy is still finishing, try again")
		return
	}
	if err != nil {
		v.status.SetError(err.Error())
		dialog.ShowError(err, v.window)
		return
	}
	v.logger.Info().Str("run_id", runID).Msg("Copy started from GUI")
	v.status.SetProgress(fmt.Sprintf("Copying %d files…", len(v.sources)))
	v.updateButtons()
}

func (v *CopyView) reset() {
	if err := v.coord.Reset(); err != nil {
		v.status.SetError(err.Error())
		return
	}
	v.status.SetInfo("Ready")
	v.flush(true)
}

// updateButtons enables what the current state allows. UI thread only.
func (v *CopyView) updateButtons() {
	if v.copyBtn == nil {
		return
	}
	state := v.coord.State()
	running := state == session.Running

	ready := v.dest != ""
	for _, s := range v.sources {
		if s == "" {
			ready = false
		}
	}

	setEnabled(v.copyBtn, ready && !running)
	setEnabled(v.resetBtn, state == session.Completed)
	setEnabled(v.destPick, !running)
	for _, row := range v.rows {
		setEnabled(row.pick, !running)
	}
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
