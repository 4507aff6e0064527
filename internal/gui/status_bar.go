package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// StatusLevel selects the icon shown next to a status message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
	StatusProgress // spinner instead of an icon
)

// StatusBar is the one-line status under the Copy/Reset buttons.
// Setters may be called from any goroutine.
type StatusBar struct {
	widget.BaseWidget

	mu      sync.RWMutex
	level   StatusLevel
	message string

	icon    *widget.Icon
	label   *widget.Label
	spinner *widget.Activity
}

// NewStatusBar creates a status bar showing "Ready".
func NewStatusBar() *StatusBar {
	sb := &StatusBar{level: StatusInfo, message: "Ready"}
	sb.label = widget.NewLabel(sb.message)
	sb.label.TextStyle = fyne.TextStyle{Italic: true}
	sb.label.Truncation = fyne.TextTruncateEllipsis
	sb.icon = widget.NewIcon(theme.InfoIcon())
	sb.spinner = widget.NewActivity()
	sb.spinner.Hide()
	sb.ExtendBaseWidget(sb)
	return sb
}

// SetStatus records the message and redraws on the UI thread.
func (sb *StatusBar) SetStatus(message string, level StatusLevel) {
	sb.mu.Lock()
	if sb.message == message && sb.level == level {
		sb.mu.Unlock()
		return
	}
	sb.level = level
	sb.message = message
	sb.mu.Unlock()

	fyne.Do(func() {
		sb.label.SetText(message)
		if level == StatusProgress {
			sb.icon.Hide()
			sb.spinner.Show()
			sb.spinner.Start()
			return
		}
		sb.spinner.Stop()
		sb.spinner.Hide()
		sb.icon.SetResource(levelIcon(level))
		sb.icon.Show()
	})
}

func levelIcon(level StatusLevel) fyne.Resource {
	switch level {
	case StatusSuccess:
		return theme.ConfirmIcon()
	case StatusWarning:
		return theme.WarningIcon()
	case StatusError:
		return theme.ErrorIcon()
	default:
		return theme.InfoIcon()
	}
}

func (sb *StatusBar) SetInfo(message string)     { sb.SetStatus(message, StatusInfo) }
func (sb *StatusBar) SetSuccess(message string)  { sb.SetStatus(message, StatusSuccess) }
func (sb *StatusBar) SetWarning(message string)  { sb.SetStatus(message, StatusWarning) }
func (sb *StatusBar) SetError(message string)    { sb.SetStatus(message, StatusError) }
func (sb *StatusBar) SetProgress(message string) { sb.SetStatus(message, StatusProgress) }

// Message returns the current status message and level.
func (sb *StatusBar) Message() (string, StatusLevel) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.message, sb.level
}

// CreateRenderer implements fyne.Widget
func (sb *StatusBar) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewBorder(nil, nil, container.NewHBox(sb.icon, sb.spinner), nil, sb.label)
	return widget.NewSimpleRenderer(content)
}
