package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// copyTheme forces the light variant so progress bars read the same on
// every platform, and widens the default padding a little.
type copyTheme struct{}

var (
	brandBlue    = color.NRGBA{R: 0x00, G: 0x7A, B: 0xCC, A: 0xFF} // #007ACC
	successGreen = color.NRGBA{R: 0x4C, G: 0xAF, B: 0x50, A: 0xFF} // #4CAF50
	errorRed     = color.NRGBA{R: 0xF4, G: 0x43, B: 0x36, A: 0xFF} // #F44336
	warningAmber = color.NRGBA{R: 0xFF, G: 0x98, B: 0x00, A: 0xFF} // #FF9800
	trackGrey    = color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF} // Unfilled bar track
)

func (t *copyTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return brandBlue
	case theme.ColorNameSuccess:
		return successGreen
	case theme.ColorNameError:
		return errorRed
	case theme.ColorNameWarning:
		return warningAmber
	case theme.ColorNameInputBackground:
		return trackGrey
	default:
		return theme.DefaultTheme().Color(name, theme.VariantLight)
	}
}

func (t *copyTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *copyTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *copyTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding, theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameText:
		return 14
	default:
		return theme.DefaultTheme().Size(name)
	}
}
