package gui

import (
	"fmt"
	"os"
	"runtime"
)

// Run launches the GUI from raw process arguments.
func Run(args []string) error {
	if err := checkDisplay(); err != nil {
		return err
	}

	configFile := ""
	for i, arg := range args {
		if (arg == "--config" || arg == "-c") && i+1 < len(args) {
			configFile = args[i+1]
			break
		}
	}
	return LaunchGUI(configFile)
}

// checkDisplay fails early on headless Linux, where fyne would abort.
func checkDisplay() error {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return fmt.Errorf("GUI mode requires a display. No display detected.\n" +
			"DISPLAY and WAYLAND_DISPLAY are not set.\n" +
			"Use 'rescale-copy copy --dest DIR FILE...' for CLI mode")
	}
	return nil
}
