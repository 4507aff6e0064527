// Rescale Copy - copies a fixed set of files concurrently, from the
// command line or a small desktop window.
//
// - No args + display available → GUI mode
// - No args + no display → CLI help
// - --gui → GUI mode
// - --cli → CLI mode (force)
// - CLI subcommands/flags → CLI mode
package main

import (
	"fmt"
	"os"
	"runtime"
	"slices"

	"github.com/rescale/rescale-copy/internal/cli"
	"github.com/rescale/rescale-copy/internal/gui"
)

func main() {
	cli.GUILauncher = gui.LaunchGUI

	if isCLIMode(os.Args) {
		// cobra does not know the mode switch
		os.Args = slices.DeleteFunc(os.Args, func(arg string) bool { return arg == "--cli" })
		if err := cli.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := gui.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isCLIMode determines whether to run in CLI mode based on arguments and environment.
//
// CLI mode when:
// - --cli flag is present (force CLI mode)
// - any other argument is present (subcommands, --help, --version, typos)
// - No display available (DISPLAY/WAYLAND_DISPLAY not set on Linux)
//
// GUI mode when:
// - --gui flag is present (force GUI mode)
// - No arguments and display is available
func isCLIMode(args []string) bool {
	if slices.Contains(args, "--cli") {
		return true
	}
	if slices.Contains(args, "--gui") {
		return false
	}

	if len(args) == 1 {
		if runtime.GOOS == "linux" {
			if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
				return true // No display, default to CLI
			}
		}
		return false
	}

	// Unknown arguments go to the CLI so typos show help rather than a window
	return true
}
