// Rescale Copy - standalone CLI binary, built without the GUI toolkit for
// headless servers.
package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/rescale/rescale-copy/internal/cli"
)

func main() {
	if slices.Contains(os.Args, "--gui") {
		fmt.Fprintf(os.Stderr, "Error: --gui is not available in the CLI-only binary.\n")
		fmt.Fprintf(os.Stderr, "Use the desktop build of rescale-copy for the graphical interface.\n")
		os.Exit(1)
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
