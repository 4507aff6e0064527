// Package cli provides the command-line interface for rescale-copy.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rescale/rescale-copy/internal/config"
	"github.com/rescale/rescale-copy/internal/logging"
	"github.com/rescale/rescale-copy/internal/version"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	debug   bool

	// Global logger
	logger *logging.Logger

	// Configuration loaded in PersistentPreRunE
	loadedConfig *config.Config

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// GUILauncher starts the graphical interface. It is set by the main
// package so the CLI does not link the GUI toolkit on its own.
var GUILauncher func(configFile string) error

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rescale-copy",
		Short: "Rescale Copy - copy a fixed set of files concurrently",
		Long: `Rescale Copy ` + version.Version + ` - Built: ` + version.BuildTime + `
Copies a fixed set of files into one directory, one worker per file,
with per-file and total progress.

CLI Mode (default):
  rescale-copy copy --dest DIR FILE1 FILE2 FILE3 FILE4

GUI Mode (--gui flag or no arguments on a desktop):
  File pickers, progress bars and Copy/Reset buttons.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initialize()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))

	// Disable default completion command (we're adding our own above)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// initialize loads the configuration and builds the logger from it.
// Flags win over the file's log level.
func initialize() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	loadedConfig = cfg

	logger = logging.NewDefaultCLILogger()
	level := logging.ParseLevel(cfg.LogLevel)
	if verbose || debug {
		level = zerolog.DebugLevel
	}
	logging.SetGlobalLevel(level)

	if cfg.LogFile {
		path, err := logger.EnableFile(config.LogDirectory())
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open log file, logging to console only")
		} else {
			logger.Debug().Str("path", path).Msg("Logging to file")
		}
	}
	return nil
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Loop so a second Ctrl+C while waiting on workers is not lost
	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\n\nReceived signal %v, stopping copy...\n", sig)
				fmt.Fprintf(os.Stderr, "   Waiting for workers to close their files.\n\n")
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	// Clean up signal handler
	signal.Stop(sigChan)
	close(sigChan)

	if logger != nil {
		_ = logger.Close()
	}
	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newCopyCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGUICmd())
}

// newGUICmd creates the 'gui' command.
func newGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the graphical interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if GUILauncher == nil {
				return fmt.Errorf("the GUI is not available in this build")
			}
			return GUILauncher(cfgFile)
		},
	}
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetConfig returns the loaded configuration, or defaults when called
// before the root command has run.
func GetConfig() *config.Config {
	if loadedConfig == nil {
		return config.Default()
	}
	return loadedConfig
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		// Fallback to background context if called before Execute()
		return context.Background()
	}
	return rootContext
}

// configPath returns the --config value or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetDefaultConfigPath()
}
