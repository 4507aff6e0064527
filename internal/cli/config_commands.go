package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-copy/internal/config"
	"github.com/rescale/rescale-copy/internal/constants"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rescale-copy configuration",
		Long: `Configuration management commands for rescale-copy.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for rescale-copy.

The configuration will be saved to ~/.config/rescale/copy.yaml
(or the path given with --config).

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := promptConfig(bufio.NewReader(cmd.InOrStdin()), out)
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintf(out, "\n✓ Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// promptConfig walks the user through every setting, offering defaults.
func promptConfig(reader *bufio.Reader, out io.Writer) (*config.Config, error) {
	cfg := config.Default()
	var err error

	fmt.Fprintln(out, "Rescale Copy Configuration Setup")
	fmt.Fprintln(out, "================================")
	fmt.Fprintln(out, "Press Enter to accept the value in brackets.")
	fmt.Fprintln(out)

	if cfg.FileCount, err = promptInt(reader, out, "Files per copy", cfg.FileCount, 1, constants.MaxFileCount); err != nil {
		return nil, err
	}
	if cfg.ChunkSize, err = promptInt(reader, out, "Chunk size in bytes", cfg.ChunkSize, constants.MinChunkSize, constants.MaxChunkSize); err != nil {
		return nil, err
	}
	if cfg.Overwrite, err = promptYesNo(reader, out, "Overwrite existing files in the destination?", cfg.Overwrite); err != nil {
		return nil, err
	}
	if cfg.CheckDiskSpace, err = promptYesNo(reader, out, "Check free disk space before copying?", cfg.CheckDiskSpace); err != nil {
		return nil, err
	}
	progressModes := []string{config.ProgressAuto, config.ProgressBars, config.ProgressSimple, config.ProgressNone}
	if cfg.Progress, err = promptChoice(reader, out, "Progress display", cfg.Progress, progressModes); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = promptChoice(reader, out, "Log level", cfg.LogLevel, []string{"debug", "info", "warn", "error"}); err != nil {
		return nil, err
	}
	if cfg.LogFile, err = promptYesNo(reader, out, "Also write logs to a file?", cfg.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

Values come from the configuration file, or the defaults for any key the
file does not set. Flags such as --no-overwrite apply per command and are
not shown here.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			printConfig(cmd.OutOrStdout(), cfg, path)
			return nil
		},
	}
}

func printConfig(out io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(out, "Current Configuration")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Copy Settings:")
	fmt.Fprintf(out, "  Files per copy:   %d\n", cfg.FileCount)
	fmt.Fprintf(out, "  Chunk size:       %d bytes\n", cfg.ChunkSize)
	fmt.Fprintf(out, "  Overwrite:        %t\n", cfg.Overwrite)
	fmt.Fprintf(out, "  Check disk space: %t\n", cfg.CheckDiskSpace)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Output Settings:")
	fmt.Fprintf(out, "  Progress:  %s\n", cfg.Progress)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.LogLevel)
	if cfg.LogFile {
		fmt.Fprintf(out, "  Log file:  %s\n", config.LogDirectory())
	} else {
		fmt.Fprintln(out, "  Log file:  off")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(out, "  (file does not exist - using defaults)")
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			if cfgFile == "" {
				fmt.Fprintln(out, "Default configuration path:")
			} else {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if fileInfo, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", fileInfo.Size())
				fmt.Fprintf(out, "Modified: %s\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: rescale-copy config init")
			}
			return nil
		},
	}
}
