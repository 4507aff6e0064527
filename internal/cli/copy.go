package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-copy/internal/config"
	"github.com/rescale/rescale-copy/internal/constants"
	"github.com/rescale/rescale-copy/internal/copier"
	"github.com/rescale/rescale-copy/internal/diskspace"
	"github.com/rescale/rescale-copy/internal/logging"
	"github.com/rescale/rescale-copy/internal/pathutil"
	"github.com/rescale/rescale-copy/internal/progress"
	"github.com/rescale/rescale-copy/internal/session"
	"github.com/rescale/rescale-copy/internal/util/paths"
	"github.com/rescale/rescale-copy/internal/validation"
)

// copyRequest is everything one invocation of 'copy' needs.
type copyRequest struct {
	sources []string
	dest    string
	dryRun  bool
	again   bool
}

// newCopyCmd creates the 'copy' command.
func newCopyCmd() *cobra.Command {
	var (
		dest         string
		progressMode string
		dryRun       bool
		noOverwrite  bool
		again        bool
	)

	cmd := &cobra.Command{
		Use:   "copy --dest DIR FILE...",
		Short: "Copy the file set into a directory",
		Long: `Copy a fixed-size set of files into one destination directory.

Every file is copied by its own worker in fixed-size chunks. Progress is
shown per file and in total; the run finishes when every worker has
finished, successfully or not. A failed file does not stop the others.

Files keep their names. Two sources with the same name get the slot
number appended (report.txt becomes report_2.txt).

The set size is file_count from the configuration file (4 unless
configured); any other number of files is rejected. 'config show' prints
the current value.

Examples:
  rescale-copy copy --dest /backup a.dat b.dat c.dat d.dat
  rescale-copy copy --dest /backup --dry-run *.dat
  rescale-copy copy --dest /backup --again a.dat b.dat c.dat d.dat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *GetConfig()
			if noOverwrite {
				cfg.Overwrite = false
			}
			if cmd.Flags().Changed("progress") {
				cfg.Progress = progressMode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			req := copyRequest{
				sources: args,
				dest:    dest,
				dryRun:  dryRun,
				again:   again,
			}
			return runCopy(GetContext(), &cfg, req, GetLogger(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "Destination directory (required)")
	cmd.Flags().StringVar(&progressMode, "progress", config.ProgressAuto, "Progress display: auto, bars, simple, none")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the copy plan without touching the filesystem")
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "Fail files whose target already exists")
	cmd.Flags().BoolVar(&again, "again", false, "Offer to copy the same selection again after each run")
	_ = cmd.MarkFlagRequired("dest")
	_ = cmd.MarkFlagDirname("dest")

	return cmd
}

// runCopy selects, preflights and runs the copy, then prints a summary.
// A run with any failed file returns an error so the process exits non-zero.
func runCopy(ctx context.Context, cfg *config.Config, req copyRequest, logger *logging.Logger, in io.Reader, out io.Writer) error {
	sink := newProgressSink(cfg.Progress, logger)

	coord := copier.New(copier.Options{
		FileCount:   cfg.FileCount,
		ChunkSize:   cfg.ChunkSize,
		NoOverwrite: !cfg.Overwrite,
		Sink:        sink,
		Logger:      logger,
	})
	defer shutdown(coord, logger)

	sources, err := pathutil.ResolveAll(req.sources)
	if err != nil {
		return err
	}
	if err := coord.SelectSources(sources); err != nil {
		return err
	}

	if req.dest == "" {
		return copier.ErrDestinationNotSelected
	}
	dest, err := pathutil.ResolveAbsolutePath(req.dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}
	if err := validation.ValidateDirectory(dest); err != nil {
		return fmt.Errorf("invalid destination: %w", err)
	}
	if err := coord.SelectDestination(dest); err != nil {
		return err
	}

	required := preflightSources(sources, logger)
	if req.dryRun {
		printPlan(out, sources, dest, cfg)
		return nil
	}
	if cfg.CheckDiskSpace {
		if err := diskspace.CheckAvailableSpace(dest, required, constants.DiskSpaceBufferPercent); err != nil {
			return err
		}
	}

	reader := bufio.NewReader(in)
	for run := 1; ; run++ {
		if run > 1 {
			if err := coord.Reset(); err != nil {
				return err
			}
		}

		result, err := copyOnce(ctx, coord)
		if err != nil {
			return err
		}
		printSummary(out, result)

		if !req.again {
			return resultError(result)
		}
		more, err := promptYesNo(reader, out, "Copy the same files again?", false)
		if err != nil || !more {
			if rerr := resultError(result); rerr != nil {
				return rerr
			}
			return err
		}
	}
}

// copyOnce starts a run and waits for its completion notification.
func copyOnce(ctx context.Context, coord *copier.Coordinator) (*copier.Result, error) {
	if _, err := coord.Start(); err != nil {
		return nil, err
	}
	if err := coord.Wait(ctx); err != nil {
		return nil, fmt.Errorf("copy interrupted: %w", err)
	}
	result := coord.LastResult()
	if result == nil {
		return nil, errors.New("copy finished without a result")
	}
	return result, nil
}

// shutdown gives in-flight workers a grace period to close their files.
func shutdown(coord *copier.Coordinator, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownGracePeriod)
	defer cancel()
	if err := coord.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Copy workers did not stop in time")
	}
}

// preflightSources warns about sources that cannot be read and returns the
// summed size of the ones that can. Unreadable sources still go to the
// coordinator, which reports them as per-file failures.
func preflightSources(sources []string, logger *logging.Logger) int64 {
	var total int64
	for i, src := range sources {
		if err := validation.ValidateSourceFile(src); err != nil {
			logger.Warn().Err(err).Int("index", i).Msg("Source will fail")
			continue
		}
		if info, err := os.Stat(src); err == nil {
			total += info.Size()
		}
	}
	return total
}

// newProgressSink picks the progress display for mode. In bar mode on a
// terminal, log lines are routed above the bars.
func newProgressSink(mode string, logger *logging.Logger) copier.ProgressSink {
	switch mode {
	case config.ProgressNone:
		return copier.NopSink{}
	case config.ProgressSimple:
		return progress.NewSimpleBar()
	default:
		ui := progress.NewTerminalUI()
		if ui.IsTerminal() {
			logger.SetOutput(ui.Writer())
		}
		return ui
	}
}

// printPlan lists what a run would do without doing it.
func printPlan(out io.Writer, sources []string, dest string, cfg *config.Config) {
	targets, renamed := paths.PlanTargets(sources, dest)

	fmt.Fprintf(out, "Copy plan (%d files → %s)\n", len(targets), dest)
	for _, t := range targets {
		status := ""
		if err := validation.ValidateSourceFile(t.Source); err != nil {
			status = "  [will fail: source unreadable]"
		} else if _, err := os.Stat(t.Target); err == nil {
			if cfg.Overwrite {
				status = "  [overwrite]"
			} else {
				status = "  [will fail: target exists]"
			}
		}
		fmt.Fprintf(out, "  [%d] %s → %s%s\n", t.Index+1, t.Source, t.Target, status)
	}
	if renamed > 0 {
		fmt.Fprintf(out, "%d target(s) renamed to avoid name collisions\n", renamed)
	}
	if free := diskspace.GetAvailableSpace(dest); free > 0 {
		fmt.Fprintf(out, "Free space in destination: %s\n", progress.FormatBytes(free))
	}
	fmt.Fprintln(out, "Dry run: nothing was copied.")
}

// printSummary prints the outcome of one run.
func printSummary(out io.Writer, result *copier.Result) {
	fmt.Fprintln(out)
	for _, f := range result.Files {
		switch f.Status {
		case session.FileDone:
			fmt.Fprintf(out, "  ✓ [%d] %s (%s)\n", f.Index+1, f.Target, progress.FormatBytes(f.BytesCopied))
		case session.FileFailed:
			fe := copier.AsFileError(f.Index, f.Source, f.Err)
			fmt.Fprintf(out, "  ✗ [%d] %s: %v: %v\n", f.Index+1, fe.Path, fe.Kind, fe.Err)
		}
	}

	elapsed := result.Duration.Round(time.Millisecond)
	if result.Success {
		fmt.Fprintf(out, "Copied %d files (%s) in %s\n",
			len(result.Files), progress.FormatBytes(result.BytesCopied), elapsed)
		return
	}
	fmt.Fprintf(out, "%d of %d files failed (%s of %s copied) in %s\n",
		len(result.Failures), len(result.Files),
		progress.FormatBytes(result.BytesCopied), progress.FormatBytes(result.BytesTotal), elapsed)
}

func resultError(result *copier.Result) error {
	if result.Success {
		return nil
	}
	errs := make([]error, len(result.Failures))
	for i, f := range result.Failures {
		errs[i] = f
	}
	return fmt.Errorf("%d of %d files failed: %w", len(result.Failures), len(result.Files), errors.Join(errs...))
}
