package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pdfsplit/internal/config"
	"github.com/jackzampolin/pdfsplit/internal/pdf"
	"github.com/jackzampolin/pdfsplit/internal/report"
	"github.com/jackzampolin/pdfsplit/internal/split"
	"github.com/jackzampolin/pdfsplit/version"
)

// ErrPartialFailure is returned when some sections could not be written.
var ErrPartialFailure = errors.New("some sections failed")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfsplit <input.pdf>",
		Short: "Split a PDF into one file per table of contents entry",
		Long: `Pdfsplit reads the table of contents (outline) embedded in a PDF and writes
each section to its own file in the output directory.

Before writing, the sections are listed and you can exclude some of them by
id. Files are named <id>_<title>.pdf with the title made safe for any
filesystem. A PDF without an outline is written as a single file.

Every flag can also be set with a PDFSPLIT_<FLAG> environment variable,
e.g. PDFSPLIT_OUTPUT=parts or PDFSPLIT_NO_FRONT_MATTER=true.

Examples:
  pdfsplit book.pdf                     # Split into ./output, asking what to skip
  pdfsplit book.pdf -o chapters -y      # Split everything into ./chapters
  pdfsplit book.pdf --exclude 1,5-7     # Skip sections 1, 5, 6 and 7
  pdfsplit book.pdf --depth 2           # Also split on second-level entries
  pdfsplit book.pdf --dry-run -y --format json`,
		Args:          cobra.ExactArgs(1),
		Version:       version.GitRelease,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSplit,
	}

	flags := cmd.Flags()
	flags.StringP(config.KeyOutput, "o", config.DefaultConfig().Output, "output directory")
	flags.Int(config.KeyDepth, config.DefaultConfig().Depth, "deepest outline level that starts a new file")
	flags.String(config.KeyExclude, "", "comma-separated section ids to exclude (skips the prompt)")
	flags.BoolP(config.KeyYes, "y", false, "do not prompt, keep every section")
	flags.Bool(config.KeyNoFrontMatter, false, "drop pages before the first outline entry")
	flags.Bool(config.KeyDryRun, false, "list the files that would be written without writing them")
	flags.String(config.KeyFormat, config.DefaultConfig().Format, "summary format: text, yaml or json")
	flags.BoolP(config.KeyVerbose, "v", false, "enable debug logging")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runSplit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	mgr, err := config.NewManager(cmd.Flags())
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	// Set up logger
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))

	doc, err := pdf.Open(args[0], logger)
	if err != nil {
		return err
	}
	defer doc.Close()

	format := cfg.OutputFormat()
	req := split.Request{
		InputPath:       doc.Path(),
		OutputDir:       cfg.Output,
		MaxDepth:        cfg.Depth,
		SkipFrontMatter: cfg.NoFrontMatter,
		Exclude:         cfg.Exclude,
		DryRun:          cfg.DryRun,
		Logger:          logger,
	}
	if cfg.Interactive() {
		// Keep stdout clean for structured output
		var promptOut io.Writer = cmd.OutOrStdout()
		if format != report.FormatText {
			promptOut = cmd.ErrOrStderr()
		}
		req.Select = split.LineSelector(cmd.InOrStdin(), promptOut)
	}

	res, runErr := split.Run(ctx, doc, req)
	if res != nil {
		if err := report.Write(cmd.OutOrStdout(), format, report.FromResult(res)); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%w: %d of %d sections were not written", ErrPartialFailure, n, len(res.Exports))
	}
	return nil
}
