// Package cmd implements the mdxfix command line.
package cmd

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ezerfernandes/mdxfix/internal/files"
	"github.com/spf13/cobra"
)

//go:embed help/root.md
var rootHelp string

var errWouldChange = errors.New("files would change")

// Execute runs the command line with args and exits with status 1 on error.
func Execute(args []string, stdout, stderr io.Writer) {
	root := rootCmd()

	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := new(options)

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "mdxfix [flags] [patterns...]",
		Short: "Fence unfenced code in Markdown/MDX files",
		Long:  rootHelp,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fixRun(cmd, args, opts)
		},

		SilenceUsage:      true,
		DisableAutoGenTag: true,
	}

	persistentFlags(cmd, opts)
	fixFlags(cmd, opts)

	cmd.AddCommand(listCmd(opts))

	return cmd
}

func fixRun(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := opts.loadConfig(args)
	if err != nil {
		return err
	}

	if err := opts.applyFixFlags(cmd, cfg); err != nil {
		return err
	}

	fix, err := opts.fixer(cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.quiet, opts.verbose)
	defer logger.Sync() //nolint:errcheck

	stdout := cmd.OutOrStdout()
	dryRun := opts.dryRun || opts.check

	walker := &files.Walker{
		FS:        files.NewLocalFS(opts.dir),
		Fixer:     fix,
		Logger:    logger,
		DryRun:    dryRun,
		KeepGoing: opts.keepGoing,
		Verify:    opts.verify,
		OnFixed: func(ctx context.Context, file *files.FileReport) error {
			if !file.Written {
				fmt.Fprintf(stdout, "Would fix: %s\n", file.Path)

				return nil
			}

			fmt.Fprintf(stdout, "Fixed: %s\n", file.Path)

			if len(cfg.Exec) == 0 {
				return nil
			}

			return runHook(ctx, cfg.Exec, opts.dir, file.Path, stdout, cmd.ErrOrStderr())
		},
	}

	report, err := walker.Run(cmd.Context(), cfg.Patterns)
	if err != nil {
		return err
	}

	if n := len(report.Modified()); opts.check && n > 0 {
		return fmt.Errorf("%w: %d of %d", errWouldChange, n, len(report.Files))
	}

	return nil
}
