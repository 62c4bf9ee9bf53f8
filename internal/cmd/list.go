package cmd

import (
	_ "embed"
	"fmt"
	"io/fs"

	"github.com/ezerfernandes/mdxfix/internal/fence"
	"github.com/ezerfernandes/mdxfix/internal/files"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//go:embed help/list.md
var listHelp string

func listCmd(opts *options) *cobra.Command {
	var lang string

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "list [flags] [patterns...]",
		Aliases: []string{"ls"},
		Short:   "List fenced code blocks",
		Long:    listHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRun(cmd, args, opts, lang)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "only list blocks with this language")

	return cmd
}

func listRun(cmd *cobra.Command, args []string, opts *options, lang string) error {
	cfg, err := opts.loadConfig(args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.quiet, opts.verbose)
	defer logger.Sync() //nolint:errcheck

	fsys := files.NewLocalFS(opts.dir)

	names, err := files.Resolve(fsys, cfg.Patterns)
	if err != nil {
		return err
	}

	tbl := table.New("File", "Lines", "Lang", "Meta").WithWriter(cmd.OutOrStdout())

	for _, name := range names {
		source, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}

		blocks, err := fence.Scan(source)
		if err != nil {
			logger.Warn("skipping file", zap.String("path", name), zap.Error(err))

			continue
		}

		if len(lang) != 0 {
			blocks = blocks.Lang(lang)
		}

		for _, block := range blocks {
			tbl.AddRow(name, fmt.Sprintf("%d-%d", block.StartLine, block.EndLine), block.Lang, block.Meta.String())
		}
	}

	tbl.Print()

	return nil
}
