package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ezerfernandes/mdxfix/internal/fence"
	"github.com/ezerfernandes/mdxfix/internal/fixer"
	"github.com/ezerfernandes/mdxfix/internal/region"
	"go.uber.org/zap"
)

// FileReport describes what happened to one matched file.
type FileReport struct {
	Path     string
	Blocks   []fixer.Block
	Injected int
	Written  bool
	Err      error
}

// Modified reports whether the fixer changed the file, written or not.
func (r *FileReport) Modified() bool {
	return r.Injected > 0
}

// Report collects the file reports of a run in processing order.
type Report struct {
	Files []*FileReport
}

// Modified returns the reports of the files the fixer changed.
func (r *Report) Modified() []*FileReport {
	var res []*FileReport

	for _, f := range r.Files {
		if f.Modified() {
			res = append(res, f)
		}
	}

	return res
}

// FixedFunc is called after each modified file, once it has been written or,
// in dry-run mode, instead of writing it.
type FixedFunc func(ctx context.Context, file *FileReport) error

// Walker applies a Fixer to every file matched by a set of patterns, one
// file at a time.
type Walker struct {
	FS     FS
	Fixer  *fixer.Fixer
	Logger *zap.Logger

	// DryRun computes the changes without writing them.
	DryRun bool
	// KeepGoing records per-file failures and moves on to the next file.
	KeepGoing bool
	// Verify parses the rewritten file and checks that every injected fence
	// is seen as a fenced code block.
	Verify bool

	OnFixed FixedFunc
}

func (w *Walker) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}

	return w.Logger
}

// Run resolves patterns and processes every matched file. Without KeepGoing
// the first failing file stops the run; with it, all failures are returned
// joined once every file has been processed.
func (w *Walker) Run(ctx context.Context, patterns []string) (*Report, error) {
	names, err := Resolve(w.FS, patterns)
	if err != nil {
		return nil, err
	}

	w.logger().Debug("resolved patterns", zap.Strings("patterns", patterns), zap.Int("files", len(names)))

	report := &Report{Files: make([]*FileReport, 0, len(names))}

	var errs []error

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		file := w.FixFile(ctx, name)
		report.Files = append(report.Files, file)

		if file.Err == nil {
			continue
		}

		if !w.KeepGoing {
			return report, file.Err
		}

		w.logger().Error("fix failed", zap.String("path", name), zap.Error(file.Err))
		errs = append(errs, file.Err)
	}

	return report, errors.Join(errs...)
}

// FixFile processes a single file. Failures are reported in FileReport.Err.
func (w *Walker) FixFile(ctx context.Context, name string) *FileReport {
	file := &FileReport{Path: name}
	log := w.logger().With(zap.String("path", name))

	info, err := fs.Stat(w.FS, name)
	if err != nil {
		file.Err = fmt.Errorf("stat %s: %w", name, err)

		return file
	}

	source, err := fs.ReadFile(w.FS, name)
	if err != nil {
		file.Err = fmt.Errorf("read %s: %w", name, err)

		return file
	}

	res := w.Fixer.Fix(source)
	file.Blocks = res.Blocks
	file.Injected = res.Injected()

	log.Debug("scanned", zap.Int("candidates", len(res.Blocks)), zap.Int("injected", file.Injected))

	for _, b := range res.Unterminated() {
		log.Warn("unbalanced braces", zap.Int("line", b.Start+1), zap.Int("lines", b.Len()), zap.Bool("fenced", b.Fenced))
	}

	if res.OpenRegion {
		log.Warn("ignore region left open", zap.Error(region.ErrMissingEndregion))
	}

	if !res.Modified {
		return file
	}

	output := res.Bytes()

	if w.Verify {
		if err := fence.Verify(source, output, w.Fixer.Lang(), file.Injected); err != nil {
			file.Err = fmt.Errorf("verify %s: %w", name, err)

			return file
		}
	}

	if !w.DryRun {
		if err := w.FS.WriteFile(name, output, info.Mode().Perm()); err != nil {
			file.Err = fmt.Errorf("write %s: %w", name, err)

			return file
		}

		file.Written = true

		log.Info("fixed", zap.Int("blocks", file.Injected))
	}

	if w.OnFixed != nil {
		if err := w.OnFixed(ctx, file); err != nil {
			file.Err = fmt.Errorf("%s: %w", name, err)
		}
	}

	return file
}
