package files_test

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/ezerfernandes/mdxfix/internal/fence"
	"github.com/ezerfernandes/mdxfix/internal/files"
	"github.com/ezerfernandes/mdxfix/internal/fixer"
	"github.com/liamg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	brokenDoc = "# Intro\n\nfunction foo() { return 1; }\n\nDone.\n"
	fixedDoc  = "# Intro\n\n```javascript\nfunction foo() { return 1; }\n```\n\nDone.\n"
	cleanDoc  = "# Clean\n\n```js\nconst x = 1;\n```\n"
	htmlDoc   = "<div>\nconst x = {};\n</div>\n"
)

var defaultPatterns = []string{
	"docs/cookbook-zh/references/**/*.md",
	"docs/solana-development-course/**/*.md",
}

func newFS(t *testing.T, contents map[string]string) *memoryfs.FS {
	t.Helper()

	mfs := memoryfs.New()

	for name, content := range contents {
		if dir := path.Dir(name); dir != "." {
			require.NoError(t, mfs.MkdirAll(dir, 0o755))
		}

		require.NoError(t, mfs.WriteFile(name, []byte(content), 0o644))
	}

	return mfs
}

func readFile(t *testing.T, fsys fs.FS, name string) string {
	t.Helper()

	data, err := fs.ReadFile(fsys, name)
	require.NoError(t, err)

	return string(data)
}

func TestCompilePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		base    string
		match   []string
		nomatch []string
	}{
		{
			pattern: "docs/cookbook-zh/references/**/*.md",
			base:    "docs/cookbook-zh/references",
			match:   []string{"docs/cookbook-zh/references/a.md", "docs/cookbook-zh/references/x/y/b.md"},
			nomatch: []string{"docs/cookbook-zh/a.md", "docs/cookbook-zh/references/a.mdx"},
		},
		{
			pattern: "./docs/*.mdx",
			base:    "docs",
			match:   []string{"docs/a.mdx"},
			nomatch: []string{"docs/x/a.mdx", "a.mdx"},
		},
		{
			pattern: "*.md",
			base:    ".",
			match:   []string{"README.md"},
			nomatch: []string{"docs/README.md"},
		},
		{
			pattern: "**/*.{md,mdx}",
			base:    ".",
			match:   []string{"a.md", "x/b.mdx"},
			nomatch: []string{"x/b.txt", ".git/a.md", "x/.cache/b.md"},
		},
		{
			pattern: "docs/**/ref/**/*.md",
			base:    "docs",
			match:   []string{"docs/x/ref/a.md", "docs/ref/y/a.md", "docs/ref/a.md", "docs/x/ref/y/a.md"},
			nomatch: []string{"docs/a.md", "docs/x/a.md"},
		},
		{
			pattern: "docs/*.md",
			base:    "docs",
			match:   []string{"docs/a.md"},
			nomatch: []string{"docs/.hidden.md"},
		},
		{
			pattern: "docs/.*.md",
			base:    "docs",
			match:   []string{"docs/.hidden.md"},
			nomatch: []string{"docs/a.md"},
		},
		{
			pattern: ".github/**/*.md",
			base:    ".github",
			match:   []string{".github/a.md", ".github/x/b.md"},
			nomatch: []string{".github/.x/b.md"},
		},
	}

	for _, tt := range tests {
		pat, err := files.CompilePattern(tt.pattern)
		require.NoError(t, err, tt.pattern)

		assert.Equal(t, tt.pattern, pat.String())
		assert.Equal(t, tt.base, pat.Base(), tt.pattern)

		for _, name := range tt.match {
			assert.True(t, pat.Match(name), "%s should match %s", tt.pattern, name)
		}

		for _, name := range tt.nomatch {
			assert.False(t, pat.Match(name), "%s should not match %s", tt.pattern, name)
		}
	}
}

func TestCompilePatternErrors(t *testing.T) {
	t.Parallel()

	_, err := files.CompilePattern("/etc/*.md")
	require.ErrorIs(t, err, files.ErrAbsolutePattern)

	_, err = files.CompilePattern("docs/[")
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{
		"docs/cookbook-zh/references/b.md":     "",
		"docs/cookbook-zh/references/a/c.md":   "",
		"docs/cookbook-zh/other.md":            "",
		"docs/solana-development-course/d.md":  "",
		"docs/solana-development-course/e.txt": "",
		"notes/f.md":                           "",
	})

	names, err := files.Resolve(mfs, defaultPatterns)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"docs/cookbook-zh/references/a/c.md",
		"docs/cookbook-zh/references/b.md",
		"docs/solana-development-course/d.md",
	}, names)

	names, err = files.Resolve(mfs, []string{"notes/*.md", "**/*.md"})
	require.NoError(t, err)
	assert.Len(t, names, 5)
	assert.Equal(t, "notes/f.md", names[0])

	hidden := newFS(t, map[string]string{
		".git/x.md":        "",
		"docs/.draft.md":   "",
		"docs/.cache/y.md": "",
		"docs/z.md":        "",
	})

	names, err = files.Resolve(hidden, []string{"**/*.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/z.md"}, names)

	names, err = files.Resolve(hidden, []string{"docs/.*.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/.draft.md"}, names)

	names, err = files.Resolve(mfs, []string{"missing/**/*.md"})
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestWalkerRun(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{
		"docs/cookbook-zh/references/broken.md":     brokenDoc,
		"docs/cookbook-zh/references/clean.md":      cleanDoc,
		"docs/solana-development-course/lesson.md":  brokenDoc,
		"docs/solana-development-course/ignored.js": brokenDoc,
	})

	var fixed []string

	w := &files.Walker{
		FS:    mfs,
		Fixer: fixer.New(fixer.Options{}),
		OnFixed: func(_ context.Context, file *files.FileReport) error {
			fixed = append(fixed, file.Path)

			return nil
		},
	}

	patterns := append([]string{"nothing/here/*.md"}, defaultPatterns...)

	report, err := w.Run(context.Background(), patterns)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"docs/cookbook-zh/references/broken.md",
		"docs/solana-development-course/lesson.md",
	}, fixed)
	assert.Len(t, report.Files, 3)
	require.Len(t, report.Modified(), 2)
	assert.True(t, report.Modified()[0].Written)
	assert.Equal(t, 1, report.Modified()[0].Injected)

	assert.Equal(t, fixedDoc, readFile(t, mfs, "docs/cookbook-zh/references/broken.md"))
	assert.Equal(t, fixedDoc, readFile(t, mfs, "docs/solana-development-course/lesson.md"))
	assert.Equal(t, cleanDoc, readFile(t, mfs, "docs/cookbook-zh/references/clean.md"))
	assert.Equal(t, brokenDoc, readFile(t, mfs, "docs/solana-development-course/ignored.js"))

	fixed = nil

	report, err = w.Run(context.Background(), patterns)
	require.NoError(t, err)
	assert.Empty(t, fixed)
	assert.Empty(t, report.Modified())
	assert.Equal(t, fixedDoc, readFile(t, mfs, "docs/cookbook-zh/references/broken.md"))
}

func TestWalkerDryRun(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{"a.md": brokenDoc})

	var calls int

	w := &files.Walker{
		FS:     mfs,
		Fixer:  fixer.New(fixer.Options{}),
		DryRun: true,
		OnFixed: func(_ context.Context, file *files.FileReport) error {
			calls++

			assert.False(t, file.Written)

			return nil
		},
	}

	report, err := w.Run(context.Background(), []string{"*.md"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, report.Modified(), 1)
	assert.Equal(t, brokenDoc, readFile(t, mfs, "a.md"))
}

func TestWalkerVerifyStopsOnFirstFailure(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{"a.md": htmlDoc, "b.md": brokenDoc})

	w := &files.Walker{FS: mfs, Fixer: fixer.New(fixer.Options{}), Verify: true}

	report, err := w.Run(context.Background(), []string{"*.md"})
	require.ErrorIs(t, err, fence.ErrVerify)
	assert.Contains(t, err.Error(), "a.md")

	assert.Len(t, report.Files, 1)
	assert.Equal(t, htmlDoc, readFile(t, mfs, "a.md"))
	assert.Equal(t, brokenDoc, readFile(t, mfs, "b.md"))
}

func TestWalkerKeepGoing(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{"a.md": htmlDoc, "b.md": brokenDoc})

	w := &files.Walker{FS: mfs, Fixer: fixer.New(fixer.Options{}), Verify: true, KeepGoing: true}

	report, err := w.Run(context.Background(), []string{"*.md"})
	require.ErrorIs(t, err, fence.ErrVerify)

	require.Len(t, report.Files, 2)
	require.Error(t, report.Files[0].Err)
	require.NoError(t, report.Files[1].Err)
	assert.Equal(t, htmlDoc, readFile(t, mfs, "a.md"))
	assert.Equal(t, fixedDoc, readFile(t, mfs, "b.md"))
}

func TestWalkerHookError(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{"a.md": brokenDoc})

	w := &files.Walker{
		FS:    mfs,
		Fixer: fixer.New(fixer.Options{}),
		OnFixed: func(context.Context, *files.FileReport) error {
			return assert.AnError
		},
	}

	_, err := w.Run(context.Background(), []string{"*.md"})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, fixedDoc, readFile(t, mfs, "a.md"))
}

func TestWalkerCancelled(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{"a.md": brokenDoc})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &files.Walker{FS: mfs, Fixer: fixer.New(fixer.Options{})}

	_, err := w.Run(ctx, []string{"*.md"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, brokenDoc, readFile(t, mfs, "a.md"))
}

func TestWalkerLogsUnbalancedBraces(t *testing.T) {
	t.Parallel()

	mfs := newFS(t, map[string]string{"a.md": "text\nconst a = {\nmore\n"})

	core, logs := observer.New(zap.WarnLevel)

	w := &files.Walker{
		FS:     mfs,
		Fixer:  fixer.New(fixer.Options{Unterminated: fixer.PolicySkip}),
		Logger: zap.New(core),
	}

	report, err := w.Run(context.Background(), []string{"*.md"})
	require.NoError(t, err)
	assert.Empty(t, report.Modified())

	entries := logs.FilterMessage("unbalanced braces").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["line"])
	assert.Equal(t, "a.md", entries[0].ContextMap()["path"])
}

func TestLocalFS(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(name, []byte(brokenDoc), 0o600))

	w := &files.Walker{FS: files.NewLocalFS(dir), Fixer: fixer.New(fixer.Options{})}

	report, err := w.Run(context.Background(), []string{"*.md", "missing/*.md"})
	require.NoError(t, err)
	require.Len(t, report.Modified(), 1)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, fixedDoc, string(data))

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.Error(t, files.NewLocalFS(dir).WriteFile("../escape.md", nil, 0o644))
}
