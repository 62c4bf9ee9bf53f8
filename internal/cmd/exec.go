package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

const fileVar = "MDXFIX_FILE"

// expandCommand replaces {} with a quoted reference to the file variable so
// paths with blanks survive word splitting.
func expandCommand(scr string) string {
	return strings.ReplaceAll(scr, "{}", `"$`+fileVar+`"`)
}

// runHook runs scr for the file at path inside dir.
func runHook(ctx context.Context, scr, dir, path string, stdout, stderr io.Writer) error {
	abs, err := filepath.Abs(filepath.Join(dir, filepath.FromSlash(path)))
	if err != nil {
		return err
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	env := expand.ListEnviron(append(os.Environ(), fileVar+"="+abs)...)

	exitCode, err := runCommand(ctx, expandCommand(scr), absDir, env, stdout, stderr)
	if err != nil {
		return err
	}

	if exitCode != 0 {
		return fmt.Errorf("exec hook exited with %d", exitCode)
	}

	return nil
}

func runCommand(ctx context.Context, command, dir string, env expand.Environ, stdout, stderr io.Writer) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, err
	}

	runner, err := interp.New(interp.Dir(dir), interp.Env(env), interp.StdIO(nil, stdout, stderr))
	if err != nil {
		return -1, err
	}

	err = runner.Run(ctx, file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}

		return -1, err
	}

	return 0, nil
}
