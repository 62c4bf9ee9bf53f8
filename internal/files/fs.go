// Package files resolves glob patterns to Markdown files and runs the fixer
// over them.
package files

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FS is a file system the walker can read from and write back to. Names are
// slash separated and relative to the root, as for [fs.FS].
type FS interface {
	fs.FS
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// LocalFS is an FS rooted at a directory on disk.
type LocalFS struct {
	fs.FS
	root string
}

// NewLocalFS returns an FS rooted at dir.
func NewLocalFS(dir string) *LocalFS {
	return &LocalFS{FS: os.DirFS(dir), root: dir}
}

// WriteFile replaces the contents of name.
func (l *LocalFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrInvalid}
	}

	return os.WriteFile(filepath.Join(l.root, filepath.FromSlash(name)), data, perm)
}
