package ssb

import (
	"io"
	"iter"
)

// FilesystemManager abstracts read access to the Steam library so the scan
// and copy pass can be exercised without touching the real filesystem.
type FilesystemManager interface {
	// Resolve makes rawPath absolute, stats it and returns a Path.
	Resolve(rawPath string) (*Path, error)

	// Open opens a regular file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// WalkDirs lazily yields every directory under root, root included,
	// without following symbolic links. A nested directory that cannot be
	// read is yielded as a *TraversalError and the walk continues; failure
	// to read root itself is yielded as a plain error and ends the walk.
	WalkDirs(root *Path) iter.Seq2[*Path, error]

	// Glob returns the regular files directly inside dir whose base name
	// matches pattern (filepath.Match syntax).
	Glob(dir *Path, pattern string) ([]*Path, error)
}
