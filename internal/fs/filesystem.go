package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"ssb-go/internal/ssb"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that operates on the real
// filesystem. Directories and files matching ignorePatterns are left out of
// WalkDirs and Glob results.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*ssb.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return ssb.NewPath(absPath, info.IsDir(), info), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *ssb.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// WalkDirs yields root and every directory below it in lexical order.
// A symlinked root is resolved first; links below it are never followed.
func (m *OSFilesystemManager) WalkDirs(root *ssb.Path) iter.Seq2[*ssb.Path, error] {
	return func(yield func(*ssb.Path, error) bool) {
		rootPath, err := filepath.EvalSymlinks(root.String())
		if err != nil {
			yield(nil, fmt.Errorf("resolving walk root: %w", err))
			return
		}
		stopped := false

		err = filepath.WalkDir(rootPath, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == rootPath {
					return err
				}
				if !yield(nil, &ssb.TraversalError{Path: p, Err: err}) {
					stopped = true
					return filepath.SkipAll
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() {
				return nil
			}

			if p != rootPath {
				rel, err := filepath.Rel(rootPath, p)
				if err == nil && m.ignore.Match(rel) {
					return filepath.SkipDir
				}
			}

			info, err := d.Info()
			if err != nil {
				if !yield(nil, &ssb.TraversalError{Path: p, Err: err}) {
					stopped = true
					return filepath.SkipAll
				}
				return filepath.SkipDir
			}
			if !yield(ssb.NewPath(p, true, info), nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped && !errors.Is(err, filepath.SkipAll) {
			yield(nil, fmt.Errorf("walking directory: %w", err))
		}
	}
}

// Glob returns the regular files directly inside dir that match pattern.
// Symlinks to regular files are included. A directory that cannot be listed
// is reported as a *ssb.TraversalError.
func (m *OSFilesystemManager) Glob(dir *ssb.Path, pattern string) ([]*ssb.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return nil, &ssb.TraversalError{Path: dir.String(), Err: err}
	}

	var paths []*ssb.Path
	for _, entry := range entries {
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			continue
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}
		if m.ignore.Match(entry.Name()) {
			continue
		}
		full := filepath.Join(dir.String(), entry.Name())
		info, err := fileInfo(full, entry)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		if !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, ssb.NewPath(full, false, info))
	}
	return paths, nil
}

// fileInfo returns the info of entry, following it when it is a symlink so
// the size and mode are those of the file it points to.
func fileInfo(path string, entry fs.DirEntry) (fs.FileInfo, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.Info()
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		// dangling link
		return entry.Info()
	}
	return info, err
}

// Compile-time check that OSFilesystemManager implements ssb.FilesystemManager interface
var _ ssb.FilesystemManager = (*OSFilesystemManager)(nil)
