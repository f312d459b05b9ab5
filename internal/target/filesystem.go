package target

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"ssb-go/internal/ssb"
)

// FileSystemTarget copies screenshots into a local directory tree:
//
//	<root>/
//	  <game name>/
//	    <screenshot>.jpg
type FileSystemTarget struct {
	root string
}

// NewFileSystemTarget creates a target rooted at root. Nothing is created on
// disk until ValidateSetup or EnsureGame runs.
func NewFileSystemTarget(root string) (*FileSystemTarget, error) {
	if root == "" {
		return nil, fmt.Errorf("target folder is empty")
	}
	return &FileSystemTarget{root: root}, nil
}

// Root returns the target folder.
func (t *FileSystemTarget) Root() string {
	return t.root
}

// Has reports whether game/name already exists. Anything at that path
// counts, including a directory.
func (t *FileSystemTarget) Has(ctx context.Context, game, name string) (bool, error) {
	_, err := os.Lstat(t.Location(game, name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: %w", t.Location(game, name), err)
	}
}

// EnsureGame creates the folder for game if it does not exist.
func (t *FileSystemTarget) EnsureGame(ctx context.Context, game string) error {
	if err := os.MkdirAll(t.Location(game, ""), 0755); err != nil {
		return fmt.Errorf("failed to create game folder: %w", err)
	}
	return nil
}

// Put writes r to game/name with the given permissions, or defaultFileMode
// when mode is zero. The game folder must already exist.
func (t *FileSystemTarget) Put(ctx context.Context, game, name string, r io.Reader, size int64, mode fs.FileMode) error {
	return t.writeFile(t.Location(game, name), r, size, mode)
}

// Location returns the local path of game/name.
func (t *FileSystemTarget) Location(game, name string) string {
	return filepath.Join(t.root, game, name)
}

// ValidateSetup creates the target folder if needed and verifies that it
// accepts files.
func (t *FileSystemTarget) ValidateSetup(ctx context.Context) error {
	if err := os.MkdirAll(t.root, 0755); err != nil {
		return fmt.Errorf("failed to create target folder: %w", err)
	}
	info, err := os.Stat(t.root)
	if err != nil {
		return fmt.Errorf("target folder not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target folder is not a directory: %s", t.root)
	}

	probe, err := os.CreateTemp(t.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("target folder not writable: %w", err)
	}
	probe.Close()
	return os.Remove(probe.Name())
}

// defaultFileMode is used when the source permissions are unknown.
const defaultFileMode fs.FileMode = 0644

// writeFile writes data from r to destPath using atomic write (temp file + rename).
// CreateTemp opens files as 0600, so the mode is applied before the rename.
func (t *FileSystemTarget) writeFile(destPath string, r io.Reader, expectedSize int64, mode fs.FileMode) error {
	// Same directory as destPath so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if mode == 0 {
		mode = defaultFileMode
	}
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemTarget implements ssb.Target interface
var _ ssb.Target = (*FileSystemTarget)(nil)
