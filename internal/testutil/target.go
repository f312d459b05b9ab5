package testutil

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"ssb-go/internal/ssb"
	"ssb-go/internal/target"
)

// ErrInjected is returned by FailingTarget for the files and games it is
// told to fail.
var ErrInjected = errors.New("injected failure")

// FailingTarget wraps a MemoryTarget and fails selected operations.
type FailingTarget struct {
	*target.MemoryTarget
	failPut  map[string]bool // file name -> fail
	failGame map[string]bool // game -> fail EnsureGame
}

// NewFailingTarget creates an empty in-memory target that fails nothing
// until told to.
func NewFailingTarget() *FailingTarget {
	return &FailingTarget{
		MemoryTarget: target.NewMemoryTarget(),
		failPut:      make(map[string]bool),
		failGame:     make(map[string]bool),
	}
}

// FailPut makes copies of files with this name fail.
func (f *FailingTarget) FailPut(name string) {
	f.failPut[name] = true
}

// FailGame makes creating the folder for game fail.
func (f *FailingTarget) FailGame(game string) {
	f.failGame[game] = true
}

func (f *FailingTarget) EnsureGame(ctx context.Context, game string) error {
	if f.failGame[game] {
		return ErrInjected
	}
	return f.MemoryTarget.EnsureGame(ctx, game)
}

func (f *FailingTarget) Put(ctx context.Context, game, name string, r io.Reader, size int64, mode fs.FileMode) error {
	if f.failPut[name] {
		return ErrInjected
	}
	return f.MemoryTarget.Put(ctx, game, name, r, size, mode)
}

var _ ssb.Target = (*FailingTarget)(nil)

// NewTestTarget creates a ready filesystem target rooted in a fresh temp dir.
func NewTestTarget(t *testing.T) *target.FileSystemTarget {
	t.Helper()
	tgt, err := target.NewFileSystemTarget(filepath.Join(t.TempDir(), "backup"))
	if err != nil {
		t.Fatalf("failed to create target: %v", err)
	}
	if err := tgt.ValidateSetup(context.Background()); err != nil {
		t.Fatalf("failed to set up target: %v", err)
	}
	return tgt
}
