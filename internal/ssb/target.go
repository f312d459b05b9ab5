package ssb

import (
	"context"
	"io"
	"io/fs"
)

// Target is the destination that receives copied screenshots, organized as
// one folder per game. Files are identified by game folder and base name
// only; no content comparison is made.
type Target interface {
	// Has reports whether a file with this name already exists for game.
	Has(ctx context.Context, game, name string) (bool, error)

	// EnsureGame makes sure the folder for game exists. Calling it for an
	// existing folder is a no-op.
	EnsureGame(ctx context.Context, game string) error

	// Put stores the size bytes read from r as game/name. Targets that keep
	// permissions give the file mode; others ignore it.
	// A failed Put leaves no partial file behind.
	Put(ctx context.Context, game, name string, r io.Reader, size int64, mode fs.FileMode) error

	// Location returns a human-readable location for game/name.
	Location(game, name string) string

	// ValidateSetup verifies that the target is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
