package ssb

import (
	"context"
	"errors"
	"fmt"
)

// SSBService runs the screenshot backup pass: it obtains the app table,
// walks the Steam library for screenshots folders and copies new images to
// the target.
type SSBService struct {
	tables    AppTableProvider
	fsmgr     FilesystemManager
	target    Target
	database  Database
	reporter  Reporter
	logger    Logger
	clock     Clock
	gamePacer Pacer
	copyPacer Pacer
	strict    bool
}

// Option customizes an SSBService.
type Option func(*SSBService)

// WithReporter sets the progress reporter. The default discards progress.
func WithReporter(r Reporter) Option {
	return func(s *SSBService) { s.reporter = r }
}

// WithPacing spaces out game announcements and file copies.
func WithPacing(game, file Pacer) Option {
	return func(s *SSBService) {
		s.gamePacer = game
		s.copyPacer = file
	}
}

// WithStrictScan makes any unreadable directory abort the run instead of
// being skipped.
func WithStrictScan(strict bool) Option {
	return func(s *SSBService) { s.strict = strict }
}

// NewSSBService creates a new SSBService with the provided dependencies.
func NewSSBService(tables AppTableProvider, fsmgr FilesystemManager, target Target, database Database, logger Logger, clock Clock, opts ...Option) *SSBService {
	s := &SSBService{
		tables:    tables,
		fsmgr:     fsmgr,
		target:    target,
		database:  database,
		reporter:  NopReporter{},
		logger:    logger,
		clock:     clock,
		gamePacer: NoPacing{},
		copyPacer: NoPacing{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunSummary totals the outcome of a backup pass.
type RunSummary struct {
	Games      int // candidates resolved to a real game
	Unknown    int // candidates whose id is not in the table
	Copied     int
	Skipped    int
	Failed     int
	Unreadable int // directories skipped because they could not be read
}

// Backup copies every screenshot under root that is not yet present at the
// target. Copies are recorded against runID. Failing to obtain the app
// table or to read root aborts the pass; individual copy failures do not.
func (s *SSBService) Backup(ctx context.Context, root *Path, runID string) (*RunSummary, error) {
	if !root.IsDir() {
		return nil, fmt.Errorf("steam folder is not a directory: %s: %w", root.String(), ErrConfig)
	}

	table, err := s.tables.AppTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading app table: %w", err)
	}
	s.logger.Info("app table ready", "apps", table.Len())

	summary := &RunSummary{}
	for c, err := range Locate(s.fsmgr, root) {
		if err != nil {
			var te *TraversalError
			if !errors.As(err, &te) || s.strict {
				return summary, fmt.Errorf("scanning %s: %w", root.String(), err)
			}
			summary.Unreadable++
			s.logger.Warn("directory skipped", "path", te.Path, "error", te.Err)
			continue
		}

		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := s.CopyCandidate(ctx, table, c, runID, summary); err != nil {
			return summary, err
		}
	}

	s.logger.Info("backup complete",
		"games", summary.Games,
		"copied", summary.Copied,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}
