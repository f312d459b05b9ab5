package ssb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ssb-go/internal/model"
)

// imagePattern selects the screenshot files inside a screenshots folder.
const imagePattern = "*.jpg"

// CopyCandidate copies the screenshots of one candidate to the target and
// adds the outcome to summary. Unknown ids and the reserved id are skipped.
// Per-file and per-game failures are counted, reported and logged; only
// cancellation is returned as an error.
func (s *SSBService) CopyCandidate(ctx context.Context, table *AppTable, c Candidate, runID string, summary *RunSummary) error {
	rawName, ok := table.Lookup(c.AppID)
	if !ok {
		summary.Unknown++
		s.logger.Debug("unknown app id", "app_id", c.AppID, "path", c.Dir.String())
		return nil
	}

	name := SanitizeName(rawName)
	s.reporter.GameFound(c.AppID, name)
	if err := s.gamePacer.Wait(ctx); err != nil {
		return err
	}

	if c.AppID == UnknownAppID {
		return nil
	}
	summary.Games++

	game := GameFolderName(name, c.AppID)
	if err := s.target.EnsureGame(ctx, game); err != nil {
		summary.Failed++
		s.reporter.FileFailed(s.target.Location(game, ""), err)
		s.logger.Error("creating game folder failed", "game", game, "error", err)
		return nil
	}

	images, err := s.fsmgr.Glob(c.Dir, imagePattern)
	if err != nil {
		// The walk reports an unlisted folder itself and counts it there.
		var te *TraversalError
		if errors.As(err, &te) {
			s.logger.Debug("screenshots folder unreadable", "path", te.Path, "error", te.Err)
			return nil
		}
		summary.Failed++
		s.logger.Error("listing screenshots failed", "path", c.Dir.String(), "error", err)
		return nil
	}

	for _, img := range images {
		copied, err := s.copyImage(ctx, game, img)
		location := s.target.Location(game, img.Name())
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			summary.Failed++
			s.reporter.FileFailed(location, err)
			s.logger.Error("copy failed", "source", img.String(), "target", location, "error", err)
			continue
		case !copied:
			summary.Skipped++
			continue
		}

		summary.Copied++
		s.reporter.FileCopied(location)
		s.logger.Info("screenshot copied", "source", img.String(), "target", location)
		s.recordCopy(runID, c.AppID, game, img)

		if err := s.copyPacer.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// copyImage copies img into the game folder unless a file with the same
// name is already there. It reports whether a copy was made.
func (s *SSBService) copyImage(ctx context.Context, game string, img *Path) (bool, error) {
	exists, err := s.target.Has(ctx, game, img.Name())
	if err != nil {
		return false, fmt.Errorf("checking target: %w", err)
	}
	if exists {
		return false, nil
	}

	r, err := s.fsmgr.Open(img)
	if err != nil {
		return false, fmt.Errorf("opening source: %w", err)
	}
	defer r.Close()

	if err := s.target.Put(ctx, game, img.Name(), r, img.Info().Size(), img.Info().Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing target: %w", err)
	}
	return true, nil
}

// recordCopy stores a history entry for a copied file. History is
// best-effort: the file is already at the target.
func (s *SSBService) recordCopy(runID string, appID uint32, game string, img *Path) {
	if s.database == nil || runID == "" {
		return
	}
	rec := &model.CopyRecord{
		RunID:      runID,
		AppID:      appID,
		GameName:   game,
		FileName:   img.Name(),
		SourcePath: img.String(),
		Size:       img.Info().Size(),
		CopiedAt:   s.clock.Now(),
	}
	if err := s.database.RecordCopy(rec); err != nil {
		s.logger.Warn("recording copy failed", "file", img.Name(), "error", err)
	}
}

// GameFolderName returns the folder used for a game with the sanitized name,
// falling back to the numeric id when nothing usable is left of the name.
func GameFolderName(name string, appID uint32) string {
	if name == "" || name == "." || name == ".." {
		return strconv.FormatUint(uint64(appID), 10)
	}
	return name
}
