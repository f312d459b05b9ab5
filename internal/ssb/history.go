package ssb

import (
	"fmt"

	"ssb-go/internal/model"
)

// GetHistory returns the most recent runs, ordered newest first.
func (s *SSBService) GetHistory(limit int) ([]*model.Run, error) {
	runs, err := s.database.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// GetRunCopies returns the files copied by a run, in copy order.
func (s *SSBService) GetRunCopies(runID string) ([]*model.CopyRecord, error) {
	copies, err := s.database.ListCopies(runID)
	if err != nil {
		return nil, fmt.Errorf("listing copies for run %s: %w", runID, err)
	}
	return copies, nil
}
