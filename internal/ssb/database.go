package ssb

import "ssb-go/internal/model"

// Database records backup runs and the files they copied.
type Database interface {
	// CreateRun inserts a new run. run.ID must already be set.
	CreateRun(run *model.Run) error

	// FinishRun stores the final status, totals and finish time of run.
	FinishRun(run *model.Run) error

	// RecordCopy stores a successfully copied file.
	RecordCopy(rec *model.CopyRecord) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*model.Run, error)

	// ListCopies returns the files copied by a run in copy order.
	ListCopies(runID string) ([]*model.CopyRecord, error)

	// Close closes the database connection.
	Close() error
}
