package app

import (
	"ssb-go/internal/model"
	"ssb-go/internal/ssb"
)

// RunOperation tracks a CLI operation that may write to the history
// database. Operations start in memory; only commands that copy or download
// something persist them.
type RunOperation struct {
	run       *model.Run
	persisted bool
}

// NewRunOperation creates a new in-memory operation with a fresh id.
func NewRunOperation(operation string, ids ssb.IDGenerator, clock ssb.Clock) *RunOperation {
	return &RunOperation{
		run: &model.Run{
			ID:        ids.New(),
			Operation: operation,
			StartedAt: clock.Now().UTC(),
			Status:    model.RunStatusRunning,
		},
	}
}

// ID returns the run id, used to correlate log lines and copy records.
func (op *RunOperation) ID() string {
	return op.run.ID
}

// Persisted returns true if this operation has been saved to the database.
func (op *RunOperation) Persisted() bool {
	return op.persisted
}

// Record stores the totals of a finished copy pass.
func (op *RunOperation) Record(summary *ssb.RunSummary) {
	if summary == nil {
		return
	}
	op.run.Games = summary.Games
	op.run.Copied = summary.Copied
	op.run.Skipped = summary.Skipped
	op.run.Failed = summary.Failed
}

// Fail marks the operation as ended by an error.
func (op *RunOperation) Fail() {
	op.run.Status = model.RunStatusError
}

// finish sets the final status and finish time. A run that did not fail
// is a success.
func (op *RunOperation) finish(clock ssb.Clock) *model.Run {
	if op.run.Status == model.RunStatusRunning {
		op.run.Status = model.RunStatusSuccess
	}
	now := clock.Now().UTC()
	op.run.FinishedAt = &now
	return op.run
}
