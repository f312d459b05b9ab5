package model

import "time"

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// Run is one invocation of a CLI operation that touches the history
// database, together with the totals of its copy pass.
type Run struct {
	ID         string // UUID
	Operation  string // e.g. "Backup", "RefreshAppIDs"
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in progress
	Status     string
	Games      int // recognized games with a screenshots folder
	Copied     int
	Skipped    int // already present at the target
	Failed     int
}

// CopyRecord is a screenshot copied to the target during a run.
type CopyRecord struct {
	ID         int64
	RunID      string // Foreign key to Run
	AppID      uint32
	GameName   string // sanitized name used as the game folder
	FileName   string
	SourcePath string
	Size       int64
	CopiedAt   time.Time
}
