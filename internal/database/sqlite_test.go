package database

import (
	"testing"
	"time"

	"ssb-go/internal/model"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := db.MigrateUp(); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

func createTestRun(t *testing.T, db *SQLiteDatabase, id string, started time.Time) *model.Run {
	t.Helper()

	run := &model.Run{ID: id, Operation: "Backup", StartedAt: started}
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun(%s) error = %v", id, err)
	}
	return run
}

func TestSQLiteDatabase_CreateRun(t *testing.T) {
	t.Run("defaults status to running", func(t *testing.T) {
		db := newTestDB(t)
		started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		run := createTestRun(t, db, "run-1", started)

		if run.Status != model.RunStatusRunning {
			t.Errorf("Status = %q, want %q", run.Status, model.RunStatusRunning)
		}

		runs, err := db.ListRuns(10)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("len(runs) = %d, want 1", len(runs))
		}
		got := runs[0]
		if got.ID != "run-1" || got.Operation != "Backup" {
			t.Errorf("run = %+v", got)
		}
		if !got.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
		}
		if got.FinishedAt != nil {
			t.Errorf("FinishedAt = %v, want nil", got.FinishedAt)
		}
	})

	t.Run("fails on duplicate id", func(t *testing.T) {
		db := newTestDB(t)
		createTestRun(t, db, "run-1", time.Now())

		err := db.CreateRun(&model.Run{ID: "run-1", Operation: "Backup", StartedAt: time.Now()})
		if err == nil {
			t.Error("second CreateRun() expected error for duplicate id")
		}
	})
}

func TestSQLiteDatabase_FinishRun(t *testing.T) {
	t.Run("stores totals and status", func(t *testing.T) {
		db := newTestDB(t)
		started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		run := createTestRun(t, db, "run-1", started)

		finished := started.Add(90 * time.Second)
		run.FinishedAt = &finished
		run.Status = model.RunStatusSuccess
		run.Games = 3
		run.Copied = 12
		run.Skipped = 40
		run.Failed = 1
		if err := db.FinishRun(run); err != nil {
			t.Fatalf("FinishRun() error = %v", err)
		}

		runs, err := db.ListRuns(1)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		got := runs[0]
		if got.Status != model.RunStatusSuccess {
			t.Errorf("Status = %q, want success", got.Status)
		}
		if got.FinishedAt == nil || !got.FinishedAt.Equal(finished) {
			t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, finished)
		}
		if got.Games != 3 || got.Copied != 12 || got.Skipped != 40 || got.Failed != 1 {
			t.Errorf("totals = %d/%d/%d/%d, want 3/12/40/1", got.Games, got.Copied, got.Skipped, got.Failed)
		}
	})

	t.Run("fails for unknown run", func(t *testing.T) {
		db := newTestDB(t)
		err := db.FinishRun(&model.Run{ID: "missing", Status: model.RunStatusError})
		if err == nil {
			t.Error("FinishRun() expected error for unknown run")
		}
	})
}

func TestSQLiteDatabase_ListRuns(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	createTestRun(t, db, "oldest", base)
	createTestRun(t, db, "middle", base.Add(time.Hour))
	createTestRun(t, db, "newest", base.Add(2*time.Hour))

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].ID != "newest" || runs[1].ID != "middle" {
		t.Errorf("order = [%s %s], want [newest middle]", runs[0].ID, runs[1].ID)
	}
}

func TestSQLiteDatabase_RecordCopy(t *testing.T) {
	t.Run("records copies in order", func(t *testing.T) {
		db := newTestDB(t)
		createTestRun(t, db, "run-1", time.Now())
		createTestRun(t, db, "run-2", time.Now())

		copiedAt := time.Date(2024, 1, 15, 10, 31, 0, 0, time.UTC)
		for _, name := range []string{"a.jpg", "b.jpg"} {
			rec := &model.CopyRecord{
				RunID:      "run-1",
				AppID:      440,
				GameName:   "Team Fortress 2",
				FileName:   name,
				SourcePath: "/steam/userdata/1/760/remote/440/screenshots/" + name,
				Size:       2048,
				CopiedAt:   copiedAt,
			}
			if err := db.RecordCopy(rec); err != nil {
				t.Fatalf("RecordCopy(%s) error = %v", name, err)
			}
			if rec.ID == 0 {
				t.Errorf("RecordCopy(%s) did not set ID", name)
			}
		}

		copies, err := db.ListCopies("run-1")
		if err != nil {
			t.Fatalf("ListCopies() error = %v", err)
		}
		if len(copies) != 2 {
			t.Fatalf("len(copies) = %d, want 2", len(copies))
		}
		if copies[0].FileName != "a.jpg" || copies[1].FileName != "b.jpg" {
			t.Errorf("order = [%s %s], want [a.jpg b.jpg]", copies[0].FileName, copies[1].FileName)
		}
		if copies[0].AppID != 440 || copies[0].Size != 2048 || !copies[0].CopiedAt.Equal(copiedAt) {
			t.Errorf("copy = %+v", copies[0])
		}

		other, err := db.ListCopies("run-2")
		if err != nil {
			t.Fatalf("ListCopies(run-2) error = %v", err)
		}
		if len(other) != 0 {
			t.Errorf("len(ListCopies(run-2)) = %d, want 0", len(other))
		}
	})

	t.Run("rejects unknown run", func(t *testing.T) {
		db := newTestDB(t)
		err := db.RecordCopy(&model.CopyRecord{RunID: "missing", AppID: 1, FileName: "a.jpg", CopiedAt: time.Now()})
		if err == nil {
			t.Error("RecordCopy() expected foreign key error")
		}
	})

	t.Run("keeps full uint32 app ids", func(t *testing.T) {
		db := newTestDB(t)
		createTestRun(t, db, "run-1", time.Now())
		rec := &model.CopyRecord{RunID: "run-1", AppID: 4294967295, FileName: "a.jpg", CopiedAt: time.Now()}
		if err := db.RecordCopy(rec); err != nil {
			t.Fatalf("RecordCopy() error = %v", err)
		}
		copies, err := db.ListCopies("run-1")
		if err != nil {
			t.Fatalf("ListCopies() error = %v", err)
		}
		if copies[0].AppID != 4294967295 {
			t.Errorf("AppID = %d, want 4294967295", copies[0].AppID)
		}
	})
}

func TestSQLiteDatabase_CheckMigrations(t *testing.T) {
	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	defer db.Close()

	if err := db.CheckMigrations(); err == nil {
		t.Error("CheckMigrations() on fresh database expected error")
	}
	if err := db.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if err := db.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() after MigrateUp = %v", err)
	}
}
