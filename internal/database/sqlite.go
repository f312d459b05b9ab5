package database

import (
	"context"
	"database/sql"
	"fmt"

	"ssb-go/internal/database/migrations"
	"ssb-go/internal/model"
	"ssb-go/internal/ssb"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database, and the
	// history writer is a single goroutine anyway.
	db.SetMaxOpenConns(1)

	// SQLite ships with foreign keys off.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Run operations

func (s *SQLiteDatabase) CreateRun(run *model.Run) error {
	if run.Status == "" {
		run.Status = model.RunStatusRunning
	}
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO runs (id, operation, started_at, status)
		VALUES (?, ?, ?, ?)`,
		run.ID, run.Operation, run.StartedAt, run.Status,
	)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishRun(run *model.Run) error {
	var finished sql.NullTime
	if run.FinishedAt != nil {
		finished = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}

	res, err := s.db.ExecContext(context.Background(), `
		UPDATE runs
		SET finished_at = ?, status = ?, games = ?, copied = ?, skipped = ?, failed = ?
		WHERE id = ?`,
		finished, run.Status, run.Games, run.Copied, run.Skipped, run.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run: no run with id %s", run.ID)
	}
	return nil
}

func (s *SQLiteDatabase) ListRuns(limit int) ([]*model.Run, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, operation, started_at, finished_at, status, games, copied, skipped, failed
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var result []*model.Run
	for rows.Next() {
		var (
			run      model.Run
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Operation, &run.StartedAt, &finished, &run.Status,
			&run.Games, &run.Copied, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		result = append(result, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return result, nil
}

// Copy records

func (s *SQLiteDatabase) RecordCopy(rec *model.CopyRecord) error {
	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO copies (run_id, app_id, game_name, file_name, source_path, size, copied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, int64(rec.AppID), rec.GameName, rec.FileName, rec.SourcePath, rec.Size, rec.CopiedAt,
	)
	if err != nil {
		return fmt.Errorf("recording copy: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recording copy: %w", err)
	}
	rec.ID = id
	return nil
}

func (s *SQLiteDatabase) ListCopies(runID string) ([]*model.CopyRecord, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT id, run_id, app_id, game_name, file_name, source_path, size, copied_at
		FROM copies
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing copies: %w", err)
	}
	defer rows.Close()

	var result []*model.CopyRecord
	for rows.Next() {
		var (
			rec   model.CopyRecord
			appID int64
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &appID, &rec.GameName, &rec.FileName,
			&rec.SourcePath, &rec.Size, &rec.CopiedAt); err != nil {
			return nil, fmt.Errorf("scanning copy: %w", err)
		}
		rec.AppID = uint32(appID)
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing copies: %w", err)
	}
	return result, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp applies pending schema migrations.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements ssb.Database interface
var _ ssb.Database = (*SQLiteDatabase)(nil)
