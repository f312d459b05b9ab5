package database

import (
	"fmt"
	"os"
	"path/filepath"

	"ssb-go/internal/config"
)

// historyFile is the name of the history database inside data_dir.
const historyFile = "history.db"

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. The schema is migrated on open unless auto_migrate
// is disabled, in which case an out-of-date schema is an error.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*SQLiteDatabase, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		path = filepath.Join(cfg.DataDir, historyFile)
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}

	if cfg.ShouldAutoMigrate() {
		err = db.MigrateUp()
	} else {
		err = db.CheckMigrations()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing history database: %w", err)
	}
	return db, nil
}
