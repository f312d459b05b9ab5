package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"ssb-go/internal/appids"
	"ssb-go/internal/config"
	"ssb-go/internal/database"
	"ssb-go/internal/fs"
	"ssb-go/internal/model"
	"ssb-go/internal/ssb"
	"ssb-go/internal/steamapi"
	"ssb-go/internal/target"
)

// SSBApp is the application layer between the CLI and SSBService.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw settings values, and manages the DB lifecycle on Close.
type SSBApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	target  ssb.Target
	fsmgr   ssb.FilesystemManager
	cache   *appids.Cache
	service *ssb.SSBService
	console *Console
	logger  ssb.Logger
	clock   ssb.Clock
	op      *RunOperation
	logFile *os.File
}

// NewSSBApp creates a fully wired SSBApp from the given config.
// operation identifies the CLI command being run (e.g. "Backup", "RefreshAppIDs").
// Progress is written to console. The caller must call Close when done.
func NewSSBApp(ctx context.Context, cfg *config.Config, operation string, console *Console) (*SSBApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w: %w", err, ssb.ErrConfig)
	}

	clock := ssb.RealClock{}
	op := NewRunOperation(operation, ssb.UUIDGenerator{}, clock)

	slogger, logFile, err := newLogger(cfg.LogDir, op.ID())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)

	tgt, err := target.NewTargetFromConfig(ctx, cfg.Target, cfg.TargetFolder)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating target: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	client := steamapi.NewClient(cfg.AppIDs.URL, time.Duration(cfg.AppIDs.FetchTimeoutSeconds)*time.Second)
	cache := appids.NewCache(
		cfg.AppIDs.CachePath,
		time.Duration(cfg.AppIDs.MaxAgeDays)*24*time.Hour,
		client,
		clock,
		logger,
		appids.WithUpdatesDisabled(cfg.ForceDisableUpdate),
		appids.WithNotices(console.Notice),
	)

	gamePacer, copyPacer := newPacers(cfg.DisableArtificalDelay)
	svc := ssb.NewSSBService(cache, fsmgr, tgt, db, logger, clock,
		ssb.WithReporter(console),
		ssb.WithPacing(gamePacer, copyPacer),
		ssb.WithStrictScan(cfg.StrictScan),
	)

	logger.Debug("app ready", "operation", operation, "target", tgt.Location("", ""), "database", db.Path())

	return &SSBApp{
		cfg:     cfg,
		db:      db,
		target:  tgt,
		fsmgr:   fsmgr,
		cache:   cache,
		service: svc,
		console: console,
		logger:  logger,
		clock:   clock,
		op:      op,
		logFile: logFile,
	}, nil
}

// RunID returns the id of this invocation's run.
func (a *SSBApp) RunID() string {
	return a.op.ID()
}

// persistOperation saves the run to the database so copies can reference it.
// This should only be called for commands that copy or download.
func (a *SSBApp) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	if err := a.db.CreateRun(a.op.run); err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.op.persisted = true
	return nil
}

// Backup copies every new screenshot under the configured Steam folder to
// the target.
func (a *SSBApp) Backup(ctx context.Context) (*ssb.RunSummary, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}

	summary, err := a.backup(ctx)
	a.op.Record(summary)
	if err != nil {
		a.op.Fail()
		a.logger.Error("backup failed", "error", err)
		return summary, err
	}
	return summary, nil
}

func (a *SSBApp) backup(ctx context.Context) (*ssb.RunSummary, error) {
	root, err := a.fsmgr.Resolve(a.cfg.SteamFolder)
	if err != nil {
		return nil, fmt.Errorf("resolving steam folder: %w", err)
	}
	if err := a.target.ValidateSetup(ctx); err != nil {
		return nil, fmt.Errorf("checking target: %w", err)
	}
	return a.service.Backup(ctx, root, a.op.ID())
}

// RefreshAppIDs downloads the app list regardless of the cached copy's age.
// Returns the number of known apps.
func (a *SSBApp) RefreshAppIDs(ctx context.Context) (int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	table, err := a.cache.Refresh(ctx)
	if err != nil {
		a.op.Fail()
		return 0, err
	}
	return table.Len(), nil
}

// LookupApp returns the name the app list has for id and the folder name a
// backup would use for it.
func (a *SSBApp) LookupApp(ctx context.Context, id uint32) (name, folder string, found bool, err error) {
	table, err := a.cache.AppTable(ctx)
	if err != nil {
		return "", "", false, err
	}
	name, found = table.Lookup(id)
	if !found {
		return "", "", false, nil
	}
	return name, ssb.GameFolderName(ssb.SanitizeName(name), id), true, nil
}

// GetHistory returns the most recent runs.
func (a *SSBApp) GetHistory(limit int) ([]*model.Run, error) {
	return a.service.GetHistory(limit)
}

// GetRunCopies returns the files a run copied.
func (a *SSBApp) GetRunCopies(runID string) ([]*model.CopyRecord, error) {
	return a.service.GetRunCopies(runID)
}

// Close finalizes the run record and closes all resources.
func (a *SSBApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		run := a.op.finish(a.clock)
		if err := a.db.FinishRun(run); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
		a.logger.Info("run finished", "operation", run.Operation, "status", run.Status)
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
