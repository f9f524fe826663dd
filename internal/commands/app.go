package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mistakia/finance-sub001/internal/config"
	"github.com/mistakia/finance-sub001/internal/logger"
	"github.com/mistakia/finance-sub001/internal/runlog"
	"github.com/mistakia/finance-sub001/internal/store"
)

// app is the state shared by commands that work on an initialized ledger.
type app struct {
	root  string
	cfg   *config.Config
	db    *store.DB
	log   zerolog.Logger
	ctx   context.Context
	runID string
}

// openApp loads <dir>/ledger.yaml and .env, builds the logger and opens the
// migrated store. Callers must Close the app.
func openApp(cmd *cobra.Command, dir string) (*app, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	log = log.With().Str("command", cmd.Name()).Str("run_id", runID).Logger()
	ctx := logger.WithContext(cmd.Context(), log)

	db, err := openStore(ctx, root, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &app{root: root, cfg: cfg, db: db, log: log, ctx: ctx, runID: runID}, nil
}

// openStore opens and migrates the configured database. Relative sqlite
// paths are resolved against the project root.
func openStore(ctx context.Context, root string, dbCfg config.DatabaseConfig) (*store.DB, error) {
	dsn := dbCfg.DSN
	if dbCfg.Driver == store.DriverSQLite && !filepath.IsAbs(dsn) && !strings.HasPrefix(dsn, "file:") {
		dsn = filepath.Join(root, dsn)
	}

	db, err := store.Open(ctx, dbCfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing database")
	}
}

// path resolves p against the project root.
func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.root, p)
}

// record appends a run-log entry. Failures are logged, not returned: the
// run itself has already succeeded.
func (a *app) record(command, source string, count int, details string) {
	e := runlog.Entry{
		Timestamp: time.Now(),
		RunID:     a.runID,
		Command:   command,
		Source:    source,
		Count:     count,
		Details:   details,
	}
	if err := runlog.Append(a.root, []runlog.Entry{e}); err != nil {
		a.log.Warn().Err(err).Msg("writing run log")
	}
}
