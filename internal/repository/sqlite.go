package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id            TEXT PRIMARY KEY,
	course_id     INTEGER NOT NULL,
	course_name   TEXT NOT NULL DEFAULT '',
	profile_key   TEXT NOT NULL,
	status        TEXT NOT NULL,
	error         TEXT NOT NULL DEFAULT '',
	student_count INTEGER NOT NULL DEFAULT 0,
	flag_count    INTEGER NOT NULL DEFAULT 0,
	started_at    TIMESTAMP NOT NULL,
	completed_at  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS run_flags (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
	item_type    TEXT NOT NULL,
	student_name TEXT NOT NULL,
	user_id      INTEGER NOT NULL,
	item_name    TEXT NOT NULL,
	item_id      INTEGER NOT NULL,
	flag         TEXT NOT NULL,
	check_name   TEXT NOT NULL DEFAULT '',
	evidence     REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_run_flags_run_id ON run_flags(run_id);
CREATE INDEX IF NOT EXISTS idx_analysis_runs_course ON analysis_runs(course_id, started_at);
`

type SQLiteRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open connects to the run-history database and creates the schema when
// missing. The path ":memory:" gives an ephemeral store for tests.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc's sqlite driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent run updates.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Run history database ready")
	return db, nil
}

func NewSQLiteRepository(db *sql.DB, logger zerolog.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
