package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sheetfolio/history"
)

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS loads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL CHECK(duration_ms >= 0),
	mode TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS load_sources (
	load_id INTEGER NOT NULL REFERENCES loads(id) ON DELETE CASCADE,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	rows_read INTEGER NOT NULL DEFAULT 0,
	records INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	PRIMARY KEY(load_id, source)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// RecordLoad stores one run with its per-source outcomes and returns the new
// load ID.
func (s *SQLiteStore) RecordLoad(ctx context.Context, run history.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO loads (started_at, duration_ms, mode) VALUES (?, ?, ?);`,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		max(0, run.Duration.Milliseconds()),
		run.Mode,
	)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert load: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read inserted load id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO load_sources (load_id, source, status, rows_read, records, error)
VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, source := range run.Sources {
		if _, err := stmt.ExecContext(ctx, id, source.Source, source.Status, source.Rows, source.Records, source.Error); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert load source %s: %w", source.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return id, nil
}

// ListLoads returns the newest runs first. limit <= 0 returns all runs.
func (s *SQLiteStore) ListLoads(ctx context.Context, limit int) ([]history.Run, error) {
	query := `SELECT id, started_at, duration_ms, mode FROM loads ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	runs := make([]history.Run, 0, 32)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			run        history.Run
			startedRaw string
			durationMs int64
		)
		if err := rows.Scan(&run.ID, &startedRaw, &durationMs, &run.Mode); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		run.Sources = []history.SourceOutcome{}
		index[run.ID] = len(runs)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loads: %w", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}

	if err := s.attachSources(ctx, runs, index); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *SQLiteStore) attachSources(ctx context.Context, runs []history.Run, index map[int64]int) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT load_id, source, status, rows_read, records, error
FROM load_sources
ORDER BY load_id, rowid;`)
	if err != nil {
		return fmt.Errorf("query load sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			loadID  int64
			outcome history.SourceOutcome
		)
		if err := rows.Scan(&loadID, &outcome.Source, &outcome.Status, &outcome.Rows, &outcome.Records, &outcome.Error); err != nil {
			return fmt.Errorf("scan load source: %w", err)
		}
		pos, ok := index[loadID]
		if !ok {
			continue
		}
		runs[pos].Sources = append(runs[pos].Sources, outcome)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate load sources: %w", err)
	}
	return nil
}
