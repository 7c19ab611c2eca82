package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/epilectrik/voynich-sub007/pkg/trace/analytics"
	"github.com/epilectrik/voynich-sub007/pkg/trace/internalerr"
	"github.com/epilectrik/voynich-sub007/pkg/trace/store"
)

// timeLayout keeps a fixed-width fractional second so that the TEXT
// column sorts lexicographically in time order. RFC3339Nano trims
// trailing zeros and would break generated_at comparisons.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	folio_id TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	phases TEXT NOT NULL,
	summary TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trace_rows (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	token TEXT NOT NULL,
	class TEXT NOT NULL,
	distances TEXT NOT NULL,
	min_dist INTEGER NOT NULL,
	hazard INTEGER NOT NULL DEFAULT 0,
	hazard_kind TEXT,
	cycle INTEGER NOT NULL DEFAULT 0,
	notes TEXT,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_folio ON runs(folio_id, generated_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun inserts or replaces a run, keyed by ID.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("run id empty: %w", internalerr.ErrInvalidInput)
	}

	phases, err := json.Marshal(r.Phases)
	if err != nil {
		return fmt.Errorf("marshal phases: %w", err)
	}
	summary, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, folio_id, generated_at, phases, summary)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			folio_id = excluded.folio_id,
			generated_at = excluded.generated_at,
			phases = excluded.phases,
			summary = excluded.summary`,
		r.ID, r.FolioID, r.GeneratedAt.UTC().Format(timeLayout), string(phases), string(summary))
	return err
}

// GetRun returns a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, folio_id, generated_at, phases, summary
		FROM runs WHERE id = ?`, id)

	var r store.Run
	var generatedAt, phases, summary string
	err := row.Scan(&r.ID, &r.FolioID, &generatedAt, &phases, &summary)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}

	r.GeneratedAt, err = time.Parse(timeLayout, generatedAt)
	if err != nil {
		return store.Run{}, false, fmt.Errorf("parse generated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(phases), &r.Phases); err != nil {
		return store.Run{}, false, fmt.Errorf("unmarshal phases: %w", err)
	}
	if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
		return store.Run{}, false, fmt.Errorf("unmarshal summary: %w", err)
	}
	return r, true, nil
}

// ListRuns returns run metadata, newest first. An empty folioID matches all;
// a non-positive limit means no limit.
func (s *sqliteStore) ListRuns(ctx context.Context, folioID string, limit int) ([]store.RunMeta, error) {
	if limit <= 0 {
		limit = -1 // SQLite: LIMIT -1 disables the cap
	}

	query := `SELECT id, folio_id, generated_at, summary FROM runs`
	args := []interface{}{}
	if folioID != "" {
		query += ` WHERE folio_id = ?`
		args = append(args, folioID)
	}
	query += ` ORDER BY generated_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metas []store.RunMeta
	for rows.Next() {
		var m store.RunMeta
		var generatedAt, summary string
		if err := rows.Scan(&m.ID, &m.FolioID, &generatedAt, &summary); err != nil {
			return nil, err
		}
		m.GeneratedAt, err = time.Parse(timeLayout, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse generated_at: %w", err)
		}
		var sum analytics.Summary
		if err := json.Unmarshal([]byte(summary), &sum); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		m.TotalTokens = sum.TotalTokens
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// DeleteRun removes a run; its rows cascade.
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return nil
}

// DeleteRunsBefore removes all runs generated before the cutoff.
func (s *sqliteStore) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE generated_at < ?`,
		cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// SaveRows replaces the row set of a run inside one transaction.
func (s *sqliteStore) SaveRows(ctx context.Context, runID string, traceRows []store.Row) error {
	if runID == "" {
		return fmt.Errorf("run id empty: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trace_rows WHERE run_id = ?`, runID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trace_rows (run_id, position, token, class, distances, min_dist, hazard, hazard_kind, cycle, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range traceRows {
		distances, err := json.Marshal(r.Distances)
		if err != nil {
			return fmt.Errorf("marshal distances: %w", err)
		}
		hazard := 0
		if r.Hazard {
			hazard = 1
		}
		if _, err := stmt.ExecContext(ctx, runID, r.Position, r.Token, r.Class,
			string(distances), r.MinDist, hazard, r.HazardKind, r.Cycle, r.Notes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRows returns a run's rows in position order.
func (s *sqliteStore) GetRows(ctx context.Context, runID string) ([]store.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, token, class, distances, min_dist, hazard, hazard_kind, cycle, notes
		FROM trace_rows WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Row
	for rows.Next() {
		var r store.Row
		var distances string
		var hazard int
		var hazardKind, notes sql.NullString
		if err := rows.Scan(&r.Position, &r.Token, &r.Class, &distances,
			&r.MinDist, &hazard, &hazardKind, &r.Cycle, &notes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(distances), &r.Distances); err != nil {
			return nil, fmt.Errorf("unmarshal distances: %w", err)
		}
		r.Hazard = hazard != 0
		r.HazardKind = hazardKind.String
		r.Notes = notes.String
		out = append(out, r)
	}
	return out, rows.Err()
}
