package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/onelouder/autoplex/internal/state"

	_ "modernc.org/sqlite"
)

// Snapshots caches the last successful response per resource so the CLI
// can answer while the server is unreachable.
type Snapshots struct {
	db  *sql.DB
	now func() time.Time
}

var _ state.SnapshotSink = (*Snapshots)(nil)

// OpenSnapshots opens (creating if needed) snapshots.sqlite in the store dir.
func (s Store) OpenSnapshots(ctx context.Context) (*Snapshots, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.snapshotsPath())
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and a one-shot CLI command share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSnapshots(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Snapshots{db: db, now: time.Now}, nil
}

func migrateSnapshots(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			resource TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			fetched_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Snapshots) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot replaces the stored copy of r with v.
func (s *Snapshots) SaveSnapshot(ctx context.Context, r state.Resource, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", r, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots(resource, json, fetched_at_unixms) VALUES(?, ?, ?)
		 ON CONFLICT(resource) DO UPDATE SET json = excluded.json, fetched_at_unixms = excluded.fetched_at_unixms`,
		string(r), string(raw), s.now().UTC().UnixMilli())
	return err
}

// LoadSnapshot decodes the stored copy of r into dst. ok is false when
// nothing has been recorded yet.
func (s *Snapshots) LoadSnapshot(ctx context.Context, r state.Resource, dst any) (fetchedAt time.Time, ok bool, err error) {
	var (
		raw string
		ms  int64
	)
	err = s.db.QueryRowContext(ctx, `SELECT json, fetched_at_unixms FROM snapshots WHERE resource = ?`, string(r)).Scan(&raw, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return time.Time{}, false, fmt.Errorf("snapshot %s: %w", r, err)
	}
	return time.UnixMilli(ms), true, nil
}
