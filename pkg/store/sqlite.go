package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a SQLite table so they can be queried
// with ordinary SQL tools.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and runs
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         TEXT PRIMARY KEY,
			chart      TEXT NOT NULL,
			kind       TEXT NOT NULL,
			title      TEXT,
			state      TEXT NOT NULL,
			svg        BLOB,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_chart ON snapshots(chart, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", strings.Fields(stmt)[:3], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	prepare(snap)
	state, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO snapshots
		(id, chart, kind, title, state, svg, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		snap.ID, snap.Chart, snap.Kind, snap.Title, string(state), snap.SVG, snap.CreatedAt.UnixMilli(),
	)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, chart, kind, title, state, svg, created_at
		FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return snap, err
}

func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Snapshot, error) {
	query := `SELECT id, chart, kind, title, state, NULL, created_at FROM snapshots`
	var args []any
	if opts.Chart != "" {
		query += ` WHERE chart = ?`
		args = append(args, opts.Chart)
	}
	query += ` ORDER BY created_at DESC, id ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanSnapshot(scan func(dest ...any) error) (*Snapshot, error) {
	var (
		snap    Snapshot
		title   sql.NullString
		state   string
		created int64
	)
	if err := scan(&snap.ID, &snap.Chart, &snap.Kind, &title, &state, &snap.SVG, &created); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &snap.State); err != nil {
		return nil, fmt.Errorf("snapshot %s state: %w", snap.ID, err)
	}
	snap.Title = title.String
	snap.CreatedAt = time.UnixMilli(created).UTC()
	return &snap, nil
}

var _ Store = (*SQLiteStore)(nil)
