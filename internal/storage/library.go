/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"topodraw/internal/domain"
	applog "topodraw/internal/log"
	"topodraw/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// LibraryFileName is the default database name inside the library directory.
	LibraryFileName = "library.sqlite"

	// schemaVersion tracks the library schema. Bump it and add a step to
	// runMigrations for every schema change.
	schemaVersion = 2

	// DefaultHistoryLimit is how many saved snapshots are kept per design.
	DefaultHistoryLimit = 20

	tsLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrNotFound is returned when a design or snapshot id does not exist.
var ErrNotFound = errors.New("not found")

// Store is the design library contract shared by the local SQLite library
// and the remote backend client.
type Store interface {
	List(ctx context.Context) ([]domain.Summary, error)
	Get(ctx context.Context, id string) (domain.Design, error)
	Create(ctx context.Context, title string) (domain.Design, error)
	Save(ctx context.Context, d domain.Design) (domain.Design, error)
	Rename(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

// Library is the local design library.
type Library struct {
	db      *sql.DB
	path    string
	keep    int
	now     func() time.Time
	newID   func() string
	log     *slog.Logger
}

var _ Store = (*Library)(nil)

// LibraryOption configures a Library.
type LibraryOption func(*Library)

// WithHistoryLimit sets how many snapshots are kept per design (<=0 keeps all).
func WithHistoryLimit(n int) LibraryOption { return func(l *Library) { l.keep = n } }

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) LibraryOption { return func(l *Library) { l.now = now } }

// WithIDs overrides the design id generator.
func WithIDs(gen func() string) LibraryOption { return func(l *Library) { l.newID = gen } }

// DefaultLibraryPath returns <user config dir>/topodraw/library.sqlite.
func DefaultLibraryPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "topodraw", LibraryFileName), nil
}

// OpenLibrary creates or opens the library database at path, enables WAL
// mode and brings the schema up to date.
func OpenLibrary(path string, opts ...LibraryOption) (*Library, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "library_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("library path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create library dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureLibrarySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure library schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	lib := &Library{db: db, path: path, keep: DefaultHistoryLimit, now: time.Now, newID: domain.NewID, log: applog.WithComponent("storage")}
	for _, o := range opts {
		o(lib)
	}
	l.Info("library ready")
	return lib, nil
}

// Close releases the database.
func (l *Library) Close() error { return l.db.Close() }

// Path is the database file location.
func (l *Library) Path() string { return l.path }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema so runMigrations can upgrade it.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureLibrarySchema creates the v1 tables when missing.
func ensureLibrarySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS designs (
			id          TEXT    PRIMARY KEY,
			title       TEXT    NOT NULL,
			body        TEXT    NOT NULL,
			node_count  INTEGER NOT NULL DEFAULT 0,
			edge_count  INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT    NOT NULL,
			updated_at  TEXT    NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS design_snapshots (
			id         INTEGER PRIMARY KEY,
			design_id  TEXT    NOT NULL REFERENCES designs(id) ON DELETE CASCADE,
			ts         TEXT    NOT NULL,
			body       BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_design_snapshots_design ON design_snapshots(design_id, id);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure library schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Written by a newer build; never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_designs_updated ON designs(updated_at DESC);`,
				`CREATE INDEX IF NOT EXISTS idx_designs_title ON designs(title COLLATE NOCASE);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		}
		cur = next
	}
	return nil
}

// language=SQL
// dialect=SQLite
const listDesignsSQL = `SELECT id, title, node_count, edge_count, updated_at FROM designs ORDER BY updated_at DESC, id`

// language=SQL
// dialect=SQLite
const selectDesignSQL = `SELECT body, created_at, updated_at FROM designs WHERE id = ?`

// language=SQL
// dialect=SQLite
const insertDesignSQL = `INSERT INTO designs(id, title, body, node_count, edge_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const updateDesignSQL = `UPDATE designs SET title = ?, body = ?, node_count = ?, edge_count = ?, updated_at = ? WHERE id = ?`

// List returns all designs, most recently updated first.
func (l *Library) List(ctx context.Context) ([]domain.Summary, error) {
	rows, err := l.db.QueryContext(ctx, listDesignsSQL)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []domain.Summary{}
	for rows.Next() {
		var s domain.Summary
		var ts string
		if err := rows.Scan(&s.ID, &s.Title, &s.Nodes, &s.Edges, &ts); err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		s.UpdatedAt = parseTS(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Get loads a design. Missing collections in the stored body default to empty.
func (l *Library) Get(ctx context.Context, id string) (domain.Design, error) {
	var body, created, updated string
	err := l.db.QueryRowContext(ctx, selectDesignSQL, id).Scan(&body, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("load design %s: %w", id, err)
	}
	var d domain.Design
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return domain.Design{}, fmt.Errorf("decode design %s: %w", id, err)
	}
	d.ID = id
	d.CreatedAt, d.UpdatedAt = parseTS(created), parseTS(updated)
	return d.Normalize(), nil
}

// Create inserts an empty design with the reset viewport.
func (l *Library) Create(ctx context.Context, title string) (domain.Design, error) {
	d := domain.NewDesign(strings.TrimSpace(title))
	return l.insert(ctx, d)
}

// Save stores d. A design without an id is inserted as a new design;
// otherwise the existing row is updated (ErrNotFound if it is gone). Every
// save records a history snapshot and prunes the oldest beyond the limit.
func (l *Library) Save(ctx context.Context, d domain.Design) (domain.Design, error) {
	d = d.Normalize()
	if d.ID == "" {
		return l.insert(ctx, d)
	}
	ts := l.now().UTC()
	d.UpdatedAt = ts
	body, err := encodeBody(d)
	if err != nil {
		return domain.Design{}, err
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Design{}, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var created string
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM designs WHERE id = ?`, d.ID).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("design %s: %w", d.ID, ErrNotFound)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("load design %s: %w", d.ID, err)
	}
	d.CreatedAt = parseTS(created)
	if _, err := tx.ExecContext(ctx, updateDesignSQL, d.Title, body, len(d.Nodes), len(d.Edges), ts.Format(tsLayout), d.ID); err != nil {
		return domain.Design{}, fmt.Errorf("update design %s: %w", d.ID, err)
	}
	if err := l.recordSnapshot(ctx, tx, d.ID, ts, body); err != nil {
		return domain.Design{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Design{}, fmt.Errorf("commit save: %w", err)
	}
	l.log.Debug("design saved", slog.String("design", d.ID), slog.Int("nodes", len(d.Nodes)), slog.Int("edges", len(d.Edges)))
	return d, nil
}

func (l *Library) insert(ctx context.Context, d domain.Design) (domain.Design, error) {
	ts := l.now().UTC()
	d.ID = l.newID()
	d.CreatedAt, d.UpdatedAt = ts, ts
	body, err := encodeBody(d)
	if err != nil {
		return domain.Design{}, err
	}
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Design{}, fmt.Errorf("begin create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	stamp := ts.Format(tsLayout)
	if _, err := tx.ExecContext(ctx, insertDesignSQL, d.ID, d.Title, body, len(d.Nodes), len(d.Edges), stamp, stamp); err != nil {
		return domain.Design{}, fmt.Errorf("insert design: %w", err)
	}
	if err := l.recordSnapshot(ctx, tx, d.ID, ts, body); err != nil {
		return domain.Design{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Design{}, fmt.Errorf("commit create: %w", err)
	}
	l.log.Info("design created", slog.String("design", d.ID), slog.String("title", d.Title))
	return d, nil
}

// Rename changes only the title.
func (l *Library) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	d, err := l.Get(ctx, id)
	if err != nil {
		return err
	}
	d.Title = title
	_, err = l.Save(ctx, d)
	return err
}

// Delete removes a design and its history.
func (l *Library) Delete(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM designs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete design %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	// Snapshots cascade through the foreign key; clear explicitly in case
	// foreign keys are disabled on this connection.
	if _, err := l.db.ExecContext(ctx, `DELETE FROM design_snapshots WHERE design_id = ?`, id); err != nil {
		return fmt.Errorf("delete history %s: %w", id, err)
	}
	l.log.Info("design deleted", slog.String("design", id))
	return nil
}

// encodeBody stores everything but the id and timestamps, which live in columns.
func encodeBody(d domain.Design) (string, error) {
	d.ID = ""
	d.CreatedAt, d.UpdatedAt = time.Time{}, time.Time{}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode design: %w", err)
	}
	return string(b), nil
}

func parseTS(s string) time.Time {
	if t, err := time.Parse(tsLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
