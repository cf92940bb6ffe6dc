/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"topodraw/internal/domain"
	applog "topodraw/internal/log"
	"topodraw/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is the storage sentinel, re-exported for callers of the
// backend package.
var ErrNotFound = storage.ErrNotFound

// PGStore is the shared design library in Postgres.
type PGStore struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

var _ storage.Store = (*PGStore)(nil)

// OpenPG connects to dsn, verifies the connection and applies migrations.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := NewPGStore(db)
	if err := s.migrate(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewPGStore wraps an open database without migrating it.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db, now: time.Now, newID: domain.NewID, log: applog.WithComponent("backend")}
}

// Close releases the pool.
func (s *PGStore) Close() error { return s.db.Close() }

// Ping reports database reachability for readiness probes.
func (s *PGStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// migrate applies embedded SQL migrations in filename order and records
// each applied version.
func (s *PGStore) migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		s.log.Info("applying migration", slog.String("file", fname))
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES ($1, $2)`, version, fname); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", fname, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) < 2 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}

// List returns all designs, most recently updated first.
func (s *PGStore) List(ctx context.Context) ([]domain.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, node_count, edge_count, updated_at FROM designs ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []domain.Summary{}
	for rows.Next() {
		var d domain.Summary
		if err := rows.Scan(&d.ID, &d.Title, &d.Nodes, &d.Edges, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get loads one design.
func (s *PGStore) Get(ctx context.Context, id string) (domain.Design, error) {
	var body []byte
	var created, updated time.Time
	err := s.db.QueryRowContext(ctx, `SELECT body, created_at, updated_at FROM designs WHERE id = $1`, id).Scan(&body, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("load design %s: %w", id, err)
	}
	var d domain.Design
	if err := json.Unmarshal(body, &d); err != nil {
		return domain.Design{}, fmt.Errorf("decode design %s: %w", id, err)
	}
	d.ID, d.CreatedAt, d.UpdatedAt = id, created.UTC(), updated.UTC()
	return d.Normalize(), nil
}

// Create inserts an empty design.
func (s *PGStore) Create(ctx context.Context, title string) (domain.Design, error) {
	return s.insert(ctx, domain.NewDesign(strings.TrimSpace(title)))
}

// Save inserts a design without id, otherwise updates it in place.
func (s *PGStore) Save(ctx context.Context, d domain.Design) (domain.Design, error) {
	d = d.Normalize()
	if d.ID == "" {
		return s.insert(ctx, d)
	}
	d.UpdatedAt = s.now().UTC()
	body, err := encodeBody(d)
	if err != nil {
		return domain.Design{}, err
	}
	err = s.db.QueryRowContext(ctx,
		`UPDATE designs SET title = $1, body = $2, node_count = $3, edge_count = $4, updated_at = $5 WHERE id = $6 RETURNING created_at`,
		d.Title, body, len(d.Nodes), len(d.Edges), d.UpdatedAt, d.ID).Scan(&d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("design %s: %w", d.ID, ErrNotFound)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("update design %s: %w", d.ID, err)
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return d, nil
}

func (s *PGStore) insert(ctx context.Context, d domain.Design) (domain.Design, error) {
	ts := s.now().UTC()
	d.ID = s.newID()
	d.CreatedAt, d.UpdatedAt = ts, ts
	body, err := encodeBody(d)
	if err != nil {
		return domain.Design{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO designs(id, title, body, node_count, edge_count, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $6)`,
		d.ID, d.Title, body, len(d.Nodes), len(d.Edges), ts); err != nil {
		return domain.Design{}, fmt.Errorf("insert design: %w", err)
	}
	s.log.Info("design created", slog.String("design", d.ID))
	return d, nil
}

// Rename changes only the title.
func (s *PGStore) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	d, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	d.Title = title
	_, err = s.Save(ctx, d)
	return err
}

// Delete removes a design.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete design %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("design %s: %w", id, ErrNotFound)
	}
	return nil
}

func encodeBody(d domain.Design) (string, error) {
	d.ID = ""
	d.CreatedAt, d.UpdatedAt = time.Time{}, time.Time{}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode design: %w", err)
	}
	return string(b), nil
}
