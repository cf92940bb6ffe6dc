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
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// TestMigrations_UpgradeV1ToV2 ensures a schema=1 library gains the listing indexes.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), LibraryFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE IF NOT EXISTS designs (id TEXT PRIMARY KEY, title TEXT NOT NULL, body TEXT NOT NULL, node_count INTEGER NOT NULL DEFAULT 0, edge_count INTEGER NOT NULL DEFAULT 0, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO designs VALUES ('old', 'Legacy', '{"title":"Legacy","nodes":[],"edges":[]}', 0, 0, '2020-01-01T00:00:00.000000000Z', '2020-01-01T00:00:00.000000000Z');`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	lib, err := OpenLibrary(path)
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	defer lib.Close()
	var schema int
	if err := lib.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("expected schema %d after migration, got %d", schemaVersion, schema)
	}
	var cnt int
	if err := lib.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_designs_updated','idx_designs_title')`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected listing indexes after migration, got %d", cnt)
	}
	d, err := lib.Get(ctx, "old")
	if err != nil || d.Title != "Legacy" {
		t.Fatalf("legacy design lost: %+v, %v", d, err)
	}
	// The history table is created for old libraries too.
	if _, err := lib.Snapshots(ctx, "old", 5); err != nil {
		t.Fatalf("Snapshots on migrated library: %v", err)
	}
}

func TestMigrations_NewerSchemaIsLeftAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), LibraryFileName)
	lib, err := OpenLibrary(path)
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	if _, err := lib.db.Exec(`UPDATE version SET schema=99 WHERE id=1`); err != nil {
		t.Fatalf("bump schema: %v", err)
	}
	_ = lib.Close()

	lib, err = OpenLibrary(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer lib.Close()
	var schema int
	_ = lib.db.QueryRow(`SELECT schema FROM version WHERE id=1`).Scan(&schema)
	if schema != 99 {
		t.Fatalf("schema must not be downgraded, got %d", schema)
	}
}
