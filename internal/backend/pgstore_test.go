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
	"errors"
	"os"
	"testing"
	"time"

	"topodraw/internal/domain"
)

// openPGForTest connects to TDW_PG_DSN and skips when Postgres is unavailable.
func openPGForTest(t *testing.T) *PGStore {
	t.Helper()
	dsn := os.Getenv("TDW_PG_DSN")
	if dsn == "" {
		t.Skip("TDW_PG_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := OpenPG(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPGStoreLifecycle(t *testing.T) {
	s := openPGForTest(t)
	ctx := context.Background()

	d, err := s.Create(ctx, "PG design")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = s.Delete(context.Background(), d.ID) })

	d.Nodes = []domain.Node{{ID: "a", Type: "server", W: 120, H: 96}, {ID: "b", Type: "server", X: 300, W: 120, H: 96}}
	d.Edges = []domain.Edge{domain.NewEdge("e", "a", "b")}
	saved, err := s.Save(ctx, d)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.Before(saved.CreatedAt) {
		t.Fatalf("createdAt lost")
	}
	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("unexpected design: %+v", got)
	}
	if err := s.Rename(ctx, d.ID, "Renamed"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, sm := range list {
		if sm.ID == d.ID {
			found = sm.Title == "Renamed" && sm.Nodes == 2 && sm.Edges == 1
		}
	}
	if !found {
		t.Fatalf("renamed design not listed correctly: %+v", list)
	}
	if err := s.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGMigrationsIdempotent(t *testing.T) {
	s := openPGForTest(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n < 2 {
		t.Fatalf("expected recorded migrations, got %d", n)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int64
		wantErr bool
	}{
		{"0001_designs.sql", 1, false},
		{"migrations/0012_x.sql", 12, false},
		{"abc_x.sql", 0, true},
		{"nounderscore.sql", 0, true},
	}
	for _, tc := range tests {
		got, err := parseVersion(tc.name)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("parseVersion(%q) = %d, %v", tc.name, got, err)
		}
	}
}
