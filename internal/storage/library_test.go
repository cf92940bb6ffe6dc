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
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"topodraw/internal/domain"
)

// tick returns a clock advancing one second per call.
func tick() func() time.Time {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Second)
	}
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("d%d", n)
	}
}

func openTestLibrary(t *testing.T, opts ...LibraryOption) *Library {
	t.Helper()
	opts = append([]LibraryOption{WithClock(tick()), WithIDs(seqIDs())}, opts...)
	lib, err := OpenLibrary(filepath.Join(t.TempDir(), "lib", LibraryFileName), opts...)
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestCreateAndGet(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	d, err := lib.Create(ctx, "  Office LAN ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.ID != "d1" || d.Title != "Office LAN" {
		t.Fatalf("unexpected design: %+v", d)
	}
	if d.Viewport != (domain.NewDesign("").Viewport) {
		t.Fatalf("viewport not reset: %+v", d.Viewport)
	}
	got, err := lib.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Office LAN" || len(got.Nodes) != 0 || got.Nodes == nil || got.Edges == nil {
		t.Fatalf("unexpected loaded design: %+v", got)
	}
	if !got.CreatedAt.Equal(d.CreatedAt) {
		t.Fatalf("createdAt mismatch: %v vs %v", got.CreatedAt, d.CreatedAt)
	}
}

func TestCreateEmptyTitleGetsDefault(t *testing.T) {
	lib := openTestLibrary(t)
	d, err := lib.Create(context.Background(), "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Title != domain.DefaultTitle {
		t.Fatalf("expected default title, got %q", d.Title)
	}
}

func TestGetMissing(t *testing.T) {
	lib := openTestLibrary(t)
	if _, err := lib.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDefaultsMissingCollections(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	_, err := lib.db.ExecContext(ctx, insertDesignSQL, "raw", "Raw", `{"title":"Raw"}`, 0, 0,
		"2025-01-01T00:00:00.000000000Z", "2025-01-01T00:00:00.000000000Z")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	d, err := lib.Get(ctx, "raw")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Nodes == nil || d.Edges == nil || len(d.Nodes) != 0 || len(d.Edges) != 0 {
		t.Fatalf("expected empty collections, got %+v", d)
	}
	if d.UpdatedAt.Year() != 2025 {
		t.Fatalf("updatedAt not parsed: %v", d.UpdatedAt)
	}
}

func TestSaveKeepsCreatedAt(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	d, err := lib.Create(ctx, "Plant")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	d.Nodes = append(d.Nodes, domain.Node{ID: "n1", Type: "server", Label: "DB", X: 24, Y: 48, W: 120, H: 96})
	d.Nodes = append(d.Nodes, domain.Node{ID: "n2", Type: "server", Label: "App", X: 300, W: 120, H: 96})
	d.Edges = append(d.Edges, domain.NewEdge("e1", "n1", "n2"))
	d.CreatedAt = time.Time{}
	saved, err := lib.Save(ctx, d)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !saved.UpdatedAt.After(saved.CreatedAt) {
		t.Fatalf("updatedAt should advance: created=%v updated=%v", saved.CreatedAt, saved.UpdatedAt)
	}
	got, err := lib.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 || got.Nodes[0].Label != "DB" {
		t.Fatalf("content not persisted: %+v", got)
	}
	if !got.UpdatedAt.Equal(saved.UpdatedAt) || !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("timestamps mismatch: %+v vs %+v", got, saved)
	}
}

func TestSaveWithoutIDInserts(t *testing.T) {
	lib := openTestLibrary(t)
	d, err := lib.Save(context.Background(), domain.Design{Title: "Imported"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if d.ID == "" {
		t.Fatalf("expected a fresh id")
	}
	list, _ := lib.List(context.Background())
	if len(list) != 1 || list[0].Title != "Imported" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestSaveUnknownID(t *testing.T) {
	lib := openTestLibrary(t)
	_, err := lib.Save(context.Background(), domain.Design{ID: "ghost", Title: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	a, _ := lib.Create(ctx, "A")
	if _, err := lib.Create(ctx, "B"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	a.Nodes = []domain.Node{{ID: "n", Type: "server", W: 120, H: 96}}
	if _, err := lib.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	list, err := lib.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Title != "A" || list[1].Title != "B" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if list[0].Nodes != 1 || list[0].Edges != 0 {
		t.Fatalf("unexpected counts: %+v", list[0])
	}
}

func TestRenameAndDelete(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	d, _ := lib.Create(ctx, "Old")
	if err := lib.Rename(ctx, d.ID, "New"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	got, _ := lib.Get(ctx, d.ID)
	if got.Title != "New" {
		t.Fatalf("title not renamed: %q", got.Title)
	}
	if err := lib.Rename(ctx, d.ID, "   "); err == nil {
		t.Fatalf("expected error for blank title")
	}
	if err := lib.Rename(ctx, "ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := lib.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := lib.Get(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := lib.Delete(ctx, d.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	snaps, err := lib.Snapshots(ctx, d.ID, 0)
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("history should be gone, got %d", len(snaps))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), LibraryFileName)
	lib, err := OpenLibrary(path)
	if err != nil {
		t.Fatalf("OpenLibrary: %v", err)
	}
	d, err := lib.Create(context.Background(), "Persisted")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = lib.Close()

	lib2, err := OpenLibrary(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer lib2.Close()
	got, err := lib2.Get(context.Background(), d.ID)
	if err != nil || got.Title != "Persisted" {
		t.Fatalf("Get after reopen: %+v, %v", got, err)
	}
}

func TestOpenLibraryRequiresPath(t *testing.T) {
	if _, err := OpenLibrary("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
