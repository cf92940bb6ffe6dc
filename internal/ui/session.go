/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"topodraw/internal/catalog"
	"topodraw/internal/crash"
	"topodraw/internal/domain"
	"topodraw/internal/export"
	"topodraw/internal/interact"
	applog "topodraw/internal/log"
	"topodraw/internal/scene"
	"topodraw/internal/storage"
	"topodraw/internal/telemetry"
)

// Options configures Run.
type Options struct {
	Store storage.Store
	// DesignID opens an existing design; empty creates a new one.
	DesignID string
	Catalog  *catalog.Catalog
	// BackupDir receives crash reports and autosaves.
	BackupDir string
}

// Session ties one open design to its store. The editor owns the scene; the
// session only reads snapshots from it.
type Session struct {
	store storage.Store
	cat   *catalog.Catalog
	ed    *interact.Editor
	dirty bool
	log   *slog.Logger
}

// OpenSession loads id from store, or creates a fresh design when id is empty.
func OpenSession(ctx context.Context, store storage.Store, id string, cat *catalog.Catalog) (*Session, error) {
	if store == nil {
		return nil, errors.New("ui: store is required")
	}
	if cat == nil {
		cat = catalog.Default()
	}
	var (
		d   domain.Design
		err error
	)
	if strings.TrimSpace(id) == "" {
		d, err = store.Create(ctx, "")
		telemetry.Event(telemetry.EventDesignCreated, nil)
	} else {
		d, err = store.Get(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s := &Session{store: store, cat: cat, log: applog.WithComponent("ui")}
	s.ed = interact.New(d, interact.WithPorts(cat), interact.OnChange(func() { s.dirty = true }))
	return s, nil
}

func (s *Session) Editor() *interact.Editor { return s.ed }

func (s *Session) Catalog() *catalog.Catalog { return s.cat }

// Dirty reports unsaved edits.
func (s *Session) Dirty() bool { return s.dirty }

// Title is the display title of the open design.
func (s *Session) Title() string { return export.FromDesign(s.ed.Design()).DisplayTitle() }

// Rename changes the title in the editor; it is persisted by the next Save.
func (s *Session) Rename(title string) {
	s.ed.SetTitle(title)
	s.dirty = true
}

// SetBackground switches the canvas pattern.
func (s *Session) SetBackground(b domain.Background) {
	s.ed.SetBackground(b)
	s.dirty = true
}

// Place drops a palette item in the middle of the canvas.
func (s *Session) Place(st catalog.Stencil) domain.Node {
	n := s.ed.PlaceStencil(st)
	s.dirty = true
	return n
}

// Save writes the design back to the store.
func (s *Session) Save(ctx context.Context) error {
	d := s.ed.Design()
	saved, err := s.store.Save(applog.ContextWithDesign(ctx, d.ID), d)
	if err != nil {
		return fmt.Errorf("save design: %w", err)
	}
	s.dirty = false
	s.log.Info("design saved", slog.String("id", saved.ID), slog.Int("nodes", len(saved.Nodes)), slog.Int("edges", len(saved.Edges)))
	telemetry.Event(telemetry.EventDesignSaved, map[string]any{"nodes": len(saved.Nodes), "edges": len(saved.Edges)})
	return nil
}

// Export formats understood by Export.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Export writes the open design into dir using the title-derived file name
// and returns the written path.
func (s *Session) Export(format, dir string) (string, error) {
	snap := export.FromDesign(s.ed.Design())
	opt := export.Options{Ports: s.cat}
	path := filepath.Join(dir, snap.FileName("."+format))
	var err error
	switch format {
	case FormatJSON:
		err = export.WriteJSON(snap, path)
	case FormatSVG:
		err = export.WriteSVG(snap, path, opt)
	case FormatPNG:
		err = export.WritePNG(snap, path, opt)
	case FormatPDF:
		err = export.WritePDF(snap, path, opt)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}
	telemetry.Export(format, len(snap.Nodes), len(snap.Edges))
	return path, nil
}

// CopyJSON puts the design JSON on the clipboard.
func (s *Session) CopyJSON() error { return export.CopyJSON(export.FromDesign(s.ed.Design())) }

// CrashTarget lets crash.Recover autosave the open design into dir.
func (s *Session) CrashTarget(dir string) *crash.Target {
	return &crash.Target{Dir: dir, Design: func() (domain.Design, bool) {
		if s == nil || s.ed == nil {
			return domain.Design{}, false
		}
		return s.ed.Design(), true
	}}
}

// Status is the one-line summary shown under the canvas.
func (s *Session) Status() string {
	e := s.ed
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %d nodes, %d edges | %.0f%%", e.Tool(), e.Scene().NodeCount(), e.Scene().EdgeCount(), e.Viewport().K*100)
	switch sel := e.Scene().Selection().(type) {
	case scene.Single:
		fmt.Fprintf(&b, " | %s selected", sel.Kind)
	case scene.Multi:
		fmt.Fprintf(&b, " | %d nodes selected", len(sel.IDs))
	}
	if m := interact.ModeName(e.Mode()); m != "idle" {
		fmt.Fprintf(&b, " | %s", m)
	}
	if s.dirty {
		b.WriteString(" | unsaved")
	}
	return b.String()
}
