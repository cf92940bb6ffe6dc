/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a design snapshot to portable formats: the JSON
// interchange document, SVG, PNG and a PDF report. Exporters work on a
// read-only Snapshot and never touch the live scene.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"topodraw/internal/domain"
	"topodraw/internal/routing"
	"topodraw/internal/vector"
)

// Padding is the world-space margin drawn around the node bounds.
const Padding = 200.0

// DefaultTitle is used when a snapshot has no title.
const DefaultTitle = "Architecture Diagram"

// ErrEmpty is returned by the drawing exporters when there are no nodes.
var ErrEmpty = errors.New("no nodes to export")

// Snapshot is the read-only input of every exporter.
type Snapshot struct {
	Title       string
	Nodes       []domain.Node
	Edges       []domain.Edge
	Viewport    vector.Viewport
	ColorLabels map[string]string
	Background  domain.Background
}

// FromDesign copies the exportable fields of d.
func FromDesign(d domain.Design) Snapshot {
	c := d.Clone()
	return Snapshot{
		Title:       c.Title,
		Nodes:       c.Nodes,
		Edges:       c.Edges,
		Viewport:    c.Viewport,
		ColorLabels: c.ColorLabels,
		Background:  c.Background,
	}
}

// Design converts the snapshot back to an (unsaved) design document.
func (s Snapshot) Design() domain.Design {
	return domain.Design{
		Title:       s.Title,
		Nodes:       s.Nodes,
		Edges:       s.Edges,
		ColorLabels: s.ColorLabels,
		Background:  s.Background,
		Viewport:    s.Viewport,
	}.Normalize()
}

// DisplayTitle is the snapshot title or DefaultTitle.
func (s Snapshot) DisplayTitle() string {
	if strings.TrimSpace(s.Title) == "" {
		return DefaultTitle
	}
	return s.Title
}

// FileName suggests an output file name for the given extension.
func (s Snapshot) FileName(ext string) string {
	name := strings.TrimSpace(s.Title)
	if name == "" {
		name = "design"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	return name + ext
}

// Options tune the drawing exporters. The zero value is usable.
type Options struct {
	// Ports resolves default edge labels; nil leaves auto labels empty.
	Ports routing.PortLookup
	// Scale is the PNG pixel density per world unit (default 2).
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 2
	}
	return o.Scale
}

// scene is the resolved drawing shared by all vector and raster exporters.
type scene struct {
	bounds vector.Rect
	nodes  []domain.Node
	routes []routing.Route
	edges  map[string]domain.Edge
}

func prepare(s Snapshot, ports routing.PortLookup) (scene, error) {
	if len(s.Nodes) == 0 {
		return scene{}, ErrEmpty
	}
	b := s.Nodes[0].Rect()
	for _, n := range s.Nodes[1:] {
		b = b.Union(n.Rect())
	}
	sc := scene{
		bounds: b.Inset(-Padding, -Padding),
		nodes:  s.Nodes,
		routes: routing.Routes(s.Nodes, s.Edges, ports),
		edges:  make(map[string]domain.Edge, len(s.Edges)),
	}
	for _, e := range s.Edges {
		sc.edges[e.ID] = e
	}
	return sc, nil
}

// Monogram abbreviates an icon name for the icon box: "CloudCog" -> "CC".
func Monogram(icon string) string {
	var out []rune
	for i, r := range icon {
		if i == 0 || unicode.IsUpper(r) {
			out = append(out, unicode.ToUpper(r))
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// arrowHead returns the triangle for an arrow marker whose tip is at tip,
// pointing away from from.
func arrowHead(tip, from vector.Pt, size float64) [3]vector.Pt {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		dx, dy, l = 1, 0, 1
	}
	ux, uy := dx/l, dy/l
	base := vector.Pt{X: tip.X - ux*size, Y: tip.Y - uy*size}
	half := size * 0.5
	return [3]vector.Pt{
		tip,
		{X: base.X - uy*half, Y: base.Y + ux*half},
		{X: base.X + uy*half, Y: base.Y - ux*half},
	}
}

// markerSize scales markers with the stroke width.
func markerSize(width float64) float64 { return max(8, width*4) }

// ends returns the first and last segments of a path for marker placement.
func ends(p vector.Path) (start, startFrom, end, endFrom vector.Pt, ok bool) {
	pts := p.Points()
	if len(pts) < 2 {
		return
	}
	return pts[0], pts[1], pts[len(pts)-1], pts[len(pts)-2], true
}

func colorOf(hex string) vector.Color {
	if c, ok := vector.ParseHex(hex); ok {
		return c
	}
	return vector.MustHex(domain.DefaultColor)
}

// resolveOut makes a relative path absolute against the working directory
// and ensures its directory exists.
func resolveOut(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("output path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	return abs, nil
}
