/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the persisted data model of a topology design: typed
// nodes placed on the canvas, the connectors between them and the document
// that carries both together with the viewport.

import (
	"maps"
	"slices"
	"time"

	"topodraw/internal/vector"
)

// Sizes and defaults applied when nodes and edges are created.
const (
	ZoneType = "zone"

	NodeWidth  = 120.0
	NodeHeight = 96.0
	ZoneWidth  = 300.0
	ZoneHeight = 200.0

	// MinNodeSize bounds resize gestures: two grid units.
	MinNodeSize = 2 * vector.GridSize
	// DuplicateOffset displaces clones in both axes.
	DuplicateOffset = vector.GridSize

	DefaultColor     = "#64748b"
	DefaultOpacity   = 0.1
	DefaultEdgeWidth = 2.0
	DefaultTitle     = "Untitled Design"
)

// Marker decorates an edge end.
type Marker string

const (
	MarkerNone   Marker = "none"
	MarkerArrow  Marker = "arrow"
	MarkerCircle Marker = "circle"
)

// Valid reports whether m is a known marker kind.
func (m Marker) Valid() bool { return m == MarkerNone || m == MarkerArrow || m == MarkerCircle }

// Background is the canvas pattern drawn behind the scene.
type Background string

const (
	BackgroundDots   Background = "dots"
	BackgroundGrid   Background = "grid"
	BackgroundPixels Background = "pixels"
	BackgroundClear  Background = "clear"
)

// Node is a placed stencil. (X,Y) is the world-space top-left corner.
type Node struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	W           float64 `json:"w"`
	H           float64 `json:"h"`
	Icon        string  `json:"icon,omitempty"`
	CustomColor string  `json:"customColor,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
}

// IsZone reports whether n is a container region rather than a pictogram.
func (n Node) IsZone() bool { return n.Type == ZoneType }

// Rect is the node's full bounding box.
func (n Node) Rect() vector.Rect { return vector.R(n.X, n.Y, n.W, n.H) }

// Color returns the custom colour or the default slate.
func (n Node) Color() string {
	if n.CustomColor == "" {
		return DefaultColor
	}
	return n.CustomColor
}

// Alpha returns the fill opacity; an unset opacity renders at DefaultOpacity.
func (n Node) Alpha() float64 {
	if n.Opacity == 0 {
		return DefaultOpacity
	}
	return n.Opacity
}

// Edge connects two nodes. An empty SourceSide/TargetSide leaves the anchor
// to be chosen at render time; nil ratios mean the side midpoint.
type Edge struct {
	ID           string      `json:"id"`
	Source       string      `json:"source"`
	Target       string      `json:"target"`
	Color        string      `json:"color"`
	Width        float64     `json:"width"`
	MarkerStart  Marker      `json:"markerStart"`
	MarkerEnd    Marker      `json:"markerEnd"`
	CustomLabel  string      `json:"customLabel,omitempty"`
	SourceSide   vector.Side `json:"sourceSide,omitempty"`
	SourceRatio  *float64    `json:"sourceRatio,omitempty"`
	TargetSide   vector.Side `json:"targetSide,omitempty"`
	TargetRatio  *float64    `json:"targetRatio,omitempty"`
	LabelOffsetX float64     `json:"labelOffsetX,omitempty"`
	LabelOffsetY float64     `json:"labelOffsetY,omitempty"`
}

// NewEdge returns an edge with the connect-gesture defaults: slate, width 2,
// arrow at the target only.
func NewEdge(id, source, target string) Edge {
	return Edge{
		ID:          id,
		Source:      source,
		Target:      target,
		Color:       DefaultColor,
		Width:       DefaultEdgeWidth,
		MarkerStart: MarkerNone,
		MarkerEnd:   MarkerArrow,
	}
}

// Touches reports whether the edge references node id at either end.
func (e Edge) Touches(id string) bool { return e.Source == id || e.Target == id }

// SourceAt returns the source anchor ratio, DefaultRatio when unset.
func (e Edge) SourceAt() float64 { return ratioOr(e.SourceRatio) }

// TargetAt returns the target anchor ratio, DefaultRatio when unset.
func (e Edge) TargetAt() float64 { return ratioOr(e.TargetRatio) }

// StrokeColor returns the edge colour or the default slate.
func (e Edge) StrokeColor() string {
	if e.Color == "" {
		return DefaultColor
	}
	return e.Color
}

// LabelOffset is the persisted displacement of the edge label.
func (e Edge) LabelOffset() vector.Pt { return vector.Pt{X: e.LabelOffsetX, Y: e.LabelOffsetY} }

// Ratio boxes v for the optional ratio fields.
func Ratio(v float64) *float64 { return &v }

func ratioOr(p *float64) float64 {
	if p == nil {
		return vector.DefaultRatio
	}
	return *p
}

// Design is the persisted document: scene content, colour legend names,
// background and viewport.
type Design struct {
	ID          string            `json:"id,omitempty"`
	Title       string            `json:"title"`
	Nodes       []Node            `json:"nodes"`
	Edges       []Edge            `json:"edges"`
	ColorLabels map[string]string `json:"colorLabels,omitempty"`
	Background  Background        `json:"background,omitempty"`
	Viewport    vector.Viewport   `json:"viewport"`
	CreatedAt   time.Time         `json:"createdAt,omitzero"`
	UpdatedAt   time.Time         `json:"updatedAt,omitzero"`
}

// NewDesign returns an empty design with the reset viewport.
func NewDesign(title string) Design {
	d := Design{Title: title}
	return d.Normalize()
}

// Normalize fills defaults for absent fields: empty collections, title,
// dots background and a usable viewport. It never drops content.
func (d Design) Normalize() Design {
	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	if d.ColorLabels == nil {
		d.ColorLabels = map[string]string{}
	}
	if d.Background == "" {
		d.Background = BackgroundDots
	}
	d.Viewport = d.Viewport.Normalize()
	for i := range d.Edges {
		e := &d.Edges[i]
		if e.Color == "" {
			e.Color = DefaultColor
		}
		if e.Width <= 0 {
			e.Width = DefaultEdgeWidth
		}
		if !e.MarkerStart.Valid() {
			e.MarkerStart = MarkerNone
		}
		if !e.MarkerEnd.Valid() {
			e.MarkerEnd = MarkerNone
		}
		if !e.SourceSide.Valid() {
			e.SourceSide = vector.SideNone
		}
		if !e.TargetSide.Valid() {
			e.TargetSide = vector.SideNone
		}
	}
	return d
}

// Clone returns a deep copy so snapshots never alias live collections.
func (d Design) Clone() Design {
	c := d
	c.Nodes = slices.Clone(d.Nodes)
	c.Edges = slices.Clone(d.Edges)
	for i := range c.Edges {
		c.Edges[i] = c.Edges[i].clone()
	}
	c.ColorLabels = maps.Clone(d.ColorLabels)
	return c
}

func (e Edge) clone() Edge {
	if e.SourceRatio != nil {
		e.SourceRatio = Ratio(*e.SourceRatio)
	}
	if e.TargetRatio != nil {
		e.TargetRatio = Ratio(*e.TargetRatio)
	}
	return e
}

// Clone returns a deep copy of e.
func (e Edge) Clone() Edge { return e.clone() }

// Summary is a library listing row.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
}

// Summarize returns the listing row for d.
func (d Design) Summarize() Summary {
	return Summary{ID: d.ID, Title: d.Title, UpdatedAt: d.UpdatedAt, Nodes: len(d.Nodes), Edges: len(d.Edges)}
}
