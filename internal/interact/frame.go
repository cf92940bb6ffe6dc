/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"topodraw/internal/domain"
	"topodraw/internal/routing"
	"topodraw/internal/scene"
	"topodraw/internal/vector"
)

// NodeView is one node as the renderer should draw it.
type NodeView struct {
	Node     domain.Node
	Geometry vector.Box
	Selected bool
	Hovered  bool
	// Resize is the handle rectangle; zero unless the node is selected.
	Resize vector.Rect
}

// EdgeView is one routed connector. Preview edges are being re-pointed and
// are drawn as a dashed straight line without markers, label or handles.
type EdgeView struct {
	routing.Route
	Color       string
	Width       float64
	MarkerStart domain.Marker
	MarkerEnd   domain.Marker
	Selected    bool
	Preview     bool
	LabelRect   vector.Rect
	Handles     []vector.Pt
}

// Frame is everything needed to paint the canvas once. World coordinates
// throughout; Viewport maps them to the canvas.
type Frame struct {
	Viewport   vector.Viewport
	Background domain.Background
	Nodes      []NodeView
	Edges      []EdgeView
	// Marquee is non-nil while a rubber band is being dragged.
	Marquee *vector.Rect
	// Pending is the dashed line of a connect gesture.
	Pending *vector.Path
	// Snap marks the anchor a connect or endpoint gesture would commit to.
	Snap *vector.Pt
}

// Frame derives the current drawing from the scene. It never mutates state.
func (e *Editor) Frame() Frame {
	f := Frame{Viewport: e.view, Background: e.meta.Background}
	nodes := e.scene.Nodes()
	ix := routing.NewIndex(nodes)

	for _, n := range nodes {
		v := NodeView{Node: n, Geometry: routing.Geometry(n), Selected: e.scene.IsSelected(n.ID), Hovered: n.ID == e.hoverID}
		if v.Selected {
			v.Resize = ResizeHandle(n)
		}
		f.Nodes = append(f.Nodes, v)
	}

	var selEdge string
	if sel, ok := e.scene.Selection().(scene.Single); ok && sel.Kind == scene.KindEdge {
		selEdge = sel.ID
	}
	moving, _ := e.mode.(DraggingEdgeEndpoint)

	for _, ed := range e.scene.Edges() {
		src, dst, ok := ix.Ends(ed)
		if !ok {
			continue
		}
		v := EdgeView{
			Color:       ed.StrokeColor(),
			Width:       ed.Width,
			MarkerStart: ed.MarkerStart,
			MarkerEnd:   ed.MarkerEnd,
			Selected:    ed.ID == selEdge,
		}
		if moving.EdgeID != "" && moving.EdgeID == ed.ID {
			v.Route = e.previewRoute(ed, src, dst, moving)
			v.Preview = true
			f.Edges = append(f.Edges, v)
			continue
		}
		v.Route = routing.RouteEdge(ed, src, dst, e.ports)
		if v.Label != "" {
			v.LabelRect = routing.LabelBox(v.Label, v.LabelAt)
		}
		if v.Selected {
			v.Handles = []vector.Pt{v.Start, v.End}
		}
		f.Edges = append(f.Edges, v)
	}

	switch m := e.mode.(type) {
	case MarqueeSelecting:
		r := m.Rect()
		f.Marquee = &r
	case Connecting:
		if src, ok := ix[m.SourceID]; ok {
			p := vector.Polyline(routing.Geometry(src).Center(), m.Pointer)
			f.Pending = &p
		}
		f.Snap = e.snapPoint(m.Hover, ix)
	case DraggingEdgeEndpoint:
		f.Snap = e.snapPoint(m.Hover, ix)
	}
	return f
}

// previewRoute draws an edge being re-pointed as a straight segment from the
// fixed end's geometry centre to the pointer, or to the snapped anchor when
// hovering a node.
func (e *Editor) previewRoute(ed domain.Edge, src, dst domain.Node, m DraggingEdgeEndpoint) routing.Route {
	fixed := dst
	if m.End == EndTarget {
		fixed = src
	}
	anchor := routing.Geometry(fixed).Center()
	free := m.Pointer
	if n, ok := e.scene.Node(m.Hover.NodeID); ok {
		free = routing.PointOnSide(n, m.Hover.Snap.Side, m.Hover.Snap.Ratio)
	}
	r := routing.Route{EdgeID: ed.ID, Start: free, End: anchor}
	if m.End == EndTarget {
		r.Start, r.End = anchor, free
	}
	r.Path = vector.Polyline(r.Start, r.End)
	return r
}

func (e *Editor) snapPoint(h Hover, ix routing.Index) *vector.Pt {
	n, ok := ix[h.NodeID]
	if !ok {
		return nil
	}
	p := routing.PointOnSide(n, h.Snap.Side, h.Snap.Ratio)
	return &p
}
