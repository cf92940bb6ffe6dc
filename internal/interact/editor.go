/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer and keyboard input into edits of an open
// design. An Editor owns the Scene, the viewport and the active gesture;
// renderers read it through Frame.
package interact

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"topodraw/internal/domain"
	applog "topodraw/internal/log"
	"topodraw/internal/routing"
	"topodraw/internal/scene"
	"topodraw/internal/undo"
	"topodraw/internal/vector"
)

// Editor is the interaction state machine for one open design. It is not
// safe for concurrent use; call it from the UI goroutine only.
type Editor struct {
	scene   *scene.Scene
	meta    domain.Design
	view    vector.Viewport
	origin  vector.Pt
	canvas  vector.Size
	tool    Tool
	mode    Mode
	pointer vector.Pt
	hoverID string

	ports    routing.PortLookup
	history  *undo.Manager
	log      *slog.Logger
	onChange func()
	before   []byte
}

// Option configures an Editor.
type Option func(*Editor)

// WithPorts sets the lookup used for default edge labels.
func WithPorts(p routing.PortLookup) Option { return func(e *Editor) { e.ports = p } }

// WithHistory shares an undo manager, e.g. across tabs.
func WithHistory(h *undo.Manager) Option { return func(e *Editor) { e.history = h } }

func WithLogger(l *slog.Logger) Option { return func(e *Editor) { e.log = l } }

// WithScene replaces the scene, mostly to inject a deterministic id generator.
func WithScene(s *scene.Scene) Option { return func(e *Editor) { e.scene = s } }

// OnChange registers a callback fired after every committed edit.
func OnChange(fn func()) Option { return func(e *Editor) { e.onChange = fn } }

// New opens d for editing.
func New(d domain.Design, opts ...Option) *Editor {
	e := &Editor{mode: Idle{}, tool: ToolSelect}
	for _, o := range opts {
		o(e)
	}
	if e.scene == nil {
		e.scene = scene.New()
	}
	if e.history == nil {
		e.history = undo.NewManager(undo.DefaultConfig())
	}
	if e.log == nil {
		e.log = applog.WithComponent("interact")
	}
	e.Load(d)
	return e
}

// Load replaces the open design. History for the previous design id is kept.
func (e *Editor) Load(d domain.Design) {
	d = d.Normalize()
	e.scene.Load(d.Nodes, d.Edges)
	e.view = d.Viewport
	d.Nodes, d.Edges = nil, nil
	e.meta = d
	e.mode = Idle{}
	e.before = nil
	e.hoverID = ""
}

// Design returns a snapshot of the open design including the current viewport.
func (e *Editor) Design() domain.Design {
	meta := e.meta
	meta.Viewport = e.view
	return e.scene.Design(meta)
}

func (e *Editor) Scene() *scene.Scene { return e.scene }

func (e *Editor) Mode() Mode { return e.mode }

func (e *Editor) Tool() Tool { return e.tool }

// SetTool switches the persistent tool. It has no effect mid-gesture.
func (e *Editor) SetTool(t Tool) {
	if _, idle := e.mode.(Idle); idle {
		e.tool = t
	}
}

func (e *Editor) Viewport() vector.Viewport { return e.view }

// SetCanvas records where the canvas sits on screen and how large it is.
func (e *Editor) SetCanvas(origin vector.Pt, size vector.Size) {
	e.origin, e.canvas = origin, size
}

// ToWorld converts a screen point to world coordinates.
func (e *Editor) ToWorld(screen vector.Pt) vector.Pt { return e.view.ScreenToWorld(e.origin, screen) }

// PointerDown starts a gesture. Presses while another gesture is active are ignored.
func (e *Editor) PointerDown(ev PointerEvent) {
	if _, idle := e.mode.(Idle); !idle {
		return
	}
	w := e.ToWorld(ev.Screen)
	e.pointer = w
	if ev.Button == ButtonMiddle || e.tool == ToolPan {
		e.mode = Panning{StartScreen: ev.Screen, StartView: e.view}
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	hit := e.HitTest(w)
	switch hit.Kind {
	case HitEndpoint:
		e.begin()
		e.mode = DraggingEdgeEndpoint{EdgeID: hit.ID, End: hit.End, Pointer: w}
	case HitResize:
		e.scene.Select(scene.KindNode, hit.ID)
		e.begin()
		e.mode = ResizingNode{NodeID: hit.ID}
	case HitLabel:
		e.scene.Select(scene.KindEdge, hit.ID)
		e.begin()
		e.mode = DraggingEdgeLabel{EdgeID: hit.ID, LastWorld: w}
	case HitEdge:
		e.scene.Select(scene.KindEdge, hit.ID)
	case HitNode:
		e.pressNode(hit.ID, w, ev.Mods)
	default:
		if e.tool != ToolSelect {
			return
		}
		if !ev.Mods.Toggle() {
			e.scene.ClearSelection()
		}
		e.mode = MarqueeSelecting{Start: w, Current: w}
	}
}

func (e *Editor) pressNode(id string, w vector.Pt, mods Modifiers) {
	switch {
	case e.tool == ToolConnect:
		e.begin()
		e.mode = Connecting{SourceID: id, Pointer: w}
	case mods.Toggle():
		e.scene.ToggleMulti(id)
	case e.scene.InMulti(id):
		e.begin()
		e.mode = DraggingNodes{IDs: e.scene.MultiIDs(), LastWorld: w}
	default:
		n, _ := e.scene.Node(id)
		e.scene.Select(scene.KindNode, id)
		e.begin()
		e.mode = DraggingNode{NodeID: id, StartWorld: w, StartPos: vector.Pt{X: n.X, Y: n.Y}}
	}
}

// PointerMove advances the active gesture and refreshes hover state.
func (e *Editor) PointerMove(screen vector.Pt) {
	if m, ok := e.mode.(Panning); ok {
		e.view = m.StartView.Pan(screen.Sub(m.StartScreen))
		e.pointer = e.ToWorld(screen)
		return
	}
	w := e.ToWorld(screen)
	e.pointer = w
	e.hoverID = ""
	if n, ok := e.scene.TopmostAt(w); ok {
		e.hoverID = n.ID
	}

	switch m := e.mode.(type) {
	case MarqueeSelecting:
		m.Current = w
		e.mode = m
	case DraggingNode:
		pos := m.StartPos.Add(w.Sub(m.StartWorld))
		e.scene.MoveNode(m.NodeID, vector.SnapPt(pos))
	case DraggingNodes:
		e.scene.TranslateNodes(m.IDs, w.Sub(m.LastWorld))
		m.LastWorld = w
		e.mode = m
	case ResizingNode:
		e.scene.UpdateNode(m.NodeID, func(n *domain.Node) {
			n.W = max(domain.MinNodeSize, w.X-n.X)
			n.H = max(domain.MinNodeSize, w.Y-n.Y)
		})
	case Connecting:
		m.Pointer, m.Hover = w, e.hoverAt(w)
		e.mode = m
	case DraggingEdgeEndpoint:
		m.Pointer, m.Hover = w, e.hoverAt(w)
		e.mode = m
	case DraggingEdgeLabel:
		d := w.Sub(m.LastWorld)
		e.scene.UpdateEdge(m.EdgeID, func(ed *domain.Edge) {
			ed.LabelOffsetX += d.X
			ed.LabelOffsetY += d.Y
		})
		m.LastWorld = w
		e.mode = m
	}
}

// hoverAt finds the topmost node under w and snaps w onto its geometry.
func (e *Editor) hoverAt(w vector.Pt) Hover {
	n, ok := e.scene.TopmostAt(w)
	if !ok {
		return Hover{}
	}
	return Hover{NodeID: n.ID, Snap: routing.Geometry(n).ClosestSideAndRatio(w)}
}

// PointerUp ends the active gesture, committing its effect when the commit
// condition holds, and returns to Idle. Losing pointer capture should be
// reported the same way.
func (e *Editor) PointerUp() {
	switch m := e.mode.(type) {
	case MarqueeSelecting:
		e.scene.AddToMulti(e.scene.NodesOverlapping(m.Rect())...)
	case DraggingNodes:
		e.scene.SnapNodes(m.IDs)
	case Connecting:
		if m.Hover.NodeID != "" && m.Hover.NodeID != m.SourceID {
			ed := domain.NewEdge(e.scene.NewID(), m.SourceID, m.Hover.NodeID)
			ed.TargetSide = m.Hover.Snap.Side
			ed.TargetRatio = domain.Ratio(m.Hover.Snap.Ratio)
			e.scene.AddEdge(ed)
			e.log.Debug("edge created", slog.String("edge", ed.ID), slog.String("source", ed.Source), slog.String("target", ed.Target))
		}
	case DraggingEdgeEndpoint:
		e.repoint(m)
	}
	e.mode = Idle{}
	e.commit()
}

func (e *Editor) repoint(m DraggingEdgeEndpoint) {
	ed, ok := e.scene.Edge(m.EdgeID)
	if !ok || m.Hover.NodeID == "" {
		return
	}
	other := ed.Target
	if m.End == EndTarget {
		other = ed.Source
	}
	if m.Hover.NodeID == other {
		return
	}
	e.scene.UpdateEdge(m.EdgeID, func(ed *domain.Edge) {
		if m.End == EndSource {
			ed.Source, ed.SourceSide, ed.SourceRatio = m.Hover.NodeID, m.Hover.Snap.Side, domain.Ratio(m.Hover.Snap.Ratio)
			return
		}
		ed.Target, ed.TargetSide, ed.TargetRatio = m.Hover.NodeID, m.Hover.Snap.Side, domain.Ratio(m.Hover.Snap.Ratio)
	})
	e.log.Debug("edge endpoint moved", slog.String("edge", m.EdgeID), slog.String("end", m.End.String()), slog.String("node", m.Hover.NodeID))
}

// Wheel handles a wheel event at a screen point. Ctrl or Cmd zooms around
// the cursor; otherwise the canvas scrolls.
func (e *Editor) Wheel(delta, screen vector.Pt, mods Modifiers) {
	e.view = e.view.Wheel(delta, screen.Sub(e.origin), mods.Command())
}

func (e *Editor) ZoomIn()    { e.view = e.view.ZoomIn(e.canvas) }
func (e *Editor) ZoomOut()   { e.view = e.view.ZoomOut(e.canvas) }
func (e *Editor) ResetZoom() { e.view = vector.DefaultViewport() }

// begin records the scene state a gesture or action starts from.
func (e *Editor) begin() { e.before = e.state() }

// commit pushes the recorded state onto the undo stack if the scene changed since begin.
func (e *Editor) commit() {
	before := e.before
	e.before = nil
	if before == nil {
		return
	}
	if bytes.Equal(before, e.state()) {
		return
	}
	e.history.PushSnapshot(undo.Snapshot{DesignID: e.meta.ID, Blob: before})
	if e.onChange != nil {
		e.onChange()
	}
}

// sceneState is the undoable part of a design.
type sceneState struct {
	Nodes       []domain.Node     `json:"nodes"`
	Edges       []domain.Edge     `json:"edges"`
	ColorLabels map[string]string `json:"colorLabels,omitempty"`
}

func (e *Editor) state() []byte {
	b, err := json.Marshal(sceneState{Nodes: e.scene.Nodes(), Edges: e.scene.Edges(), ColorLabels: e.meta.ColorLabels})
	if err != nil {
		// Only plain data is marshalled; this cannot fail in practice.
		e.log.Error("scene snapshot failed", slog.Any("err", err))
		return nil
	}
	return b
}

func (e *Editor) restore(blob []byte) bool {
	var st sceneState
	if err := json.Unmarshal(blob, &st); err != nil {
		e.log.Error("undo snapshot unreadable", slog.Any("err", err))
		return false
	}
	e.scene.Load(st.Nodes, st.Edges)
	if st.ColorLabels == nil {
		st.ColorLabels = map[string]string{}
	}
	e.meta.ColorLabels = st.ColorLabels
	return true
}
