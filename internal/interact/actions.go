/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"log/slog"
	"maps"
	"strings"

	"topodraw/internal/catalog"
	"topodraw/internal/domain"
	"topodraw/internal/scene"
	"topodraw/internal/undo"
	"topodraw/internal/vector"
)

// Actions below are ignored while a pointer gesture is in progress.

func (e *Editor) idle() bool {
	_, ok := e.mode.(Idle)
	return ok
}

// edit runs fn as one undoable step.
func (e *Editor) edit(fn func()) {
	if !e.idle() {
		return
	}
	e.begin()
	fn()
	e.commit()
}

// DeleteSelection removes the selection with cascade semantics.
func (e *Editor) DeleteSelection() (removed bool) {
	e.edit(func() { removed = e.scene.DeleteSelection() })
	return removed
}

// Duplicate clones the selected nodes and selects the clones.
func (e *Editor) Duplicate() (ids []string) {
	e.edit(func() { ids = e.scene.DuplicateSelection() })
	if len(ids) > 0 {
		e.log.Debug("nodes duplicated", slog.Int("count", len(ids)))
	}
	return ids
}

// PlaceStencil adds a node for st centred on the middle of the canvas.
func (e *Editor) PlaceStencil(st catalog.Stencil) domain.Node {
	return e.placeAt(st, e.ToWorld(e.origin.Add(e.canvas.Center())))
}

// DropStencil adds a node for st centred on a screen drop position.
func (e *Editor) DropStencil(st catalog.Stencil, screen vector.Pt) domain.Node {
	return e.placeAt(st, e.ToWorld(screen))
}

func (e *Editor) placeAt(st catalog.Stencil, at vector.Pt) domain.Node {
	if !e.idle() {
		return domain.Node{}
	}
	w, h := st.Size()
	n := domain.Node{
		Type:        st.Type,
		Label:       st.Label,
		Icon:        st.Icon,
		X:           vector.SnapToGrid(at.X - w/2),
		Y:           vector.SnapToGrid(at.Y - h/2),
		W:           w,
		H:           h,
		CustomColor: st.Color(),
		Opacity:     domain.DefaultOpacity,
	}
	e.edit(func() { n = e.scene.AddNode(n) })
	e.log.Debug("node placed", slog.String("node", n.ID), slog.String("type", n.Type))
	return n
}

// UpdateNodes patches the selected node, or colour and opacity of a multi-selection.
func (e *Editor) UpdateNodes(p scene.NodePatch) (n int) {
	e.edit(func() { n = e.scene.PatchSelectedNodes(p) })
	return n
}

// UpdateEdge patches the selected edge.
func (e *Editor) UpdateEdge(p scene.EdgePatch) (ok bool) {
	e.edit(func() { ok = e.scene.PatchSelectedEdge(p) })
	return ok
}

// ResetEdgeRouting unpins the selected edge.
func (e *Editor) ResetEdgeRouting() (ok bool) {
	if id, isEdge := e.selectedEdge(); isEdge {
		e.edit(func() { ok = e.scene.ResetEdgeRouting(id) })
	}
	return ok
}

// SwapEdgeDirection reverses the selected edge.
func (e *Editor) SwapEdgeDirection() (ok bool) {
	if id, isEdge := e.selectedEdge(); isEdge {
		e.edit(func() { ok = e.scene.SwapEdgeDirection(id) })
	}
	return ok
}

func (e *Editor) selectedEdge() (string, bool) {
	sel, ok := e.scene.Selection().(scene.Single)
	return sel.ID, ok && sel.Kind == scene.KindEdge
}

// SetColorLabel names an edge colour in the colour legend. An empty text removes the name.
func (e *Editor) SetColorLabel(color, text string) {
	e.edit(func() {
		labels := maps.Clone(e.meta.ColorLabels)
		if labels == nil {
			labels = map[string]string{}
		}
		if text == "" {
			delete(labels, color)
		} else {
			labels[color] = text
		}
		e.meta.ColorLabels = labels
	})
}

func (e *Editor) SetTitle(title string) {
	if title = strings.TrimSpace(title); title != "" {
		e.meta.Title = title
	}
}

func (e *Editor) SetBackground(b domain.Background) { e.meta.Background = b }

// Undo restores the scene before the last committed edit and clears the selection.
func (e *Editor) Undo() bool {
	return e.travel(e.history.Undo)
}

// Redo re-applies the last undone edit.
func (e *Editor) Redo() bool {
	return e.travel(e.history.Redo)
}

func (e *Editor) travel(step func(string, []byte) (undo.Snapshot, bool)) bool {
	if !e.idle() {
		return false
	}
	snap, ok := step(e.meta.ID, e.state())
	if !ok || !e.restore(snap.Blob) {
		return false
	}
	if e.onChange != nil {
		e.onChange()
	}
	return true
}

func (e *Editor) CanUndo() bool { return e.history.CanUndo(e.meta.ID) }
func (e *Editor) CanRedo() bool { return e.history.CanRedo(e.meta.ID) }

// Key names understood by KeyDown.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
)

// KeyDown dispatches a keyboard shortcut and reports whether it was handled.
func (e *Editor) KeyDown(key string, mods Modifiers) bool {
	if key == KeyDelete || key == KeyBackspace {
		return e.DeleteSelection()
	}
	k := strings.ToLower(key)
	if mods.Command() {
		switch {
		case k == "d":
			return len(e.Duplicate()) > 0
		case k == "z" && mods&ModShift != 0, k == "y":
			return e.Redo()
		case k == "z":
			return e.Undo()
		}
		return false
	}
	if !e.idle() {
		return false
	}
	switch k {
	case "v":
		e.SetTool(ToolSelect)
	case "h":
		e.SetTool(ToolPan)
	case "c":
		e.SetTool(ToolConnect)
	default:
		return false
	}
	return true
}
