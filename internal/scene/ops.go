/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"slices"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

// Selection returns the current selection.
func (s *Scene) Selection() Selection {
	if m, ok := s.sel.(Multi); ok {
		return Multi{IDs: slices.Clone(m.IDs)}
	}
	return s.sel
}

// ClearSelection selects nothing.
func (s *Scene) ClearSelection() { s.sel = None{} }

// Select makes id the single selection. Unknown ids clear the selection.
func (s *Scene) Select(k Kind, id string) {
	if _, ok := s.lookup(k, id); !ok {
		s.sel = None{}
		return
	}
	s.sel = Single{ID: id, Kind: k}
}

// MultiIDs returns the multi-selected node ids, empty unless the selection is Multi.
func (s *Scene) MultiIDs() []string {
	if m, ok := s.sel.(Multi); ok {
		return slices.Clone(m.IDs)
	}
	return nil
}

// InMulti reports whether id belongs to the multi-selection.
func (s *Scene) InMulti(id string) bool {
	m, ok := s.sel.(Multi)
	return ok && m.Contains(id)
}

// IsSelected reports whether id is selected either singly or as part of a set.
func (s *Scene) IsSelected(id string) bool {
	switch sel := s.sel.(type) {
	case Single:
		return sel.ID == id
	case Multi:
		return sel.Contains(id)
	}
	return false
}

// ToggleMulti flips id's membership in the multi-selection. A single
// selection is dropped in favour of the set.
func (s *Scene) ToggleMulti(id string) {
	if _, ok := s.nodeAt[id]; !ok {
		return
	}
	ids := s.MultiIDs()
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, id)
	}
	s.sel = multiOf(ids)
}

// AddToMulti unions ids into the multi-selection. With no ids the selection
// is untouched; otherwise any single selection is replaced by the set.
func (s *Scene) AddToMulti(ids ...string) {
	if len(ids) == 0 {
		return
	}
	cur := s.MultiIDs()
	for _, id := range ids {
		if _, ok := s.nodeAt[id]; ok && !slices.Contains(cur, id) {
			cur = append(cur, id)
		}
	}
	s.sel = multiOf(cur)
}

// DeleteSelection removes what is selected: a node set or single node with
// every edge touching it, or a single edge alone. It reports whether
// anything was removed.
func (s *Scene) DeleteSelection() bool {
	switch sel := s.sel.(type) {
	case Multi:
		n, _ := s.RemoveNodes(sel.IDs...)
		s.sel = None{}
		return n > 0
	case Single:
		s.sel = None{}
		if sel.Kind == KindEdge {
			return s.RemoveEdge(sel.ID)
		}
		n, _ := s.RemoveNodes(sel.ID)
		return n > 0
	}
	return false
}

// DuplicateSelection clones the selected nodes with fresh ids, offset by
// DuplicateOffset on both axes, appends them on top and selects the clones
// as a set. Edges are never duplicated. An edge or empty selection is a no-op.
func (s *Scene) DuplicateSelection() []string {
	var src []string
	switch sel := s.sel.(type) {
	case Single:
		if sel.Kind != KindNode {
			return nil
		}
		src = []string{sel.ID}
	case Multi:
		src = sel.IDs
	default:
		return nil
	}
	var clones []string
	for _, id := range src {
		n, ok := s.Node(id)
		if !ok {
			continue
		}
		n.ID = s.newID()
		n.X += domain.DuplicateOffset
		n.Y += domain.DuplicateOffset
		s.AddNode(n)
		clones = append(clones, n.ID)
	}
	s.sel = multiOf(slices.Clone(clones))
	return clones
}

// MoveNode sets the top-left corner of a node.
func (s *Scene) MoveNode(id string, p vector.Pt) bool {
	return s.UpdateNode(id, func(n *domain.Node) { n.X, n.Y = p.X, p.Y })
}

// TranslateNodes shifts each listed node by d without snapping.
func (s *Scene) TranslateNodes(ids []string, d vector.Pt) {
	for _, id := range ids {
		s.UpdateNode(id, func(n *domain.Node) { n.X += d.X; n.Y += d.Y })
	}
}

// SnapNodes rounds each listed node's position to the grid.
func (s *Scene) SnapNodes(ids []string) {
	for _, id := range ids {
		s.UpdateNode(id, func(n *domain.Node) { n.X, n.Y = vector.SnapToGrid(n.X), vector.SnapToGrid(n.Y) })
	}
}
