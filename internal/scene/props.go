/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

// NodePatch lists node properties to change; nil fields are left alone.
type NodePatch struct {
	Label       *string
	Icon        *string
	CustomColor *string
	Opacity     *float64
}

// EdgePatch lists edge properties to change; nil fields are left alone.
type EdgePatch struct {
	CustomLabel *string
	Color       *string
	Width       *float64
	MarkerStart *domain.Marker
	MarkerEnd   *domain.Marker
}

// PatchSelectedNodes applies p to the selected node. For a multi-selection
// only colour and opacity apply, to every member. It returns how many nodes
// changed.
func (s *Scene) PatchSelectedNodes(p NodePatch) int {
	switch sel := s.sel.(type) {
	case Single:
		if sel.Kind != KindNode {
			return 0
		}
		if s.UpdateNode(sel.ID, func(n *domain.Node) { applyNode(n, p, true) }) {
			return 1
		}
	case Multi:
		count := 0
		for _, id := range sel.IDs {
			if s.UpdateNode(id, func(n *domain.Node) { applyNode(n, p, false) }) {
				count++
			}
		}
		return count
	}
	return 0
}

func applyNode(n *domain.Node, p NodePatch, all bool) {
	if p.CustomColor != nil {
		n.CustomColor = *p.CustomColor
	}
	if p.Opacity != nil {
		n.Opacity = math.Max(0, math.Min(1, *p.Opacity))
	}
	if !all {
		return
	}
	if p.Label != nil {
		n.Label = *p.Label
	}
	if p.Icon != nil {
		n.Icon = *p.Icon
	}
}

// PatchSelectedEdge applies p to the selected edge.
func (s *Scene) PatchSelectedEdge(p EdgePatch) bool {
	sel, ok := s.sel.(Single)
	if !ok || sel.Kind != KindEdge {
		return false
	}
	return s.UpdateEdge(sel.ID, func(e *domain.Edge) {
		if p.CustomLabel != nil {
			e.CustomLabel = *p.CustomLabel
		}
		if p.Color != nil {
			e.Color = *p.Color
		}
		if p.Width != nil && *p.Width > 0 {
			e.Width = *p.Width
		}
		if p.MarkerStart != nil && p.MarkerStart.Valid() {
			e.MarkerStart = *p.MarkerStart
		}
		if p.MarkerEnd != nil && p.MarkerEnd.Valid() {
			e.MarkerEnd = *p.MarkerEnd
		}
	})
}

// ResetEdgeRouting unpins both ends and clears the label offset so the edge
// routes automatically again.
func (s *Scene) ResetEdgeRouting(id string) bool {
	return s.UpdateEdge(id, func(e *domain.Edge) {
		e.SourceSide, e.TargetSide = vector.SideNone, vector.SideNone
		e.SourceRatio, e.TargetRatio = nil, nil
		e.LabelOffsetX, e.LabelOffsetY = 0, 0
	})
}

// SwapEdgeDirection exchanges source and target together with their pinned
// anchors and end markers.
func (s *Scene) SwapEdgeDirection(id string) bool {
	return s.UpdateEdge(id, func(e *domain.Edge) {
		e.Source, e.Target = e.Target, e.Source
		e.SourceSide, e.TargetSide = e.TargetSide, e.SourceSide
		e.SourceRatio, e.TargetRatio = e.TargetRatio, e.SourceRatio
		e.MarkerStart, e.MarkerEnd = e.MarkerEnd, e.MarkerStart
	})
}
