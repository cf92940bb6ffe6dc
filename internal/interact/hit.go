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

// Handle sizes in world units.
const (
	HandleRadius     = 4.0
	ResizeHandleSize = 10.0
	// EdgeHitWidth is how far from a connector a press still selects it.
	EdgeHitWidth = 10.0
)

// HitKind classifies what lies under a world point.
type HitKind uint8

const (
	HitCanvas HitKind = iota
	HitEndpoint
	HitResize
	HitLabel
	HitEdge
	HitNode
)

// Hit is the result of HitTest. End is meaningful for HitEndpoint only.
type Hit struct {
	Kind HitKind
	ID   string
	End  End
}

// ResizeHandle is the square at the bottom-right corner of a selected node.
func ResizeHandle(n domain.Node) vector.Rect {
	return vector.R(n.X+n.W-ResizeHandleSize, n.Y+n.H-ResizeHandleSize, ResizeHandleSize, ResizeHandleSize)
}

// HitTest resolves a world point in pointer priority order: endpoint
// handles of the selected edge, resize handles of selected nodes, label
// pills, connectors, then the topmost node.
func (e *Editor) HitTest(w vector.Pt) Hit {
	routes := e.routes()
	if sel, ok := e.scene.Selection().(scene.Single); ok && sel.Kind == scene.KindEdge {
		for _, r := range routes {
			if r.EdgeID != sel.ID {
				continue
			}
			if w.Dist(r.Start) <= HandleRadius {
				return Hit{Kind: HitEndpoint, ID: r.EdgeID, End: EndSource}
			}
			if w.Dist(r.End) <= HandleRadius {
				return Hit{Kind: HitEndpoint, ID: r.EdgeID, End: EndTarget}
			}
		}
	}

	nodes := e.scene.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if e.scene.IsSelected(nodes[i].ID) && ResizeHandle(nodes[i]).Contains(w) {
			return Hit{Kind: HitResize, ID: nodes[i].ID}
		}
	}
	for i := len(routes) - 1; i >= 0; i-- {
		if r := routes[i]; r.Label != "" && routing.LabelBox(r.Label, r.LabelAt).Contains(w) {
			return Hit{Kind: HitLabel, ID: r.EdgeID}
		}
	}
	for i := len(routes) - 1; i >= 0; i-- {
		if routes[i].Path.Distance(w) <= EdgeHitWidth {
			return Hit{Kind: HitEdge, ID: routes[i].EdgeID}
		}
	}
	if n, ok := e.scene.TopmostAt(w); ok {
		return Hit{Kind: HitNode, ID: n.ID}
	}
	return Hit{}
}

// NodeAt exposes the painter's-order pick to input handling.
func (e *Editor) NodeAt(w vector.Pt) (domain.Node, bool) { return e.scene.TopmostAt(w) }

func (e *Editor) routes() []routing.Route {
	return routing.Routes(e.scene.Nodes(), e.scene.Edges(), e.ports)
}
