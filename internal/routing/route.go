/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package routing

import (
	"strings"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

// Label pill metrics in world units.
const (
	labelCharWidth  = 5.5
	labelLineHeight = 12.0
	labelPadding    = 6.0
)

// PortLookup resolves the default label for a connection between two node types.
type PortLookup interface {
	PortInfo(sourceType, targetType string) string
}

// Route is the render-ready geometry of one edge.
type Route struct {
	EdgeID       string
	Start, End   vector.Pt
	SideA, SideB vector.Side
	Path         vector.Path
	Label        string
	LabelAt      vector.Pt
}

// LabelText returns the custom label, else the port lookup result, else "".
func LabelText(e domain.Edge, src, dst domain.Node, ports PortLookup) string {
	if e.CustomLabel != "" {
		return e.CustomLabel
	}
	if ports == nil {
		return ""
	}
	return ports.PortInfo(src.Type, dst.Type)
}

// RouteEdge resolves anchors, path and label for e between src and dst.
// Pinned sides are honoured; recorded ratios position the endpoints along
// whichever side ends up chosen.
func RouteEdge(e domain.Edge, src, dst domain.Node, ports PortLookup) Route {
	c := BestConnection(src, dst, e.SourceSide, e.TargetSide)
	s := PointOnSide(src, c.SideA, e.SourceAt())
	t := PointOnSide(dst, c.SideB, e.TargetAt())
	return Route{
		EdgeID:  e.ID,
		Start:   s,
		End:     t,
		SideA:   c.SideA,
		SideB:   c.SideB,
		Path:    OrthogonalPath(s, t, c.SideA, c.SideB),
		Label:   LabelText(e, src, dst, ports),
		LabelAt: LabelAnchor(s, t, c.SideA, e.LabelOffset()),
	}
}

// Index maps node ids to nodes.
type Index map[string]domain.Node

// NewIndex builds an Index over nodes.
func NewIndex(nodes []domain.Node) Index {
	ix := make(Index, len(nodes))
	for _, n := range nodes {
		ix[n.ID] = n
	}
	return ix
}

// Ends returns both endpoint nodes; ok is false for a dangling edge.
func (ix Index) Ends(e domain.Edge) (src, dst domain.Node, ok bool) {
	src, okS := ix[e.Source]
	dst, okT := ix[e.Target]
	return src, dst, okS && okT
}

// Routes routes every edge whose endpoints both exist, in edge order.
// Dangling edges are skipped.
func Routes(nodes []domain.Node, edges []domain.Edge, ports PortLookup) []Route {
	ix := NewIndex(nodes)
	out := make([]Route, 0, len(edges))
	for _, e := range edges {
		src, dst, ok := ix.Ends(e)
		if !ok {
			continue
		}
		out = append(out, RouteEdge(e, src, dst, ports))
	}
	return out
}

// LabelLines splits a label into display lines at '/' separators.
func LabelLines(label string) []string {
	if label == "" {
		return nil
	}
	parts := strings.Split(label, "/")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// LabelBox is the label pill centred on at; it is also the label's hit area.
func LabelBox(label string, at vector.Pt) vector.Rect {
	lines := LabelLines(label)
	maxChars := 0
	for _, l := range lines {
		maxChars = max(maxChars, len([]rune(l)))
	}
	w := float64(maxChars)*labelCharWidth + 2*labelPadding
	h := float64(len(lines))*labelLineHeight + labelPadding
	return vector.R(at.X-w/2, at.Y-h/2, w, h)
}
