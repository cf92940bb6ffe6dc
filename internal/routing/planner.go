/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package routing derives connector geometry from node geometry: the
// interactive box of each node, the anchor pair an edge attaches to, the
// orthogonal path between those anchors and where the edge label sits.
// Everything here is a pure function of its inputs.
package routing

import (
	"math"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

const (
	// Pictogram nodes route to a square icon box of min(w,h)*IconBoxFactor,
	// IconBoxInset below the node's top edge.
	IconBoxFactor = 0.4
	IconBoxInset  = 12.0
	// CollinearThreshold is the axis offset below which a connector is drawn straight.
	CollinearThreshold = 10.0
)

// Geometry returns the box connectors attach to. Zones use their full
// bounds; pictogram nodes use the icon box centred near their top.
func Geometry(n domain.Node) vector.Box {
	if n.IsZone() {
		return vector.Box{CX: n.X + n.W/2, CY: n.Y + n.H/2, W: n.W, H: n.H}
	}
	side := math.Min(n.W, n.H) * IconBoxFactor
	return vector.Box{CX: n.X + n.W/2, CY: n.Y + IconBoxInset + side/2, W: side, H: side}
}

// PointOnSide returns the point at ratio along side s of the node geometry.
func PointOnSide(n domain.Node, s vector.Side, ratio float64) vector.Pt {
	return Geometry(n).PointOnSide(s, ratio)
}

// Connection is a chosen anchor pair between two nodes.
type Connection struct {
	Start, End   vector.Pt
	SideA, SideB vector.Side
}

// BestConnection picks anchors for an edge from a to b. Pinned sides are
// kept; each free side is chosen to minimise the anchor distance, scanning
// vector.Sides in order and keeping the first minimum.
func BestConnection(a, b domain.Node, pinA, pinB vector.Side) Connection {
	ga, gb := Geometry(a), Geometry(b)
	switch {
	case pinA.Valid() && pinB.Valid():
		return Connection{Start: ga.Anchor(pinA), End: gb.Anchor(pinB), SideA: pinA, SideB: pinB}
	case pinA.Valid():
		start := ga.Anchor(pinA)
		sb := nearestSide(gb, start)
		return Connection{Start: start, End: gb.Anchor(sb), SideA: pinA, SideB: sb}
	case pinB.Valid():
		end := gb.Anchor(pinB)
		sa := nearestSide(ga, end)
		return Connection{Start: ga.Anchor(sa), End: end, SideA: sa, SideB: pinB}
	}

	best := Connection{Start: ga.Anchor(vector.Top), End: gb.Anchor(vector.Top), SideA: vector.Top, SideB: vector.Top}
	bestD := math.Inf(1)
	for _, sa := range vector.Sides {
		pa := ga.Anchor(sa)
		for _, sb := range vector.Sides {
			pb := gb.Anchor(sb)
			if d := pa.Dist(pb); d < bestD {
				bestD = d
				best = Connection{Start: pa, End: pb, SideA: sa, SideB: sb}
			}
		}
	}
	return best
}

func nearestSide(b vector.Box, to vector.Pt) vector.Side {
	best, bestD := vector.Top, math.Inf(1)
	for _, s := range vector.Sides {
		if d := b.Anchor(s).Dist(to); d < bestD {
			best, bestD = s, d
		}
	}
	return best
}

// OrthogonalPath synthesises the connector polyline from s to e.
//   - nearly aligned endpoints: one straight segment
//   - bottom/top pairs: down, across at the vertical midpoint, down
//   - right/left pairs: across, along at the horizontal midpoint, across
//   - anything else: a single elbow at (e.X, s.Y)
func OrthogonalPath(s, e vector.Pt, sa, sb vector.Side) vector.Path {
	if math.Abs(s.X-e.X) < CollinearThreshold || math.Abs(s.Y-e.Y) < CollinearThreshold {
		return vector.Polyline(s, e)
	}
	mx, my := (s.X+e.X)/2, (s.Y+e.Y)/2
	switch {
	case (sa == vector.Bottom && sb == vector.Top) || (sa == vector.Top && sb == vector.Bottom):
		return vector.Polyline(s, vector.Pt{X: s.X, Y: my}, vector.Pt{X: e.X, Y: my}, e)
	case (sa == vector.Right && sb == vector.Left) || (sa == vector.Left && sb == vector.Right):
		return vector.Polyline(s, vector.Pt{X: mx, Y: s.Y}, vector.Pt{X: mx, Y: e.Y}, e)
	}
	return vector.Polyline(s, vector.Pt{X: e.X, Y: s.Y}, e)
}

// LabelAnchor is where an edge label is centred: the horizontal midpoint at
// the start height when the edge leaves sideways, the segment midpoint
// otherwise, displaced by the persisted offset.
func LabelAnchor(s, e vector.Pt, sa vector.Side, offset vector.Pt) vector.Pt {
	at := vector.Pt{X: (s.X + e.X) / 2, Y: (s.Y + e.Y) / 2}
	if sa.Horizontal() {
		at.Y = s.Y
	}
	return at.Add(offset)
}
