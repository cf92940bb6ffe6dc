/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// GridSize is the world-space grid unit node positions snap to.
const GridSize = 24.0

// SnapToGrid rounds v to the nearest multiple of GridSize; halves round up.
func SnapToGrid(v float64) float64 { return math.Floor(v/GridSize+0.5) * GridSize }

// SnapPt snaps both coordinates of p.
func SnapPt(p Pt) Pt { return Pt{SnapToGrid(p.X), SnapToGrid(p.Y)} }

// Snap is a continuous anchor position: a border and the fraction along it.
type Snap struct {
	Side  Side
	Ratio float64
}

// ClosestSideAndRatio finds the border line of b nearest to p. Distances are
// measured to the infinite border lines; exact ties resolve in Sides order.
// The ratio is p projected onto that border, clamped to [0,1].
func (b Box) ClosestSideAndRatio(p Pt) Snap {
	left, right := b.CX-b.W/2, b.CX+b.W/2
	top, bottom := b.CY-b.H/2, b.CY+b.H/2
	dist := [4]float64{
		math.Abs(p.Y - top),
		math.Abs(p.Y - bottom),
		math.Abs(p.X - left),
		math.Abs(p.X - right),
	}
	best := 0
	for i := 1; i < len(dist); i++ {
		if dist[i] < dist[best] {
			best = i
		}
	}
	side := Sides[best]
	if side.Horizontal() {
		return Snap{Side: side, Ratio: fraction(p.Y-top, b.H)}
	}
	return Snap{Side: side, Ratio: fraction(p.X-left, b.W)}
}

func fraction(off, length float64) float64 {
	if length <= 0 {
		return DefaultRatio
	}
	return clamp(off/length, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
