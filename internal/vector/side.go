/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Side names one of the four cardinal borders of a Box.
type Side string

const (
	SideNone Side = ""
	Top      Side = "top"
	Bottom   Side = "bottom"
	Left     Side = "left"
	Right    Side = "right"
)

// Sides lists the borders in enumeration order. Searches that compare
// distances walk this order and keep the first minimum.
var Sides = [4]Side{Top, Bottom, Left, Right}

// DefaultRatio is the position along a side used when none is recorded.
const DefaultRatio = 0.5

// Valid reports whether s is one of the four borders.
func (s Side) Valid() bool {
	switch s {
	case Top, Bottom, Left, Right:
		return true
	}
	return false
}

// Horizontal reports whether a connector leaves s horizontally (left/right).
func (s Side) Horizontal() bool { return s == Left || s == Right }

// Opposite returns the facing border; SideNone for invalid sides.
func (s Side) Opposite() Side {
	switch s {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	case Right:
		return Left
	}
	return SideNone
}

// ParseSide converts free text into a Side.
func ParseSide(s string) (Side, bool) {
	v := Side(s)
	return v, v.Valid()
}

// Anchor returns the midpoint of border s, or the centre for an invalid side.
func (b Box) Anchor(s Side) Pt {
	switch s {
	case Top:
		return Pt{b.CX, b.CY - b.H/2}
	case Bottom:
		return Pt{b.CX, b.CY + b.H/2}
	case Left:
		return Pt{b.CX - b.W/2, b.CY}
	case Right:
		return Pt{b.CX + b.W/2, b.CY}
	}
	return b.Center()
}

// Anchors returns the four border midpoints in Sides order.
func (b Box) Anchors() [4]Pt {
	var out [4]Pt
	for i, s := range Sides {
		out[i] = b.Anchor(s)
	}
	return out
}

// PointOnSide interpolates along border s. Ratio 0 is the left end of
// top/bottom and the top end of left/right. An invalid side yields the centre.
func (b Box) PointOnSide(s Side, ratio float64) Pt {
	left, top := b.CX-b.W/2, b.CY-b.H/2
	switch s {
	case Top:
		return Pt{left + b.W*ratio, top}
	case Bottom:
		return Pt{left + b.W*ratio, b.CY + b.H/2}
	case Left:
		return Pt{left, top + b.H*ratio}
	case Right:
		return Pt{b.CX + b.W/2, top + b.H*ratio}
	}
	return b.Center()
}
