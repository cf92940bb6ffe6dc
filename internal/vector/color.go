/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA colour.
type Color struct{ R, G, B, A uint8 }

var (
	Black = Color{0, 0, 0, 255}
	White = Color{255, 255, 255, 255}
	// Slate is the fallback for nodes and edges without a colour (#64748b).
	Slate = Color{100, 116, 139, 255}
)

// ParseHex parses "#rrggbb" or "#rgb" (leading '#' optional). Unparseable
// input returns Slate and false.
func ParseHex(s string) (Color, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Slate, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Slate, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// MustHex is ParseHex without the ok flag.
func MustHex(s string) Color {
	c, _ := ParseHex(s)
	return c
}

// Hex formats c as "#rrggbb".
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// WithOpacity returns c with alpha set from a [0,1] opacity.
func (c Color) WithOpacity(o float64) Color {
	c.A = uint8(clamp(o, 0, 1)*255 + 0.5)
	return c
}

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// Tint blends c over white at opacity o, as a translucent fill appears on paper.
func (c Color) Tint(o float64) Color {
	o = clamp(o, 0, 1)
	mix := func(v uint8) uint8 { return uint8(float64(v)*o + 255*(1-o) + 0.5) }
	return Color{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: 255}
}
