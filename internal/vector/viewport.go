/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Zoom limits and steps for the canvas viewport.
const (
	MinZoom       = 0.1
	MaxZoom       = 5.0
	WheelZoomStep = 0.1
	ZoomInFactor  = 1.2
	ZoomOutFactor = 0.8
)

// Viewport is the pan offset (in screen pixels) and uniform zoom of the
// canvas. Canvas-local coordinates are screen coordinates minus the canvas
// origin; world = (local - pan) / k.
type Viewport struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// DefaultViewport is the reset state {0,0,1}.
func DefaultViewport() Viewport { return Viewport{K: 1} }

// Normalize repairs a zero or out-of-range scale.
func (v Viewport) Normalize() Viewport {
	if v.K <= 0 {
		v.K = 1
	}
	v.K = ClampZoom(v.K)
	return v
}

// ClampZoom limits k to [MinZoom, MaxZoom].
func ClampZoom(k float64) float64 { return clamp(k, MinZoom, MaxZoom) }

// Matrix maps world coordinates to canvas-local coordinates.
func (v Viewport) Matrix() Affine2D { return Translate(v.X, v.Y).Mul(Scale(v.K, v.K)) }

// ScreenToWorld converts a screen point given the canvas origin on screen.
func (v Viewport) ScreenToWorld(origin, s Pt) Pt {
	return Pt{(s.X - origin.X - v.X) / v.K, (s.Y - origin.Y - v.Y) / v.K}
}

// WorldToScreen is the inverse of ScreenToWorld.
func (v Viewport) WorldToScreen(origin, w Pt) Pt {
	return Pt{w.X*v.K + v.X + origin.X, w.Y*v.K + v.Y + origin.Y}
}

// ZoomAt sets the scale to k (clamped) keeping the world point under the
// canvas-local anchor fixed.
func (v Viewport) ZoomAt(k float64, anchor Pt) Viewport {
	k = ClampZoom(k)
	f := k / v.K
	return Viewport{
		X: anchor.X - (anchor.X-v.X)*f,
		Y: anchor.Y - (anchor.Y-v.Y)*f,
		K: k,
	}
}

// ZoomBy multiplies the scale by factor around anchor.
func (v Viewport) ZoomBy(factor float64, anchor Pt) Viewport { return v.ZoomAt(v.K*factor, anchor) }

// Pan shifts the offset by d screen pixels.
func (v Viewport) Pan(d Pt) Viewport {
	v.X += d.X
	v.Y += d.Y
	return v
}

// Wheel applies a wheel event at the canvas-local point. With the zoom
// modifier held each notch scales by WheelZoomStep around the cursor (scroll
// down zooms out); otherwise the raw delta scrolls the canvas.
func (v Viewport) Wheel(delta, local Pt, zoom bool) Viewport {
	if !zoom {
		return v.Pan(Pt{-delta.X, -delta.Y})
	}
	if delta.Y == 0 {
		return v
	}
	dir := 1.0
	if delta.Y > 0 {
		dir = -1
	}
	return v.ZoomBy(1+dir*WheelZoomStep, local)
}

// ZoomIn scales by ZoomInFactor around the canvas centre.
func (v Viewport) ZoomIn(canvas Size) Viewport { return v.ZoomBy(ZoomInFactor, canvas.Center()) }

// ZoomOut scales by ZoomOutFactor around the canvas centre.
func (v Viewport) ZoomOut(canvas Size) Viewport { return v.ZoomBy(ZoomOutFactor, canvas.Center()) }
