/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestScreenToWorldRoundTrip(t *testing.T) {
	v := Viewport{X: 30, Y: -12, K: 1.5}
	origin := Pt{100, 50}
	s := Pt{400, 260}
	w := v.ScreenToWorld(origin, s)
	if want := (Pt{(400 - 100 - 30) / 1.5, (260 - 50 + 12) / 1.5}); !nearPt(w, want) {
		t.Fatalf("ScreenToWorld = %+v, want %+v", w, want)
	}
	if back := v.WorldToScreen(origin, w); !nearPt(back, s) {
		t.Fatalf("WorldToScreen = %+v, want %+v", back, s)
	}
	if m := v.Matrix().Apply(w).Add(origin); !nearPt(m, s) {
		t.Fatalf("Matrix disagrees with WorldToScreen: %+v", m)
	}
}

func TestZoomAtKeepsAnchor(t *testing.T) {
	origin := Pt{20, 40}
	anchor := Pt{333, 211}
	v := Viewport{X: -80, Y: 45, K: 0.9}
	before := v.ScreenToWorld(origin, anchor.Add(origin))
	for _, k := range []float64{0.5, 1, 2.5, 5, 8, 0.01} {
		z := v.ZoomAt(k, anchor)
		if after := z.ScreenToWorld(origin, anchor.Add(origin)); !nearPt(before, after) {
			t.Fatalf("ZoomAt(%v): world under anchor moved %+v -> %+v", k, before, after)
		}
	}
	if got := v.ZoomAt(8, anchor).K; got != MaxZoom {
		t.Fatalf("zoom not clamped to max: %v", got)
	}
	if got := v.ZoomAt(0.01, anchor).K; got != MinZoom {
		t.Fatalf("zoom not clamped to min: %v", got)
	}
}

func TestZoomButtonsScenario(t *testing.T) {
	canvas := Size{W: 800, H: 600}
	origin := Pt{0, 64}
	center := canvas.Center().Add(origin)
	v := DefaultViewport()
	want := v.ScreenToWorld(origin, center)

	v = v.ZoomIn(canvas)
	v = v.ZoomIn(canvas)
	v = v.ZoomOut(canvas)
	if math.Abs(v.K-1*1.2*1.2*0.8) > 1e-12 {
		t.Fatalf("k = %v, want %v", v.K, 1.2*1.2*0.8)
	}
	if got := v.ScreenToWorld(origin, center); !nearPt(got, want) {
		t.Fatalf("world under centre moved: %+v -> %+v", want, got)
	}
}

func TestZoomInClampsAtMax(t *testing.T) {
	v := Viewport{K: 4.5}
	v = v.ZoomIn(Size{W: 100, H: 100})
	if v.K != MaxZoom {
		t.Fatalf("k = %v, want %v", v.K, MaxZoom)
	}
}

func TestWheel(t *testing.T) {
	v := Viewport{X: 10, Y: 20, K: 1}
	local := Pt{50, 50}

	p := v.Wheel(Pt{3, -7}, local, false)
	if p != (Viewport{X: 7, Y: 27, K: 1}) {
		t.Fatalf("wheel pan = %+v", p)
	}

	in := v.Wheel(Pt{0, -120}, local, true)
	if !near(in.K, 1.1) {
		t.Fatalf("wheel up should zoom in by 10%%, k=%v", in.K)
	}
	out := v.Wheel(Pt{0, 120}, local, true)
	if !near(out.K, 0.9) {
		t.Fatalf("wheel down should zoom out by 10%%, k=%v", out.K)
	}
	if w0, w1 := v.ScreenToWorld(Pt{}, local), out.ScreenToWorld(Pt{}, local); !nearPt(w0, w1) {
		t.Fatalf("wheel zoom moved cursor world point %+v -> %+v", w0, w1)
	}
	if still := v.Wheel(Pt{5, 0}, local, true); still != v {
		t.Fatalf("horizontal-only wheel with zoom modifier should not change viewport: %+v", still)
	}
}

func TestViewportNormalize(t *testing.T) {
	if got := (Viewport{X: 5}).Normalize(); got != (Viewport{X: 5, K: 1}) {
		t.Fatalf("Normalize zero k = %+v", got)
	}
	if got := (Viewport{K: 12}).Normalize(); got.K != MaxZoom {
		t.Fatalf("Normalize large k = %+v", got)
	}
	if DefaultViewport() != (Viewport{K: 1}) {
		t.Fatal("DefaultViewport mismatch")
	}
}
