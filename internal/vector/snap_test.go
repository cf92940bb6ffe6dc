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
	"math"
	"testing"
)

func TestSnapToGrid(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{11.9, 0},
		{12, 24},
		{35, 24},
		{36, 48},
		{-11, 0},
		{-12, 0},
		{-13, -24},
		{1000.4, 1008},
	}
	for _, tc := range cases {
		if got := SnapToGrid(tc.in); got != tc.want {
			t.Errorf("SnapToGrid(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSnapToGridIdempotent(t *testing.T) {
	for v := -500.0; v <= 500; v += 0.37 {
		once := SnapToGrid(v)
		if twice := SnapToGrid(once); twice != once {
			t.Fatalf("SnapToGrid not idempotent at %v: %v then %v", v, once, twice)
		}
		if math.Mod(once, GridSize) != 0 {
			t.Fatalf("SnapToGrid(%v) = %v is not on the grid", v, once)
		}
	}
}

func TestAnchorsAndPointOnSide(t *testing.T) {
	b := Box{CX: 50, CY: 40, W: 20, H: 10}
	want := [4]Pt{{50, 35}, {50, 45}, {40, 40}, {60, 40}}
	if got := b.Anchors(); got != want {
		t.Fatalf("Anchors = %+v, want %+v", got, want)
	}
	for i, s := range Sides {
		if got := b.PointOnSide(s, DefaultRatio); !nearPt(got, want[i]) {
			t.Errorf("PointOnSide(%s, 0.5) = %+v, want anchor %+v", s, got, want[i])
		}
	}
	if got := b.PointOnSide(Top, 0); got != (Pt{40, 35}) {
		t.Errorf("top ratio 0 = %+v", got)
	}
	if got := b.PointOnSide(Left, 1); got != (Pt{40, 45}) {
		t.Errorf("left ratio 1 = %+v", got)
	}
	if got := b.PointOnSide(SideNone, 0.3); got != b.Center() {
		t.Errorf("unknown side should resolve to centre, got %+v", got)
	}
}

func TestClosestSideAndRatio(t *testing.T) {
	b := Box{CX: 0, CY: 0, W: 100, H: 50}
	cases := []struct {
		p    Pt
		want Snap
	}{
		{Pt{-25, -24}, Snap{Top, 0.25}},
		{Pt{40, 30}, Snap{Bottom, 0.9}},
		{Pt{-49, 0}, Snap{Left, 0.5}},
		{Pt{52, -20}, Snap{Right, 0.1}},
		// far outside the box: distance is to the infinite border line, ratio clamps
		{Pt{-400, -30}, Snap{Top, 0}},
		{Pt{10, 0}, Snap{Top, 0.6}},
	}
	for _, tc := range cases {
		got := b.ClosestSideAndRatio(tc.p)
		if got.Side != tc.want.Side || !near(got.Ratio, tc.want.Ratio) {
			t.Errorf("ClosestSideAndRatio(%+v) = %+v, want %+v", tc.p, got, tc.want)
		}
	}
}

func TestClosestSideTieOrder(t *testing.T) {
	b := Box{CX: 0, CY: 0, W: 40, H: 40}
	// Centre is equidistant from all four borders.
	if got := b.ClosestSideAndRatio(Pt{0, 0}); got.Side != Top {
		t.Fatalf("centre tie = %s, want top", got.Side)
	}
	// Equidistant from bottom and right only.
	if got := b.ClosestSideAndRatio(Pt{15, 15}); got.Side != Bottom {
		t.Fatalf("bottom/right tie = %s, want bottom", got.Side)
	}
	// Equidistant from left and right (zero width column), nearer than top/bottom.
	if got := (Box{CX: 0, CY: 0, W: 2, H: 40}).ClosestSideAndRatio(Pt{0, 5}); got.Side != Left {
		t.Fatalf("left/right tie = %s, want left", got.Side)
	}
}

func TestRatioRoundTrip(t *testing.T) {
	boxes := []Box{
		{CX: 60, CY: 31.2, W: 38.4, H: 38.4},
		{CX: 150, CY: 100, W: 300, H: 200},
		{CX: -20, CY: 7, W: 48, H: 120},
	}
	for _, b := range boxes {
		for _, s := range Sides {
			for r := 0.05; r < 0.96; r += 0.05 {
				t.Run(fmt.Sprintf("%v/%s/%.2f", b, s, r), func(t *testing.T) {
					got := b.ClosestSideAndRatio(b.PointOnSide(s, r))
					if got.Side != s || math.Abs(got.Ratio-r) > 1e-9 {
						t.Fatalf("round trip = %+v, want {%s %v}", got, s, r)
					}
				})
			}
		}
	}
}

// Ratios 0 and 1 put the point on a corner shared by two sides; top and
// bottom win those ties, so left/right corners come back as top/bottom.
func TestRatioRoundTripCorners(t *testing.T) {
	boxes := []Box{
		{CX: 150, CY: 100, W: 300, H: 200},
		{CX: -20, CY: 7, W: 48, H: 120},
	}
	tests := []struct {
		side  Side
		ratio float64
		want  Snap
	}{
		{Top, 0, Snap{Side: Top, Ratio: 0}},
		{Top, 1, Snap{Side: Top, Ratio: 1}},
		{Bottom, 0, Snap{Side: Bottom, Ratio: 0}},
		{Bottom, 1, Snap{Side: Bottom, Ratio: 1}},
		{Left, 0, Snap{Side: Top, Ratio: 0}},
		{Left, 1, Snap{Side: Bottom, Ratio: 0}},
		{Right, 0, Snap{Side: Top, Ratio: 1}},
		{Right, 1, Snap{Side: Bottom, Ratio: 1}},
	}
	for _, b := range boxes {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%v/%s/%v", b, tt.side, tt.ratio), func(t *testing.T) {
				if got := b.ClosestSideAndRatio(b.PointOnSide(tt.side, tt.ratio)); got != tt.want {
					t.Fatalf("corner snap = %+v, want %+v", got, tt.want)
				}
			})
		}
	}
}

func TestClosestSideDegenerateBox(t *testing.T) {
	got := (Box{}).ClosestSideAndRatio(Pt{0, 0})
	if got.Side != Top || got.Ratio != DefaultRatio {
		t.Fatalf("degenerate box snap = %+v", got)
	}
}

func TestSideHelpers(t *testing.T) {
	if !Left.Horizontal() || !Right.Horizontal() || Top.Horizontal() {
		t.Fatal("Horizontal mismatch")
	}
	if Top.Opposite() != Bottom || Left.Opposite() != Right || SideNone.Opposite() != SideNone {
		t.Fatal("Opposite mismatch")
	}
	if s, ok := ParseSide("right"); !ok || s != Right {
		t.Fatal("ParseSide(right) failed")
	}
	if _, ok := ParseSide("middle"); ok {
		t.Fatal("ParseSide accepted an unknown side")
	}
}
