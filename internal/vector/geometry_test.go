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

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearPt(a, b Pt) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	if r.Contains(Pt{111, 70}) {
		t.Fatalf("point right of rect should not be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectOverlaps(t *testing.T) {
	sel := R(0, 0, 100, 100)
	cases := []struct {
		name string
		r    Rect
		want bool
	}{
		{"inside", R(10, 10, 20, 20), true},
		{"partial", R(90, 90, 120, 96), true},
		{"enclosing", R(-50, -50, 300, 300), true},
		{"touching right edge", R(100, 0, 20, 20), false},
		{"outside", R(200, 200, 10, 10), false},
		{"above", R(0, -30, 50, 30), false},
	}
	for _, tc := range cases {
		if got := sel.Overlaps(tc.r); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRectFromCornersAndUnion(t *testing.T) {
	r := RectFromCorners(Pt{100, 10}, Pt{0, 60})
	if r != R(0, 10, 100, 50) {
		t.Fatalf("RectFromCorners = %+v", r)
	}
	u := R(0, 0, 10, 10).Union(R(-5, 20, 10, 10))
	if u != R(-5, 0, 15, 30) {
		t.Fatalf("Union = %+v", u)
	}
}

func TestAffineBasicAndInvert(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 {
		t.Fatalf("unexpected transform result: %+v", p)
	}
	back := m.Invert().Apply(p)
	if !nearPt(back, Pt{1, 1}) {
		t.Fatalf("inverse round trip = %+v", back)
	}
	if (Affine2D{}).Invert() != Identity {
		t.Fatalf("singular matrix should invert to identity")
	}
}

func TestBoxRect(t *testing.T) {
	b := Box{CX: 60, CY: 50, W: 40, H: 20}
	if b.Rect() != R(40, 40, 40, 20) {
		t.Fatalf("Box.Rect = %+v", b.Rect())
	}
}

func TestFloatRound(t *testing.T) {
	if FloatRound(1.23456, 3) != 1.235 {
		t.Fatalf("FloatRound = %v", FloatRound(1.23456, 3))
	}
	if FloatRound(1.5, -1) != 1.5 {
		t.Fatalf("negative places should be a no-op")
	}
}
