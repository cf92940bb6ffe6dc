/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package routing

import (
	"fmt"
	"math"
	"testing"

	"topodraw/internal/domain"
	"topodraw/internal/vector"
)

func node(id string, x, y, w, h float64) domain.Node {
	return domain.Node{ID: id, Type: "server", X: x, Y: y, W: w, H: h}
}

func near(a, b vector.Pt) bool { return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9 }

func TestGeometry(t *testing.T) {
	g := Geometry(node("a", 0, 0, 120, 96))
	want := vector.Box{CX: 60, CY: 12 + 38.4/2, W: 38.4, H: 38.4}
	if math.Abs(g.CX-want.CX) > 1e-9 || math.Abs(g.CY-want.CY) > 1e-9 || math.Abs(g.W-want.W) > 1e-9 || g.W != g.H {
		t.Fatalf("pictogram geometry = %+v, want %+v", g, want)
	}
	z := domain.Node{ID: "z", Type: domain.ZoneType, X: 10, Y: 20, W: 300, H: 200}
	if g := Geometry(z); g != (vector.Box{CX: 160, CY: 120, W: 300, H: 200}) {
		t.Fatalf("zone geometry = %+v", g)
	}
}

func TestScenarioSideBySide(t *testing.T) {
	a, b := node("a", 0, 0, 120, 96), node("b", 300, 0, 120, 96)
	c := BestConnection(a, b, vector.SideNone, vector.SideNone)
	if c.SideA != vector.Right || c.SideB != vector.Left {
		t.Fatalf("sides = %s->%s, want right->left", c.SideA, c.SideB)
	}
	p := OrthogonalPath(c.Start, c.End, c.SideA, c.SideB)
	pts := p.Points()
	if len(pts) != 2 || pts[0].Y != pts[1].Y {
		t.Fatalf("expected one horizontal segment, got %+v", pts)
	}
}

func TestScenarioStacked(t *testing.T) {
	a, b := node("a", 0, 0, 120, 96), node("b", 0, 300, 120, 96)
	c := BestConnection(a, b, vector.SideNone, vector.SideNone)
	if c.SideA != vector.Bottom || c.SideB != vector.Top {
		t.Fatalf("sides = %s->%s, want bottom->top", c.SideA, c.SideB)
	}
	pts := OrthogonalPath(c.Start, c.End, c.SideA, c.SideB).Points()
	if len(pts) != 2 || pts[0].X != pts[1].X {
		t.Fatalf("expected one vertical segment, got %+v", pts)
	}
}

func TestScenarioDiagonal(t *testing.T) {
	a, b := node("a", 0, 0, 120, 96), node("b", 300, 300, 120, 96)
	c := BestConnection(a, b, vector.SideNone, vector.SideNone)
	mixed := (c.SideA == vector.Bottom && c.SideB == vector.Left) || (c.SideA == vector.Right && c.SideB == vector.Top)
	if !mixed {
		t.Fatalf("sides = %s->%s, want a corner-adjacent pair", c.SideA, c.SideB)
	}
	p := OrthogonalPath(c.Start, c.End, c.SideA, c.SideB)
	pts := p.Points()
	if len(pts) != 3 {
		t.Fatalf("expected a two-segment elbow, got %+v", pts)
	}
	if !p.Orthogonal() {
		t.Fatalf("elbow has a diagonal segment: %+v", pts)
	}
	if pts[1] != (vector.Pt{X: c.End.X, Y: c.Start.Y}) {
		t.Fatalf("elbow corner = %+v", pts[1])
	}
}

func TestAnchorSymmetry(t *testing.T) {
	sizes := [][2]float64{{120, 96}, {300, 200}, {48, 48}, {96, 240}}
	offsets := []vector.Pt{{X: 400, Y: 0}, {X: 0, Y: 500}, {X: 350, Y: 410}, {X: -420, Y: 130}, {X: 260, Y: -380}, {X: -500, Y: -90}}
	for i, sa := range sizes {
		for j, sb := range sizes {
			for k, off := range offsets {
				name := fmt.Sprintf("%d-%d-%d", i, j, k)
				t.Run(name, func(t *testing.T) {
					a := node("a", 0, 0, sa[0], sa[1])
					b := node("b", off.X, off.Y, sb[0], sb[1])
					if i%2 == 1 {
						a.Type = domain.ZoneType
					}
					ab := BestConnection(a, b, vector.SideNone, vector.SideNone)
					ba := BestConnection(b, a, vector.SideNone, vector.SideNone)

					ga, gb := Geometry(a), Geometry(b)
					minD, count := math.Inf(1), 0
					for _, x := range vector.Sides {
						for _, y := range vector.Sides {
							d := ga.Anchor(x).Dist(gb.Anchor(y))
							switch {
							case d < minD-1e-9:
								minD, count = d, 1
							case math.Abs(d-minD) <= 1e-9:
								count++
							}
						}
					}
					dab, dba := ab.Start.Dist(ab.End), ba.Start.Dist(ba.End)
					if math.Abs(dab-minD) > 1e-9 || math.Abs(dba-minD) > 1e-9 {
						t.Fatalf("distances %v / %v, minimum %v", dab, dba, minD)
					}
					if count == 1 && (ab.SideA != ba.SideB || ab.SideB != ba.SideA) {
						t.Fatalf("not mirrored: %s->%s vs %s->%s", ab.SideA, ab.SideB, ba.SideA, ba.SideB)
					}
				})
			}
		}
	}
}

func TestPinnedSides(t *testing.T) {
	a, b := node("a", 0, 0, 120, 96), node("b", 300, 0, 120, 96)

	both := BestConnection(a, b, vector.Top, vector.Bottom)
	if both.SideA != vector.Top || both.SideB != vector.Bottom || !near(both.Start, Geometry(a).Anchor(vector.Top)) {
		t.Fatalf("both pinned = %+v", both)
	}

	onlyA := BestConnection(a, b, vector.Bottom, vector.SideNone)
	if onlyA.SideA != vector.Bottom || onlyA.SideB != vector.Left {
		t.Fatalf("pinned source = %s->%s, want bottom->left", onlyA.SideA, onlyA.SideB)
	}

	onlyB := BestConnection(a, b, vector.SideNone, vector.Right)
	if onlyB.SideA != vector.Right || onlyB.SideB != vector.Right {
		t.Fatalf("pinned target = %s->%s, want right->right", onlyB.SideA, onlyB.SideB)
	}
}

func TestOrthogonalPathShapes(t *testing.T) {
	cases := []struct {
		name   string
		s, e   vector.Pt
		sa, sb vector.Side
		want   []vector.Pt
	}{
		{"vertical opposite", vector.Pt{X: 0, Y: 0}, vector.Pt{X: 100, Y: 200}, vector.Bottom, vector.Top,
			[]vector.Pt{{X: 0, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 200}}},
		{"top to bottom", vector.Pt{X: 0, Y: 200}, vector.Pt{X: 100, Y: 0}, vector.Top, vector.Bottom,
			[]vector.Pt{{X: 0, Y: 200}, {X: 0, Y: 100}, {X: 100, Y: 100}, {X: 100, Y: 0}}},
		{"horizontal opposite", vector.Pt{X: 0, Y: 0}, vector.Pt{X: 200, Y: 100}, vector.Right, vector.Left,
			[]vector.Pt{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 200, Y: 100}}},
		{"mixed elbow", vector.Pt{X: 0, Y: 0}, vector.Pt{X: 200, Y: 100}, vector.Bottom, vector.Left,
			[]vector.Pt{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}}},
		{"nearly vertical", vector.Pt{X: 0, Y: 0}, vector.Pt{X: 9, Y: 300}, vector.Right, vector.Left,
			[]vector.Pt{{X: 0, Y: 0}, {X: 9, Y: 300}}},
		{"nearly horizontal", vector.Pt{X: 0, Y: 0}, vector.Pt{X: 300, Y: -9.99}, vector.Bottom, vector.Top,
			[]vector.Pt{{X: 0, Y: 0}, {X: 300, Y: -9.99}}},
	}
	for _, tc := range cases {
		got := OrthogonalPath(tc.s, tc.e, tc.sa, tc.sb).Points()
		if fmt.Sprint(got) != fmt.Sprint(tc.want) {
			t.Errorf("%s: path = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLabelAnchor(t *testing.T) {
	s, e := vector.Pt{X: 0, Y: 0}, vector.Pt{X: 100, Y: 50}
	if got := LabelAnchor(s, e, vector.Right, vector.Pt{}); got != (vector.Pt{X: 50, Y: 0}) {
		t.Fatalf("sideways label anchor = %+v", got)
	}
	if got := LabelAnchor(s, e, vector.Top, vector.Pt{X: 5, Y: -5}); got != (vector.Pt{X: 55, Y: 20}) {
		t.Fatalf("vertical label anchor = %+v", got)
	}
}
