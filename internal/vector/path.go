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
	"strconv"
	"strings"
)

// PathOp is a path drawing command.
type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	P  Pt
}

// Path is a sequence of straight-line commands. Connector routes are open
// polylines starting with a single MoveTo.
type Path struct{ Cmds []PathCmd }

// Polyline builds an open path through pts.
func Polyline(pts ...Pt) Path {
	var p Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
			continue
		}
		p.LineTo(pt.X, pt.Y)
	}
	return p
}

func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, P: Pt{x, y}}) }
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, P: Pt{x, y}}) }
func (p *Path) Close()              { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// Points returns the vertices of the path in drawing order.
func (p Path) Points() []Pt {
	out := make([]Pt, 0, len(p.Cmds))
	for _, c := range p.Cmds {
		if c.Op != Close {
			out = append(out, c.P)
		}
	}
	return out
}

// SVG renders the path as SVG path data, e.g. "M 0 0 L 10 0".
func (p Path) SVG() string {
	var b strings.Builder
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case MoveTo:
			b.WriteString("M ")
		case LineTo:
			b.WriteString("L ")
		case Close:
			b.WriteString("Z")
			continue
		}
		b.WriteString(fmtNum(c.P.X))
		b.WriteByte(' ')
		b.WriteString(fmtNum(c.P.Y))
	}
	return b.String()
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (p Path) Bounds() Rect {
	pts := p.Points()
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range pts {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Orthogonal reports whether every segment is horizontal or vertical.
func (p Path) Orthogonal() bool {
	pts := p.Points()
	for i := 1; i < len(pts); i++ {
		if pts[i].X != pts[i-1].X && pts[i].Y != pts[i-1].Y {
			return false
		}
	}
	return true
}

func fmtNum(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Distance returns the shortest distance from q to any segment of the path.
// An empty path is infinitely far away.
func (p Path) Distance(q Pt) float64 {
	pts := p.Points()
	switch len(pts) {
	case 0:
		return math.Inf(1)
	case 1:
		return q.Dist(pts[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(pts); i++ {
		best = math.Min(best, segmentDist(q, pts[i-1], pts[i]))
	}
	return best
}

func segmentDist(q, a, b Pt) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return q.Dist(a)
	}
	t := clamp(((q.X-a.X)*d.X+(q.Y-a.Y)*d.Y)/l2, 0, 1)
	return q.Dist(a.Add(d.Scale(t)))
}
