/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"topodraw/internal/domain"
	"topodraw/internal/routing"
	"topodraw/internal/vector"
)

// raster maps world coordinates onto the PNG pixel grid.
type raster struct {
	dc     *gg.Context
	origin vector.Pt
	scale  float64
}

func (r raster) pt(p vector.Pt) (float64, float64) {
	return (p.X - r.origin.X) * r.scale, (p.Y - r.origin.Y) * r.scale
}

func (r raster) rect(x vector.Rect) (float64, float64, float64, float64) {
	px, py := r.pt(x.Min())
	return px, py, x.W * r.scale, x.H * r.scale
}

func (r raster) setColor(c vector.Color) { r.dc.SetColor(c.NRGBA()) }

// PNG rasterises the snapshot on a white background.
func PNG(s Snapshot, opt Options) (image.Image, error) {
	sc, err := prepare(s, opt.Ports)
	if err != nil {
		return nil, err
	}
	scale := opt.scale()
	w := int(math.Ceil(sc.bounds.W * scale))
	h := int(math.Ceil(sc.bounds.H * scale))
	r := raster{dc: gg.NewContext(w, h), origin: sc.bounds.Min(), scale: scale}
	r.dc.SetRGB(1, 1, 1)
	r.dc.Clear()
	r.dc.SetFontFace(basicfont.Face7x13)

	slate := vector.MustHex("#1e293b")
	for _, n := range sc.nodes {
		c := colorOf(n.Color())
		if n.IsZone() {
			x, y, bw, bh := r.rect(n.Rect())
			r.dc.DrawRoundedRectangle(x, y, bw, bh, 8*scale)
			r.setColor(c.Tint(n.Alpha()))
			r.dc.FillPreserve()
			r.setColor(c)
			r.dc.SetLineWidth(2 * scale)
			r.dc.SetDash(6*scale, 4*scale)
			r.dc.Stroke()
			r.dc.SetDash()
			tx, ty := r.pt(vector.Pt{X: n.X + 10, Y: n.Y + 10})
			r.dc.DrawStringAnchored(n.Label, tx, ty, 0, 1)
			continue
		}
		box := routing.Geometry(n).Rect()
		x, y, bw, bh := r.rect(box)
		r.dc.DrawRoundedRectangle(x, y, bw, bh, 6*scale)
		r.setColor(c.Tint(n.Alpha()))
		r.dc.FillPreserve()
		r.setColor(c)
		r.dc.SetLineWidth(2 * scale)
		r.dc.Stroke()
		if m := Monogram(n.Icon); m != "" {
			cx, cy := r.pt(box.Center())
			r.dc.DrawStringAnchored(m, cx, cy, 0.5, 0.5)
		}
		r.setColor(slate)
		lx, ly := r.pt(vector.Pt{X: box.Center().X, Y: box.Y + box.H + 6})
		r.dc.DrawStringAnchored(n.Label, lx, ly, 0.5, 1)
	}

	for _, rt := range sc.routes {
		e := sc.edges[rt.EdgeID]
		c := colorOf(e.StrokeColor())
		r.setColor(c)
		r.dc.SetLineWidth(e.Width * scale)
		for i, p := range rt.Path.Points() {
			x, y := r.pt(p)
			if i == 0 {
				r.dc.MoveTo(x, y)
			} else {
				r.dc.LineTo(x, y)
			}
		}
		r.dc.Stroke()
		if st, stFrom, en, enFrom, ok := ends(rt.Path); ok {
			r.marker(e.MarkerStart, st, stFrom, e.Width)
			r.marker(e.MarkerEnd, en, enFrom, e.Width)
		}
	}

	for _, rt := range sc.routes {
		if rt.Label == "" {
			continue
		}
		c := colorOf(sc.edges[rt.EdgeID].StrokeColor())
		x, y, bw, bh := r.rect(routing.LabelBox(rt.Label, rt.LabelAt))
		r.dc.DrawRoundedRectangle(x, y, bw, bh, 4*scale)
		r.dc.SetRGB(1, 1, 1)
		r.dc.FillPreserve()
		r.setColor(c)
		r.dc.SetLineWidth(scale)
		r.dc.Stroke()
		lines := routing.LabelLines(rt.Label)
		for i, line := range lines {
			off := (float64(i) - float64(len(lines)-1)/2) * 12
			lx, ly := r.pt(vector.Pt{X: rt.LabelAt.X, Y: rt.LabelAt.Y + off})
			r.dc.DrawStringAnchored(line, lx, ly, 0.5, 0.5)
		}
	}
	return r.dc.Image(), nil
}

func (r raster) marker(m domain.Marker, at, from vector.Pt, width float64) {
	size := markerSize(width)
	switch m {
	case domain.MarkerArrow:
		t := arrowHead(at, from, size)
		for i, p := range t {
			x, y := r.pt(p)
			if i == 0 {
				r.dc.MoveTo(x, y)
			} else {
				r.dc.LineTo(x, y)
			}
		}
		r.dc.ClosePath()
		r.dc.Fill()
	case domain.MarkerCircle:
		x, y := r.pt(at)
		r.dc.DrawCircle(x, y, size/2*r.scale)
		r.dc.Fill()
	}
}

// EncodePNG renders and writes PNG bytes to w.
func EncodePNG(w io.Writer, s Snapshot, opt Options) error {
	img, err := PNG(s, opt)
	if err != nil {
		return err
	}
	if err := gg.NewContextForImage(img).EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNG renders the snapshot to a PNG file at path.
func WritePNG(s Snapshot, path string, opt Options) error {
	out, err := resolveOut(path)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := EncodePNG(f, s, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
