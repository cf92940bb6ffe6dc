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
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"topodraw/internal/domain"
	"topodraw/internal/legend"
	"topodraw/internal/routing"
	"topodraw/internal/version"
	"topodraw/internal/vector"
)

// PDF page layout in points (landscape A4).
const (
	pdfMargin       = 40.0
	pdfTitleY       = 42.0
	pdfDiagramTop   = 60.0
	pdfLegendHeight = 70.0
	pdfRowHeight    = 16.0
)

// DetailRow is one line of the "Connection Details" table.
type DetailRow struct {
	Source, Destination, Ports string
}

// Details lists every routable edge with its endpoint labels and the custom
// or looked-up port label ("-" when neither exists).
func Details(s Snapshot, ports routing.PortLookup) []DetailRow {
	ix := routing.NewIndex(s.Nodes)
	var rows []DetailRow
	for _, e := range s.Edges {
		src, dst, ok := ix.Ends(e)
		if !ok {
			continue
		}
		label := routing.LabelText(e, src, dst, ports)
		if label == "" {
			label = "-"
		}
		rows = append(rows, DetailRow{Source: src.Label, Destination: dst.Label, Ports: label})
	}
	return rows
}

// pdfPage maps world coordinates into the diagram area of page 1.
type pdfPage struct {
	pdf    *gofpdf.Fpdf
	origin vector.Pt
	offX   float64
	offY   float64
	scale  float64
	tr     func(string) string
}

func (p pdfPage) pt(w vector.Pt) (float64, float64) {
	return p.offX + (w.X-p.origin.X)*p.scale, p.offY + (w.Y-p.origin.Y)*p.scale
}

func (p pdfPage) rect(r vector.Rect) (float64, float64, float64, float64) {
	x, y := p.pt(r.Min())
	return x, y, r.W * p.scale, r.H * p.scale
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func setTextColor(pdf *gofpdf.Fpdf, c vector.Color) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }

// PDF writes the two-page report: the titled diagram with its colour legend,
// then the connection details table.
func PDF(w io.Writer, s Snapshot, opt Options) error {
	sc, err := prepare(s, opt.Ports)
	if err != nil {
		return err
	}
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetTitle(s.DisplayTitle(), true)
	pdf.SetCreator("topodraw "+version.String(), true)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	setTextColor(pdf, vector.MustHex("#0f172a"))
	pdf.Text(pdfMargin, pdfTitleY, tr(s.DisplayTitle()))

	areaW := pageW - 2*pdfMargin
	areaH := pageH - pdfDiagramTop - pdfLegendHeight
	b := sc.bounds
	scale := min(areaW/b.W, areaH/b.H)
	page := pdfPage{
		pdf:    pdf,
		origin: b.Min(),
		offX:   (pageW - b.W*scale) / 2,
		offY:   pdfDiagramTop,
		scale:  scale,
		tr:     tr,
	}
	page.drawNodes(sc)
	page.drawEdges(sc)
	page.drawLegend(legend.Named(legend.Colors(s.Edges, s.ColorLabels)), pageW, pageH)

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	setTextColor(pdf, vector.MustHex("#0f172a"))
	pdf.Text(pdfMargin, pdfTitleY, "Connection Details")
	drawDetails(pdf, tr, Details(s, opt.Ports), pageW-2*pdfMargin)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (p pdfPage) fontSize(world float64) float64 { return max(4, world*p.scale) }

func (p pdfPage) drawNodes(sc scene) {
	slate := vector.MustHex("#1e293b")
	for _, n := range sc.nodes {
		c := colorOf(n.Color())
		setDrawColor(p.pdf, c)
		setFillColor(p.pdf, c.Tint(n.Alpha()))
		p.pdf.SetLineWidth(max(0.5, 2*p.scale))
		if n.IsZone() {
			x, y, w, h := p.rect(n.Rect())
			p.pdf.SetDashPattern([]float64{6 * p.scale, 4 * p.scale}, 0)
			p.pdf.Rect(x, y, w, h, "FD")
			p.pdf.SetDashPattern([]float64{}, 0)
			p.pdf.SetFont("Helvetica", "B", p.fontSize(14))
			setTextColor(p.pdf, c)
			tx, ty := p.pt(vector.Pt{X: n.X + 10, Y: n.Y + 20})
			p.pdf.Text(tx, ty, p.tr(n.Label))
			continue
		}
		box := routing.Geometry(n).Rect()
		x, y, w, h := p.rect(box)
		p.pdf.Rect(x, y, w, h, "FD")
		if m := Monogram(n.Icon); m != "" {
			p.pdf.SetFont("Helvetica", "B", p.fontSize(box.H*0.4))
			setTextColor(p.pdf, c)
			cx, cy := p.pt(box.Center())
			p.pdf.Text(cx-p.pdf.GetStringWidth(m)/2, cy+p.fontSize(box.H*0.4)*0.35, m)
		}
		p.pdf.SetFont("Helvetica", "", p.fontSize(12))
		setTextColor(p.pdf, slate)
		label := p.tr(n.Label)
		lx, ly := p.pt(vector.Pt{X: box.Center().X, Y: box.Y + box.H + 16})
		p.pdf.Text(lx-p.pdf.GetStringWidth(label)/2, ly, label)
	}
}

func (p pdfPage) drawEdges(sc scene) {
	for _, r := range sc.routes {
		e := sc.edges[r.EdgeID]
		c := colorOf(e.StrokeColor())
		setDrawColor(p.pdf, c)
		setFillColor(p.pdf, c)
		p.pdf.SetLineWidth(max(0.5, e.Width*p.scale))
		pts := r.Path.Points()
		for i := 1; i < len(pts); i++ {
			x1, y1 := p.pt(pts[i-1])
			x2, y2 := p.pt(pts[i])
			p.pdf.Line(x1, y1, x2, y2)
		}
		if st, stFrom, en, enFrom, ok := ends(r.Path); ok {
			p.marker(e.MarkerStart, st, stFrom, e.Width)
			p.marker(e.MarkerEnd, en, enFrom, e.Width)
		}
	}
	for _, r := range sc.routes {
		if r.Label == "" {
			continue
		}
		c := colorOf(sc.edges[r.EdgeID].StrokeColor())
		setDrawColor(p.pdf, c)
		p.pdf.SetFillColor(255, 255, 255)
		p.pdf.SetLineWidth(max(0.3, p.scale))
		x, y, w, h := p.rect(routing.LabelBox(r.Label, r.LabelAt))
		p.pdf.Rect(x, y, w, h, "FD")
		p.pdf.SetFont("Helvetica", "", p.fontSize(9))
		setTextColor(p.pdf, c)
		lines := routing.LabelLines(r.Label)
		for i, line := range lines {
			off := (float64(i)-float64(len(lines)-1)/2)*12 + 3
			lx, ly := p.pt(vector.Pt{X: r.LabelAt.X, Y: r.LabelAt.Y + off})
			line = p.tr(line)
			p.pdf.Text(lx-p.pdf.GetStringWidth(line)/2, ly, line)
		}
	}
}

func (p pdfPage) marker(m domain.Marker, at, from vector.Pt, width float64) {
	size := markerSize(width)
	switch m {
	case domain.MarkerArrow:
		t := arrowHead(at, from, size)
		pts := make([]gofpdf.PointType, 0, len(t))
		for _, q := range t {
			x, y := p.pt(q)
			pts = append(pts, gofpdf.PointType{X: x, Y: y})
		}
		p.pdf.Polygon(pts, "F")
	case domain.MarkerCircle:
		x, y := p.pt(at)
		p.pdf.Circle(x, y, size/2*p.scale, "F")
	}
}

// drawLegend lays out named colour swatches left to right, wrapping lines.
func (p pdfPage) drawLegend(entries []legend.ColorEntry, pageW, pageH float64) {
	if len(entries) == 0 {
		return
	}
	x, y := pdfMargin, pageH-pdfLegendHeight+18
	p.pdf.SetFont("Helvetica", "B", 10)
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.Text(x, y, "Connection Types:")
	y += 16
	p.pdf.SetFont("Helvetica", "", 9)
	for _, en := range entries {
		label := p.tr(en.Label)
		itemW := 10 + 6 + p.pdf.GetStringWidth(label) + 18
		if x+itemW > pageW-pdfMargin {
			x = pdfMargin
			y += 14
		}
		setFillColor(p.pdf, colorOf(en.Color))
		p.pdf.Rect(x, y-8, 10, 10, "F")
		p.pdf.Text(x+16, y, label)
		x += itemW
	}
}

func drawDetails(pdf *gofpdf.Fpdf, tr func(string) string, rows []DetailRow, width float64) {
	cols := []float64{160, 160, width - 320}
	head := []string{"Source", "Destination", "Ports / Protocol"}
	pdf.SetXY(pdfMargin, pdfTitleY+18)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(255, 255, 255)
	for i, h := range head {
		pdf.CellFormat(cols[i], pdfRowHeight+2, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 0)
	_, pageH := pdf.GetPageSize()
	for n, r := range rows {
		if pdf.GetY()+pdfRowHeight > pageH-pdfMargin {
			pdf.AddPage()
			pdf.SetXY(pdfMargin, pdfMargin)
		}
		pdf.SetX(pdfMargin)
		if n%2 == 1 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for i, v := range []string{r.Source, r.Destination, r.Ports} {
			pdf.CellFormat(cols[i], pdfRowHeight, tr(v), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
}

// WritePDF renders the report to a file at path.
func WritePDF(s Snapshot, path string, opt Options) error {
	out, err := resolveOut(path)
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := PDF(f, s, opt); err != nil {
		_ = f.Close()
		_ = os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}
