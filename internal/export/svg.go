/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"

	"topodraw/internal/domain"
	"topodraw/internal/routing"
	"topodraw/internal/vector"
)

// SVG renders the snapshot as a standalone SVG document in world units.
func SVG(s Snapshot, opt Options) ([]byte, error) {
	sc, err := prepare(s, opt.Ports)
	if err != nil {
		return nil, err
	}
	b := sc.bounds

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"%g %g %g %g\">\n", b.W, b.H, b.X, b.Y, b.W, b.H)
	wf("  <title>%s</title>\n", escText(s.DisplayTitle()))
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", b.X, b.Y, b.W, b.H)

	for _, n := range sc.nodes {
		c := colorOf(n.Color())
		if n.IsZone() {
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"8\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\" stroke-dasharray=\"6 4\"/>\n",
				n.X, n.Y, n.W, n.H, c.Tint(n.Alpha()).Hex(), c.Hex())
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"14\" font-weight=\"bold\" fill=\"%s\">%s</text>\n",
				n.X+10, n.Y+20, c.Hex(), escText(n.Label))
			continue
		}
		box := routing.Geometry(n).Rect()
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"6\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\"/>\n",
			box.X, box.Y, box.W, box.H, c.Tint(n.Alpha()).Hex(), c.Hex())
		if m := Monogram(n.Icon); m != "" {
			ctr := box.Center()
			wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" dominant-baseline=\"central\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\" font-weight=\"bold\" fill=\"%s\">%s</text>\n",
				ctr.X, ctr.Y, box.H*0.4, c.Hex(), escText(m))
		}
		wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"12\" fill=\"#1e293b\">%s</text>\n",
			box.Center().X, box.Y+box.H+16, escText(n.Label))
	}

	for _, r := range sc.routes {
		e := sc.edges[r.EdgeID]
		col := colorOf(e.StrokeColor()).Hex()
		wf("  <path data-edge=\"%s\" d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\" stroke-linejoin=\"round\"/>\n", escAttr(r.EdgeID), r.Path.SVG(), col, e.Width)
		if st, stFrom, en, enFrom, ok := ends(r.Path); ok {
			svgMarker(wf, e.MarkerStart, st, stFrom, e.Width, col)
			svgMarker(wf, e.MarkerEnd, en, enFrom, e.Width, col)
		}
	}

	for _, r := range sc.routes {
		if r.Label == "" {
			continue
		}
		col := colorOf(sc.edges[r.EdgeID].StrokeColor()).Hex()
		box := routing.LabelBox(r.Label, r.LabelAt)
		wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"4\" fill=\"#ffffff\" stroke=\"%s\" stroke-width=\"1\"/>\n", box.X, box.Y, box.W, box.H, col)
		for i, line := range routing.LabelLines(r.Label) {
			wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"9\" fill=\"%s\">%s</text>\n",
				r.LabelAt.X, box.Y+12*float64(i+1), col, escText(line))
		}
	}

	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

func svgMarker(wf func(string, ...any), m domain.Marker, at, from vector.Pt, width float64, col string) {
	size := markerSize(width)
	switch m {
	case domain.MarkerArrow:
		t := arrowHead(at, from, size)
		wf("  <polygon points=\"%g,%g %g,%g %g,%g\" fill=\"%s\"/>\n", t[0].X, t[0].Y, t[1].X, t[1].Y, t[2].X, t[2].Y, col)
	case domain.MarkerCircle:
		wf("  <circle cx=\"%g\" cy=\"%g\" r=\"%g\" fill=\"%s\"/>\n", at.X, at.Y, size/2, col)
	}
}

// WriteSVG writes the SVG rendering to path.
func WriteSVG(s Snapshot, path string, opt Options) error {
	data, err := SVG(s, opt)
	if err != nil {
		return err
	}
	out, err := resolveOut(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
