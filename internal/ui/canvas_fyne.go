//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"topodraw/internal/domain"
	"topodraw/internal/export"
	"topodraw/internal/interact"
	"topodraw/internal/routing"
	"topodraw/internal/vector"
)

var (
	canvasBG     = color.NRGBA{R: 248, G: 250, B: 252, A: 255}
	patternColor = color.NRGBA{R: 203, G: 213, B: 225, A: 255}
	selectColor  = color.NRGBA{R: 37, G: 99, B: 235, A: 255}
	hoverColor   = color.NRGBA{R: 34, G: 197, B: 94, A: 255}
	labelBG      = color.NRGBA{R: 255, G: 255, B: 255, A: 235}
	textColor    = color.NRGBA{R: 30, G: 41, B: 59, A: 255}
)

// maxPatternMarks bounds the dots drawn for the background at low zoom.
const maxPatternMarks = 4000

// DesignCanvas is the interactive drawing surface. All input is forwarded to
// the editor; the widget only paints Editor.Frame.
type DesignCanvas struct {
	widget.BaseWidget
	ed   *interact.Editor
	mods interact.Modifiers
	// OnChanged fires after any input that may have changed the frame.
	OnChanged func()
}

func NewDesignCanvas(ed *interact.Editor) *DesignCanvas {
	c := &DesignCanvas{ed: ed}
	c.ExtendBaseWidget(c)
	return c
}

func (c *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(canvasBG)
	return &designRenderer{c: c, bg: bg, objects: []fyne.CanvasObject{bg}}
}

// MinSize keeps the canvas usable in small windows.
func (c *DesignCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func (c *DesignCanvas) changed() {
	c.Refresh()
	if c.OnChanged != nil {
		c.OnChanged()
	}
}

func pt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func modsOf(m fyne.KeyModifier) interact.Modifiers {
	var out interact.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		out |= interact.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= interact.ModCtrl
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= interact.ModMeta
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= interact.ModAlt
	}
	return out
}

func buttonOf(b desktop.MouseButton) interact.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return interact.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return interact.ButtonMiddle
	}
	return interact.ButtonPrimary
}

// Resize keeps the editor's notion of the canvas in sync with the widget.
func (c *DesignCanvas) Resize(s fyne.Size) {
	c.BaseWidget.Resize(s)
	c.ed.SetCanvas(vector.Pt{}, vector.Size{W: float64(s.Width), H: float64(s.Height)})
}

func (c *DesignCanvas) MouseDown(e *desktop.MouseEvent) {
	c.mods = modsOf(e.Modifier)
	c.ed.PointerDown(interact.PointerEvent{Screen: pt(e.Position), Button: buttonOf(e.Button), Mods: c.mods})
	c.changed()
}

func (c *DesignCanvas) MouseUp(*desktop.MouseEvent) {
	c.ed.PointerUp()
	c.changed()
}

func (c *DesignCanvas) MouseIn(e *desktop.MouseEvent) { c.MouseMoved(e) }

func (c *DesignCanvas) MouseMoved(e *desktop.MouseEvent) {
	c.ed.PointerMove(pt(e.Position))
	c.Refresh()
}

// MouseOut ends any gesture: losing the pointer behaves like a release.
func (c *DesignCanvas) MouseOut() {
	c.ed.PointerUp()
	c.changed()
}

func (c *DesignCanvas) Dragged(e *fyne.DragEvent) {
	c.ed.PointerMove(pt(e.Position))
	c.Refresh()
}

func (c *DesignCanvas) DragEnd() {
	c.ed.PointerUp()
	c.changed()
}

// Scrolled pans, or zooms while ctrl/cmd is held. Scroll events carry no
// modifiers, so the state tracked from key events is used.
func (c *DesignCanvas) Scrolled(e *fyne.ScrollEvent) {
	c.ed.Wheel(vector.Pt{X: float64(-e.Scrolled.DX), Y: float64(-e.Scrolled.DY)}, pt(e.Position), c.mods)
	c.changed()
}

// KeyDown and KeyUp are fed from the window canvas to track modifiers.
func (c *DesignCanvas) KeyDown(k *fyne.KeyEvent) {
	switch k.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		c.mods |= interact.ModShift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		c.mods |= interact.ModCtrl
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		c.mods |= interact.ModMeta
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		c.mods |= interact.ModAlt
	case fyne.KeyDelete:
		if c.ed.KeyDown(interact.KeyDelete, c.mods) {
			c.changed()
		}
	case fyne.KeyBackspace:
		if c.ed.KeyDown(interact.KeyBackspace, c.mods) {
			c.changed()
		}
	default:
		if c.ed.KeyDown(string(k.Name), c.mods) {
			c.changed()
		}
	}
}

func (c *DesignCanvas) KeyUp(k *fyne.KeyEvent) {
	switch k.Name {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		c.mods &^= interact.ModShift
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		c.mods &^= interact.ModCtrl
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		c.mods &^= interact.ModMeta
	case desktop.KeyAltLeft, desktop.KeyAltRight:
		c.mods &^= interact.ModAlt
	}
}

// designRenderer rebuilds its objects from a fresh frame on every refresh.
type designRenderer struct {
	c       *DesignCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *designRenderer) Destroy()                     {}
func (r *designRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *designRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *designRenderer) Layout(size fyne.Size)        { r.build(size) }
func (r *designRenderer) Refresh()                     { r.build(r.c.Size()); canvas.Refresh(r.c) }

type painter struct {
	vp   vector.Viewport
	objs []fyne.CanvasObject
}

func (p *painter) pos(w vector.Pt) fyne.Position {
	s := p.vp.WorldToScreen(vector.Pt{}, w)
	return fyne.NewPos(float32(s.X), float32(s.Y))
}

func (p *painter) rect(fill, stroke color.Color, width float32, r vector.Rect) *canvas.Rectangle {
	o := canvas.NewRectangle(fill)
	o.StrokeColor = stroke
	o.StrokeWidth = width
	o.Move(p.pos(r.Min()))
	o.Resize(fyne.NewSize(float32(r.W*p.vp.K), float32(r.H*p.vp.K)))
	p.objs = append(p.objs, o)
	return o
}

func (p *painter) line(col color.Color, width float32, a, b vector.Pt) {
	l := canvas.NewLine(col)
	l.StrokeWidth = width
	l.Position1, l.Position2 = p.pos(a), p.pos(b)
	p.objs = append(p.objs, l)
}

func (p *painter) dot(col color.Color, at vector.Pt, radius float32) {
	d := canvas.NewCircle(col)
	s := p.pos(at)
	d.Move(fyne.NewPos(s.X-radius, s.Y-radius))
	d.Resize(fyne.NewSize(2*radius, 2*radius))
	p.objs = append(p.objs, d)
}

func (p *painter) text(s string, at vector.Pt, size float64, bold bool) {
	t := canvas.NewText(s, textColor)
	t.TextSize = float32(max(6, size*p.vp.K))
	t.TextStyle.Bold = bold
	t.Alignment = fyne.TextAlignCenter
	m := t.MinSize()
	c := p.pos(at)
	t.Move(fyne.NewPos(c.X-m.Width/2, c.Y-m.Height/2))
	t.Resize(m)
	p.objs = append(p.objs, t)
}

func hexColor(s string, opacity float64) color.NRGBA {
	c, _ := vector.ParseHex(s)
	if opacity > 0 && opacity < 1 {
		c = c.WithOpacity(opacity)
	}
	return c.NRGBA()
}

func (r *designRenderer) build(size fyne.Size) {
	f := r.c.ed.Frame()
	r.bg.Resize(size)
	p := &painter{vp: f.Viewport, objs: []fyne.CanvasObject{r.bg}}
	pattern(p, f.Background, size)

	for _, n := range f.Nodes {
		drawNode(p, n)
	}
	for _, e := range f.Edges {
		drawEdge(p, e)
	}
	if f.Pending != nil {
		pts := f.Pending.Points()
		for i := 1; i < len(pts); i++ {
			p.line(selectColor, 1.5, pts[i-1], pts[i])
		}
	}
	if f.Snap != nil {
		p.dot(hoverColor, *f.Snap, 5)
	}
	if f.Marquee != nil {
		p.rect(color.NRGBA{R: 37, G: 99, B: 235, A: 30}, selectColor, 1, *f.Marquee)
	}
	r.objects = p.objs
}

func pattern(p *painter, bg domain.Background, size fyne.Size) {
	step := vector.GridSize * p.vp.K
	if step < 4 {
		return
	}
	ox := math.Mod(p.vp.X, step)
	oy := math.Mod(p.vp.Y, step)
	w, h := float64(size.Width), float64(size.Height)
	switch bg {
	case domain.BackgroundGrid:
		for x := ox; x < w; x += step {
			l := canvas.NewLine(patternColor)
			l.Position1, l.Position2 = fyne.NewPos(float32(x), 0), fyne.NewPos(float32(x), size.Height)
			p.objs = append(p.objs, l)
		}
		for y := oy; y < h; y += step {
			l := canvas.NewLine(patternColor)
			l.Position1, l.Position2 = fyne.NewPos(0, float32(y)), fyne.NewPos(size.Width, float32(y))
			p.objs = append(p.objs, l)
		}
	case domain.BackgroundDots, domain.BackgroundPixels:
		if (w/step)*(h/step) > maxPatternMarks {
			return
		}
		side := float32(2)
		if bg == domain.BackgroundPixels {
			side = 1
		}
		for x := ox; x < w; x += step {
			for y := oy; y < h; y += step {
				m := canvas.NewRectangle(patternColor)
				m.Move(fyne.NewPos(float32(x), float32(y)))
				m.Resize(fyne.NewSize(side, side))
				p.objs = append(p.objs, m)
			}
		}
	}
}

func drawNode(p *painter, v interact.NodeView) {
	n := v.Node
	stroke := hexColor(n.Color(), 0)
	width := float32(1.5)
	switch {
	case v.Selected:
		stroke, width = selectColor, 2.5
	case v.Hovered:
		stroke, width = hoverColor, 2.5
	}
	if n.IsZone() {
		p.rect(hexColor(n.Color(), n.Alpha()), stroke, width, n.Rect())
		p.text(n.Label, vector.Pt{X: n.X + n.W/2, Y: n.Y + 14}, 12, true)
	} else {
		box := v.Geometry.Rect()
		p.rect(color.White, stroke, width, box)
		if m := export.Monogram(n.Icon); m != "" {
			p.text(m, box.Center(), 18, true)
		}
		p.text(n.Label, vector.Pt{X: box.Center().X, Y: box.Max().Y + 12}, 11, false)
	}
	if v.Selected {
		p.rect(selectColor, selectColor, 0, v.Resize)
	}
}

func drawEdge(p *painter, e interact.EdgeView) {
	col := hexColor(e.Color, 0)
	if e.Selected {
		col = selectColor
	}
	width := float32(max(1, e.Width*p.vp.K))
	pts := e.Path.Points()
	for i := 1; i < len(pts); i++ {
		p.line(col, width, pts[i-1], pts[i])
	}
	if e.Preview || len(pts) < 2 {
		return
	}
	marker(p, e.MarkerStart, pts[0], pts[1], col, e.Width)
	marker(p, e.MarkerEnd, pts[len(pts)-1], pts[len(pts)-2], col, e.Width)
	if e.Label != "" {
		p.rect(labelBG, col, 1, e.LabelRect)
		for i, line := range routing.LabelLines(e.Label) {
			p.text(line, vector.Pt{X: e.LabelRect.Center().X, Y: e.LabelRect.Y + 10 + 12*float64(i)}, 9, false)
		}
	}
	for _, h := range e.Handles {
		p.dot(selectColor, h, 5)
	}
}

func marker(p *painter, m domain.Marker, tip, from vector.Pt, col color.Color, width float64) {
	size := max(8, width*4)
	switch m {
	case domain.MarkerCircle:
		p.dot(col, tip, float32(size/2*p.vp.K))
	case domain.MarkerArrow:
		d := tip.Sub(from)
		l := math.Hypot(d.X, d.Y)
		if l == 0 {
			return
		}
		ux, uy := d.X/l, d.Y/l
		base := vector.Pt{X: tip.X - ux*size, Y: tip.Y - uy*size}
		left := vector.Pt{X: base.X - uy*size/2, Y: base.Y + ux*size/2}
		right := vector.Pt{X: base.X + uy*size/2, Y: base.Y - ux*size/2}
		w := float32(max(1, width*p.vp.K))
		p.line(col, w, tip, left)
		p.line(col, w, tip, right)
	}
}
