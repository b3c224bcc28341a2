/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a collapsed scene into drawing instructions for a Surface.
// Surfaces own the pixels; this package only issues paths and styles.
package render

import (
	"sketchboard/internal/domain"
	"sketchboard/internal/shape"
	"sketchboard/internal/vector"
)

// Surface is the drawing capability the board renders through.
// Paths are in world space; SetTransform maps them to the surface and widths scale with it.
type Surface interface {
	Clear(background vector.Color)
	SetTransform(m vector.Affine2D)
	StrokePath(p vector.Path, s vector.Stroke)
	FillPath(p vector.Path, c vector.Color)
}

// SelectionColor paints the selection outline and handles.
var SelectionColor = vector.Color{R: 0x3b, G: 0x82, B: 0xf6, A: 255}

const (
	selectionWidthPx = 2
	selectionDashPx  = 10
	handleSizePx     = 8
)

// Selection describes the outline drawn around the selected shape.
type Selection struct {
	Bounds    vector.Rect
	Padding   float64 // world units
	Symmetric bool
	// PixelSize is the world length of one screen pixel (1/zoom).
	PixelSize float64
}

// EraserCursorColor outlines the eraser footprint under the pointer.
var EraserCursorColor = vector.Color{R: 0x6b, G: 0x72, B: 0x80, A: 255}

// EraserCursor is the circle that follows the pointer while the eraser is active.
type EraserCursor struct {
	Center    vector.Pt // world
	Diameter  float64   // world units, the width of the stroke the eraser will record
	PixelSize float64
}

// Frame is everything needed to draw one board image.
type Frame struct {
	Background vector.Color
	Transform  vector.Affine2D
	Shapes     []domain.ShapeRevision
	Selection  *Selection
	Eraser     *EraserCursor
}

// Draw clears s and paints the frame in stacking order.
func Draw(s Surface, f Frame) {
	s.SetTransform(vector.Identity)
	s.Clear(f.Background)
	s.SetTransform(f.Transform)
	for _, r := range f.Shapes {
		DrawShape(s, r)
	}
	if f.Selection != nil {
		DrawSelection(s, *f.Selection)
	}
	if f.Eraser != nil {
		DrawEraserCursor(s, *f.Eraser)
	}
}

// DrawShape fills then strokes one revision.
func DrawShape(s Surface, r domain.ShapeRevision) {
	p, closed := shape.Outline(r)
	if len(p.Cmds) == 0 {
		return
	}
	if closed {
		if fill := vector.MustColor(r.FillColor); fill.Visible() {
			s.FillPath(p, fill)
		}
	}
	s.StrokePath(p, vector.Stroke{Color: vector.MustColor(r.StrokeColor), Width: r.StrokeWidth, Cap: vector.CapRound})
}

// DrawSelection draws the dashed padded box and the handle squares.
func DrawSelection(s Surface, sel Selection) {
	px := sel.PixelSize
	if px <= 0 {
		px = 1
	}
	var box vector.Path
	b := shape.Padded(sel.Bounds, sel.Padding)
	box.Polygon(b.Min(), vector.Pt{X: b.X + b.W, Y: b.Y}, b.Max(), vector.Pt{X: b.X, Y: b.Y + b.H})
	s.StrokePath(box, vector.Stroke{
		Color: SelectionColor,
		Width: selectionWidthPx * px,
		Dash:  []float64{selectionDashPx * px, selectionDashPx * px},
	})
	half := handleSizePx * px / 2
	for _, h := range shape.Handles(sel.Bounds, sel.Padding, sel.Symmetric) {
		c := h.Zone.Center()
		var sq vector.Path
		sq.Polygon(vector.Pt{X: c.X - half, Y: c.Y - half}, vector.Pt{X: c.X + half, Y: c.Y - half},
			vector.Pt{X: c.X + half, Y: c.Y + half}, vector.Pt{X: c.X - half, Y: c.Y + half})
		s.FillPath(sq, vector.White)
		s.StrokePath(sq, vector.Stroke{Color: SelectionColor, Width: px})
	}
}

// DrawEraserCursor outlines the eraser footprint with a one pixel circle.
func DrawEraserCursor(s Surface, c EraserCursor) {
	if c.Diameter <= 0 {
		return
	}
	px := c.PixelSize
	if px <= 0 {
		px = 1
	}
	r := c.Diameter / 2
	var p vector.Path
	p.Ellipse(vector.R(c.Center.X-r, c.Center.Y-r, c.Diameter, c.Diameter))
	s.StrokePath(p, vector.Stroke{Color: EraserCursorColor, Width: px})
}
