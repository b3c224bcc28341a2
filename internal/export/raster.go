/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"sketchboard/internal/vector"
)

// RasterSurface draws into an RGBA image with an anti-aliasing scanner.
type RasterSurface struct {
	img    *image.RGBA
	filler *rasterx.Filler
	dasher *rasterx.Dasher
	m      vector.Affine2D
	device vector.Affine2D
}

func NewRasterSurface(width, height int) *RasterSurface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return NewRasterSurfaceFor(img)
}

// NewRasterSurfaceFor draws into an existing image.
func NewRasterSurfaceFor(img *image.RGBA) *RasterSurface {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return &RasterSurface{
		img:    img,
		filler: rasterx.NewFiller(w, h, scanner),
		dasher: rasterx.NewDasher(w, h, scanner),
		m:      vector.Identity,
		device: vector.Identity,
	}
}

// SetDeviceScale maps surface units onto k pixels each, so a board laid out in
// logical units can be drawn at a display's native resolution.
func (s *RasterSurface) SetDeviceScale(k float64) {
	if k <= 0 {
		k = 1
	}
	s.device = vector.Scale(k, k)
	s.m = s.device
}

func (s *RasterSurface) Image() *image.RGBA { return s.img }

func (s *RasterSurface) Clear(bg vector.Color) {
	draw.Draw(s.img, s.img.Bounds(), &image.Uniform{C: toNRGBA(bg)}, image.Point{}, draw.Src)
}

func (s *RasterSurface) SetTransform(m vector.Affine2D) { s.m = s.device.Mul(m) }

func (s *RasterSurface) FillPath(p vector.Path, c vector.Color) {
	if !c.Visible() {
		return
	}
	s.filler.Clear()
	s.filler.SetWinding(true)
	addPath(s.filler, p.Transform(s.m))
	s.filler.SetColor(toNRGBA(c))
	s.filler.Draw()
}

func (s *RasterSurface) StrokePath(p vector.Path, st vector.Stroke) {
	if !st.Color.Visible() {
		return
	}
	k := s.m.ScaleFactor()
	width := st.Width * k
	if width <= 0 {
		return
	}
	var dashes []float64
	for _, d := range st.Dash {
		dashes = append(dashes, d*k)
	}
	capFn := rasterx.ButtCap
	switch st.Cap {
	case vector.CapRound:
		capFn = rasterx.RoundCap
	case vector.CapSquare:
		capFn = rasterx.SquareCap
	}
	s.dasher.Clear()
	s.dasher.SetStroke(fixed.Int26_6(width*64), 4*64, capFn, capFn, rasterx.RoundGap, rasterx.Round, dashes, 0)
	addPath(s.dasher, p.Transform(s.m))
	s.dasher.SetColor(toNRGBA(st.Color))
	s.dasher.Draw()
}

// EncodePNG writes the current image.
func (s *RasterSurface) EncodePNG(w io.Writer) error { return png.Encode(w, s.img) }

func addPath(a rasterx.Adder, p vector.Path) {
	open := false
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			if open {
				a.Stop(false)
			}
			a.Start(toFixed(c.Data[0], c.Data[1]))
			open = true
		case vector.LineTo:
			a.Line(toFixed(c.Data[0], c.Data[1]))
		case vector.CubicTo:
			a.CubeBezier(toFixed(c.Data[0], c.Data[1]), toFixed(c.Data[2], c.Data[3]), toFixed(c.Data[4], c.Data[5]))
		case vector.Close:
			if open {
				a.Stop(true)
				open = false
			}
		}
	}
	if open {
		a.Stop(false)
	}
}

func toFixed(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func toNRGBA(c vector.Color) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
