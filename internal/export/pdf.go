/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"sketchboard/internal/vector"
)

// PDFSurface draws onto a single page sized to the board, in points.
type PDFSurface struct {
	pdf  *gofpdf.Fpdf
	w, h float64
	m    vector.Affine2D
}

func NewPDFSurface(width, height float64) *PDFSurface {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("sketchboard", false)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: width, Ht: height})
	return &PDFSurface{pdf: pdf, w: width, h: height, m: vector.Identity}
}

func (s *PDFSurface) Clear(bg vector.Color) {
	if !bg.Visible() {
		return
	}
	s.setFill(bg)
	s.pdf.Rect(0, 0, s.w, s.h, "F")
	s.pdf.SetAlpha(1, "Normal")
}

func (s *PDFSurface) SetTransform(m vector.Affine2D) { s.m = m }

func (s *PDFSurface) FillPath(p vector.Path, c vector.Color) {
	if !c.Visible() || len(p.Cmds) == 0 {
		return
	}
	s.setFill(c)
	s.trace(p.Transform(s.m))
	s.pdf.DrawPath("f")
	s.pdf.SetAlpha(1, "Normal")
}

func (s *PDFSurface) StrokePath(p vector.Path, st vector.Stroke) {
	if !st.Color.Visible() || len(p.Cmds) == 0 {
		return
	}
	k := s.m.ScaleFactor()
	s.pdf.SetDrawColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	s.pdf.SetAlpha(float64(st.Color.A)/255, "Normal")
	s.pdf.SetLineWidth(st.Width * k)
	s.pdf.SetLineCapStyle(linecap(st.Cap))
	s.pdf.SetLineJoinStyle("round")
	if len(st.Dash) > 0 {
		dash := make([]float64, len(st.Dash))
		for i, d := range st.Dash {
			dash[i] = d * k
		}
		s.pdf.SetDashPattern(dash, 0)
	}
	s.trace(p.Transform(s.m))
	s.pdf.DrawPath("D")
	if len(st.Dash) > 0 {
		s.pdf.SetDashPattern([]float64{}, 0)
	}
	s.pdf.SetAlpha(1, "Normal")
}

// Output writes the finished document.
func (s *PDFSurface) Output(w io.Writer) error { return s.pdf.Output(w) }

// Err reports the first error gofpdf recorded.
func (s *PDFSurface) Err() error { return s.pdf.Error() }

func (s *PDFSurface) setFill(c vector.Color) {
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func (s *PDFSurface) trace(p vector.Path) {
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			s.pdf.MoveTo(c.Data[0], c.Data[1])
		case vector.LineTo:
			s.pdf.LineTo(c.Data[0], c.Data[1])
		case vector.CubicTo:
			s.pdf.CurveBezierCubicTo(c.Data[0], c.Data[1], c.Data[2], c.Data[3], c.Data[4], c.Data[5])
		case vector.Close:
			s.pdf.ClosePath()
		}
	}
}
