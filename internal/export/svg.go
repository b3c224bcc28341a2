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
	"io"
	"strconv"
	"strings"

	"sketchboard/internal/vector"
)

// SVGSurface collects drawing calls as SVG elements. Coordinates are
// transformed before they are written, so the document has no transform attributes.
type SVGSurface struct {
	w, h float64
	m    vector.Affine2D
	body bytes.Buffer
}

func NewSVGSurface(width, height float64) *SVGSurface {
	return &SVGSurface{w: width, h: height, m: vector.Identity}
}

func (s *SVGSurface) Clear(bg vector.Color) {
	s.body.Reset()
	if !bg.Visible() {
		return
	}
	fmt.Fprintf(&s.body, "  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"%s/>\n",
		num(s.w), num(s.h), rgb(bg), opacityAttr("fill-opacity", bg))
}

func (s *SVGSurface) SetTransform(m vector.Affine2D) { s.m = m }

func (s *SVGSurface) FillPath(p vector.Path, c vector.Color) {
	if !c.Visible() {
		return
	}
	fmt.Fprintf(&s.body, "  <path d=\"%s\" fill=\"%s\"%s stroke=\"none\"/>\n",
		pathData(p.Transform(s.m)), rgb(c), opacityAttr("fill-opacity", c))
}

func (s *SVGSurface) StrokePath(p vector.Path, st vector.Stroke) {
	if !st.Color.Visible() {
		return
	}
	k := s.m.ScaleFactor()
	var extra strings.Builder
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = num(d * k)
		}
		fmt.Fprintf(&extra, " stroke-dasharray=\"%s\"", strings.Join(parts, " "))
	}
	fmt.Fprintf(&s.body, "  <path d=\"%s\" fill=\"none\" stroke=\"%s\"%s stroke-width=\"%s\" stroke-linecap=\"%s\" stroke-linejoin=\"round\"%s/>\n",
		pathData(p.Transform(s.m)), rgb(st.Color), opacityAttr("stroke-opacity", st.Color), num(st.Width*k), linecap(st.Cap), extra.String())
}

// WriteTo writes the complete SVG document.
func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	var out bytes.Buffer
	fmt.Fprintf(&out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&out, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(s.w), num(s.h), num(s.w), num(s.h))
	out.Write(s.body.Bytes())
	out.WriteString("</svg>\n")
	return out.WriteTo(w)
}

func pathData(p vector.Path) string {
	var b strings.Builder
	for _, c := range p.Cmds {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case vector.MoveTo:
			b.WriteString("M" + num(c.Data[0]) + " " + num(c.Data[1]))
		case vector.LineTo:
			b.WriteString("L" + num(c.Data[0]) + " " + num(c.Data[1]))
		case vector.CubicTo:
			b.WriteString("C" + num(c.Data[0]) + " " + num(c.Data[1]) + " " + num(c.Data[2]) + " " +
				num(c.Data[3]) + " " + num(c.Data[4]) + " " + num(c.Data[5]))
		case vector.Close:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(vector.FloatRound(v, 3), 'f', -1, 64)
}

func rgb(c vector.Color) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func opacityAttr(name string, c vector.Color) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(" %s=\"%s\"", name, num(float64(c.A)/255))
}

func linecap(c vector.LineCap) string {
	switch c {
	case vector.CapRound:
		return "round"
	case vector.CapSquare:
		return "square"
	default:
		return "butt"
	}
}
