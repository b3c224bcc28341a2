/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"sketchboard/internal/domain"
	"sketchboard/internal/vector"
)

// Outline builds the drawable path of a revision in world space.
// closed reports whether the path encloses an area that may be filled.
func Outline(r domain.ShapeRevision) (p vector.Path, closed bool) {
	switch r.ToolKind {
	case domain.FreehandDraw, domain.Eraser:
		for _, s := range r.Segments {
			p.MoveTo(s.From.X, s.From.Y)
			p.LineTo(s.To.X, s.To.Y)
		}
		return p, false
	case domain.FillChange:
		// fill-only edits carry no geometry of their own
		return p, false
	}
	seg, ok := r.Primary()
	if !ok {
		return p, false
	}
	switch r.ToolKind {
	case domain.Line:
		p.MoveTo(seg.From.X, seg.From.Y)
		p.LineTo(seg.To.X, seg.To.Y)
		return p, false
	case domain.Rectangle:
		p.Polygon(seg.From, vector.Pt{X: seg.To.X, Y: seg.From.Y}, seg.To, vector.Pt{X: seg.From.X, Y: seg.To.Y})
		return p, true
	case domain.Square:
		side, sx, sy := inscribed(seg)
		f := seg.From
		p.Polygon(f, vector.Pt{X: f.X + sx*side, Y: f.Y}, vector.Pt{X: f.X + sx*side, Y: f.Y + sy*side}, vector.Pt{X: f.X, Y: f.Y + sy*side})
		return p, true
	case domain.Circle:
		d, sx, sy := inscribed(seg)
		p.Ellipse(vector.RectFromCorners(seg.From, vector.Pt{X: seg.From.X + sx*d, Y: seg.From.Y + sy*d}))
		return p, true
	case domain.TriangleUp, domain.TriangleDown, domain.TriangleLeft, domain.TriangleRight:
		p.Polygon(triangle(r.ToolKind, Bounds(seg))...)
		return p, true
	}
	return p, false
}

// inscribed returns the side of the largest square inside the segment's box and the
// direction from the From corner towards the To corner on each axis.
func inscribed(s domain.Segment) (side, sx, sy float64) {
	w, h := s.To.X-s.From.X, s.To.Y-s.From.Y
	return min(abs(w), abs(h)), vector.Sign(w), vector.Sign(h)
}

func triangle(k domain.ToolKind, b vector.Rect) []vector.Pt {
	minX, minY := b.X, b.Y
	maxX, maxY := b.X+b.W, b.Y+b.H
	midX, midY := b.X+b.W/2, b.Y+b.H/2
	switch k {
	case domain.TriangleDown:
		return []vector.Pt{{X: midX, Y: maxY}, {X: minX, Y: minY}, {X: maxX, Y: minY}}
	case domain.TriangleLeft:
		return []vector.Pt{{X: minX, Y: midY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}}
	case domain.TriangleRight:
		return []vector.Pt{{X: maxX, Y: midY}, {X: minX, Y: maxY}, {X: minX, Y: minY}}
	default:
		return []vector.Pt{{X: midX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}}
	}
}
