/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape implements the geometry of board shapes: bounding boxes, hit testing,
// per-kind outline construction and the resize/move transforms.
package shape

import (
	"sketchboard/internal/domain"
	"sketchboard/internal/vector"
)

// Bounds returns the axis-aligned bounding rectangle of a segment, independent of draw direction.
func Bounds(s domain.Segment) vector.Rect { return vector.RectFromCorners(s.From, s.To) }

// RevisionBounds is the union of all segment bounds of r.
func RevisionBounds(r domain.ShapeRevision) (vector.Rect, bool) {
	if len(r.Segments) == 0 {
		return vector.Rect{}, false
	}
	b := Bounds(r.Segments[0])
	for _, s := range r.Segments[1:] {
		b = b.Union(Bounds(s))
	}
	return b, true
}

// SceneBounds is the union of the bounds of all shapes, grown by half their stroke width.
func SceneBounds(shapes []domain.ShapeRevision) (vector.Rect, bool) {
	var (
		out   vector.Rect
		found bool
	)
	for _, r := range shapes {
		b, ok := RevisionBounds(r)
		if !ok {
			continue
		}
		b = b.Inset(-r.StrokeWidth/2, -r.StrokeWidth/2)
		if !found {
			out, found = b, true
			continue
		}
		out = out.Union(b)
	}
	return out, found
}

// Normalize returns the point that makes the span anchor->p square, keeping the sign of each axis.
// The side is the larger of the two extents.
func Normalize(anchor, p vector.Pt) vector.Pt {
	w, h := p.X-anchor.X, p.Y-anchor.Y
	d := max(abs(w), abs(h))
	return vector.Pt{X: anchor.X + vector.Sign(w)*d, Y: anchor.Y + vector.Sign(h)*d}
}

// Translate moves every segment of r by d.
func Translate(r domain.ShapeRevision, d vector.Pt) domain.ShapeRevision {
	out := r.Clone()
	for i := range out.Segments {
		out.Segments[i].From = out.Segments[i].From.Add(d)
		out.Segments[i].To = out.Segments[i].To.Add(d)
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
