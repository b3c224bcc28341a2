/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the drawing data model: coordinates, segments and the shape revision that is
// the unit of the board's append-only log. JSON field names are the board document format.

import "sketchboard/internal/vector"

// Coordinate is a point in world space, independent of pan and zoom.
type Coordinate = vector.Pt

// Segment is one drawable span. Parametric shapes use From/To as opposite bounding-box corners.
type Segment struct {
	From Coordinate `json:"from"`
	To   Coordinate `json:"to"`
}

// ShapeRevision describes the full state of one logical shape at one point in time.
// Revisions are immutable once appended; edits append a new revision with the same ID.
type ShapeRevision struct {
	ID          string    `json:"id"`
	ToolKind    ToolKind  `json:"toolKind"`
	StrokeColor string    `json:"strokeColor"`
	FillColor   string    `json:"fillColor"`
	StrokeWidth float64   `json:"strokeWidth"`
	ZIndex      int       `json:"zIndex"`
	Segments    []Segment `json:"segments"`
	Disabled    bool      `json:"disabled"`
}

// Clone returns a deep copy so that edits never alias the segments of a logged revision.
func (r ShapeRevision) Clone() ShapeRevision {
	out := r
	if r.Segments != nil {
		out.Segments = make([]Segment, len(r.Segments))
		copy(out.Segments, r.Segments)
	}
	return out
}

// Primary returns the first segment, which carries the geometry of parametric shapes.
func (r ShapeRevision) Primary() (Segment, bool) {
	if len(r.Segments) == 0 {
		return Segment{}, false
	}
	return r.Segments[0], true
}

// WithSegment returns a copy whose geometry is replaced by the single segment s.
func (r ShapeRevision) WithSegment(s Segment) ShapeRevision {
	out := r
	out.Segments = []Segment{s}
	return out
}
