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

// Resize moves the side(s) of seg named by dir by the drag delta d and returns the new segment.
// seg must be the geometry captured when the drag started; d is the total delta since then.
//
// Anchors are sign-aware: on each axis, whichever of From/To is numerically greater is the far
// edge moved by an east or south handle, and the other endpoint is moved by west or north.
// Dragging past the opposite side flips the box without changing which endpoint moves.
//
// Symmetric shapes resize from their dragged corner against the fixed opposite corner and the
// result is normalized so that |width| == |height|.
func Resize(seg domain.Segment, dir Direction, d vector.Pt, symmetric bool) domain.Segment {
	if dir == DirNone {
		return seg
	}
	if symmetric {
		return resizeSymmetric(seg, dir, d)
	}
	out := seg
	if dir.East() || dir.West() {
		far := seg.To.X >= seg.From.X // To is the east edge
		if dir.East() == far {
			out.To.X += d.X
		} else {
			out.From.X += d.X
		}
	}
	if dir.North() || dir.South() {
		far := seg.To.Y >= seg.From.Y // To is the south edge
		if dir.South() == far {
			out.To.Y += d.Y
		} else {
			out.From.Y += d.Y
		}
	}
	return out
}

func resizeSymmetric(seg domain.Segment, dir Direction, d vector.Pt) domain.Segment {
	// edges are projected onto the clockwise corner, keeping only the edge's own axis
	switch dir {
	case DirN:
		dir, d = DirNE, vector.Pt{Y: d.Y}
	case DirE:
		dir, d = DirSE, vector.Pt{X: d.X}
	case DirS:
		dir, d = DirSW, vector.Pt{Y: d.Y}
	case DirW:
		dir, d = DirNW, vector.Pt{X: d.X}
	}
	b := Bounds(seg)
	anchor := cornerOf(b, dir.Opposite())
	moving := cornerOf(b, dir).Add(d)
	return domain.Segment{From: anchor, To: Normalize(anchor, moving)}
}

func cornerOf(b vector.Rect, dir Direction) vector.Pt {
	p := b.Min()
	if dir.East() {
		p.X = b.X + b.W
	}
	if dir.South() {
		p.Y = b.Y + b.H
	}
	return p
}

// Move translates a parametric segment by d.
func Move(seg domain.Segment, d vector.Pt) domain.Segment {
	return domain.Segment{From: seg.From.Add(d), To: seg.To.Add(d)}
}
