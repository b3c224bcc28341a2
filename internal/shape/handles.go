/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import "sketchboard/internal/vector"

// Direction identifies a resize handle on the selection box.
type Direction uint8

const (
	DirNone Direction = iota
	DirN
	DirS
	DirE
	DirW
	DirNE
	DirNW
	DirSE
	DirSW
)

var directionNames = [...]string{"none", "n", "s", "e", "w", "ne", "nw", "se", "sw"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

func (d Direction) North() bool { return d == DirN || d == DirNE || d == DirNW }
func (d Direction) South() bool { return d == DirS || d == DirSE || d == DirSW }
func (d Direction) East() bool  { return d == DirE || d == DirNE || d == DirSE }
func (d Direction) West() bool  { return d == DirW || d == DirNW || d == DirSW }

// Corner reports whether d moves both axes.
func (d Direction) Corner() bool { return d == DirNE || d == DirNW || d == DirSE || d == DirSW }

// Opposite returns the handle on the other side of the box.
func (d Direction) Opposite() Direction {
	switch d {
	case DirN:
		return DirS
	case DirS:
		return DirN
	case DirE:
		return DirW
	case DirW:
		return DirE
	case DirNE:
		return DirSW
	case DirSW:
		return DirNE
	case DirNW:
		return DirSE
	case DirSE:
		return DirNW
	}
	return DirNone
}

// Cursor is the CSS-style resize cursor name for the handle.
func (d Direction) Cursor() string {
	switch d {
	case DirN, DirS:
		return "ns-resize"
	case DirE, DirW:
		return "ew-resize"
	case DirNE, DirSW:
		return "nesw-resize"
	case DirNW, DirSE:
		return "nwse-resize"
	}
	return ""
}

// Handle is one hit zone around a selection.
type Handle struct {
	Dir  Direction
	Zone vector.Rect
}

// Padded is the selection box: the shape bounds grown by pad on every side.
func Padded(b vector.Rect, pad float64) vector.Rect { return b.Inset(-pad, -pad) }

// Handles returns the handle zones around the padded box b. Each zone extends pad in every
// direction from its corner or edge. Symmetric shapes only get corner handles since edge handles
// would break the aspect lock.
func Handles(b vector.Rect, pad float64, symmetric bool) []Handle {
	box := Padded(b, pad)
	x0, y0 := box.X, box.Y
	x1, y1 := box.X+box.W, box.Y+box.H
	corner := func(d Direction, x, y float64) Handle {
		return Handle{Dir: d, Zone: vector.R(x-pad, y-pad, 2*pad, 2*pad)}
	}
	out := []Handle{
		corner(DirNW, x0, y0),
		corner(DirNE, x1, y0),
		corner(DirSE, x1, y1),
		corner(DirSW, x0, y1),
	}
	if symmetric {
		return out
	}
	innerW, innerH := box.W-2*pad, box.H-2*pad
	return append(out,
		Handle{Dir: DirN, Zone: vector.R(x0+pad, y0-pad, innerW, 2*pad)},
		Handle{Dir: DirS, Zone: vector.R(x0+pad, y1-pad, innerW, 2*pad)},
		Handle{Dir: DirW, Zone: vector.R(x0-pad, y0+pad, 2*pad, innerH)},
		Handle{Dir: DirE, Zone: vector.R(x1-pad, y0+pad, 2*pad, innerH)},
	)
}

// HandleAt returns the handle under p, corners first, or DirNone.
func HandleAt(b vector.Rect, p vector.Pt, pad float64, symmetric bool) Direction {
	for _, h := range Handles(b, pad, symmetric) {
		if h.Zone.W > 0 && h.Zone.H > 0 && h.Zone.Contains(p) {
			return h.Dir
		}
	}
	return DirNone
}
