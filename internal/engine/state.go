/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"sketchboard/internal/domain"
	"sketchboard/internal/shape"
	"sketchboard/internal/vector"
)

// State is the dispatcher's gesture state.
type State uint8

const (
	StateIdle State = iota
	StatePanning
	StateFreehandDrawing
	StateShapeDrafting
	StateMoving
	StateResizing
)

func (s State) String() string {
	switch s {
	case StatePanning:
		return "panning"
	case StateFreehandDrawing:
		return "freehand-drawing"
	case StateShapeDrafting:
		return "shape-drafting"
	case StateMoving:
		return "moving"
	case StateResizing:
		return "resizing"
	}
	return "idle"
}

// session is the state of one gesture, from pointer-down to pointer-up.
// It is replaced wholesale on pointer-up, cancel and tool switch.
type session struct {
	state   State
	pressed bool
	tool    Tool

	startScreen vector.Pt
	startWorld  vector.Pt
	lastWorld   vector.Pt

	// freehand buffer
	segments []domain.Segment
	// shape drafting candidate
	draft    domain.Segment
	hasDraft bool
	// move/resize: snapshot of the selected head when the drag started
	target  domain.ShapeRevision
	dir     shape.Direction
	preview domain.Segment
	moved   bool
}
