/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package script reads gesture scripts: YAML lists of pointer, wheel and
// toolbar steps that can be replayed against an engine. Scripts drive the
// replay command and make board scenarios reproducible in tests.
package script

import (
	"fmt"

	"sketchboard/internal/engine"
	"sketchboard/internal/vector"
)

// Script is a parsed gesture script.
type Script struct {
	Name string
	// Size resizes the viewport before the first step when non-zero.
	Size  vector.Size
	Steps []Step
}

type StepKind int

const (
	StepTool StepKind = iota
	StepDown
	StepMove
	StepUp
	StepDrag
	StepWheel
	StepAction
	StepStrokeColor
	StepFillColor
	StepWidth
	StepResize
)

var stepNames = map[StepKind]string{
	StepTool:        "tool",
	StepDown:        "down",
	StepMove:        "move",
	StepUp:          "up",
	StepDrag:        "drag",
	StepWheel:       "wheel",
	StepAction:      "action",
	StepStrokeColor: "stroke_color",
	StepFillColor:   "fill_color",
	StepWidth:       "width",
	StepResize:      "resize",
}

func (k StepKind) String() string {
	if s, ok := stepNames[k]; ok {
		return s
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one scripted input. Only the fields relevant to Kind are set.
// Points are screen coordinates.
type Step struct {
	Kind   StepKind
	Line   int // 1-based line in the source
	Tool   engine.Tool
	Points []vector.Pt // one for down/move/up, two or more for drag
	Delta  float64
	Action engine.ActionKind
	Color  string
	Width  float64
	Size   vector.Size
}

// Error is a problem found in one step.
type Error struct {
	Line    int
	Message string
}

func (e Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}
