/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"fmt"

	"sketchboard/internal/domain"
)

// Tool is the active pointer tool chosen in the toolbar.
type Tool uint8

const (
	ToolPan Tool = iota
	ToolSelect
	ToolFill
	ToolDraw
	ToolEraser
	ToolLine
	ToolCircle
	ToolSquare
	ToolRectangle
	ToolTriangleUp
	ToolTriangleDown
	ToolTriangleLeft
	ToolTriangleRight

	toolCount // sentinel, keep last
)

var toolNames = [toolCount]string{
	ToolPan:           "pan",
	ToolSelect:        "select",
	ToolFill:          "fill",
	ToolDraw:          "draw",
	ToolEraser:        "eraser",
	ToolLine:          "line",
	ToolCircle:        "circle",
	ToolSquare:        "square",
	ToolRectangle:     "rectangle",
	ToolTriangleUp:    "triangle-up",
	ToolTriangleDown:  "triangle-down",
	ToolTriangleLeft:  "triangle-left",
	ToolTriangleRight: "triangle-right",
}

var toolKinds = map[Tool]domain.ToolKind{
	ToolDraw:          domain.FreehandDraw,
	ToolEraser:        domain.Eraser,
	ToolLine:          domain.Line,
	ToolCircle:        domain.Circle,
	ToolSquare:        domain.Square,
	ToolRectangle:     domain.Rectangle,
	ToolTriangleUp:    domain.TriangleUp,
	ToolTriangleDown:  domain.TriangleDown,
	ToolTriangleLeft:  domain.TriangleLeft,
	ToolTriangleRight: domain.TriangleRight,
}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	out := make([]Tool, 0, toolCount)
	for t := Tool(0); t < toolCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Tool) Valid() bool { return t < toolCount }

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tool(%d)", uint8(t))
	}
	return toolNames[t]
}

// ParseTool resolves a tool by name.
func ParseTool(s string) (Tool, error) {
	for t, name := range toolNames {
		if name == s {
			return Tool(t), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// Kind returns the shape kind a drawing tool produces.
func (t Tool) Kind() (domain.ToolKind, bool) {
	k, ok := toolKinds[t]
	return k, ok
}

func (t Tool) freehand() bool {
	k, ok := t.Kind()
	return ok && k.Freehand()
}

func (t Tool) parametric() bool {
	k, ok := t.Kind()
	return ok && k.Parametric()
}
