/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "fmt"

// ToolKind is the closed set of shape kinds a revision can carry.
type ToolKind uint8

const (
	FreehandDraw ToolKind = iota
	Eraser
	Line
	Circle
	Square
	Rectangle
	TriangleUp
	TriangleDown
	TriangleLeft
	TriangleRight
	// FillChange marks a fill-only edit; the engine keeps the edited shape's own kind on the revision.
	FillChange

	toolKindCount // sentinel, keep last
)

var toolKindNames = [toolKindCount]string{
	FreehandDraw:  "FreehandDraw",
	Eraser:        "Eraser",
	Line:          "Line",
	Circle:        "Circle",
	Square:        "Square",
	Rectangle:     "Rectangle",
	TriangleUp:    "TriangleUp",
	TriangleDown:  "TriangleDown",
	TriangleLeft:  "TriangleLeft",
	TriangleRight: "TriangleRight",
	FillChange:    "FillChange",
}

// ToolKinds lists every kind in declaration order.
func ToolKinds() []ToolKind {
	out := make([]ToolKind, 0, toolKindCount)
	for k := ToolKind(0); k < toolKindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k ToolKind) Valid() bool { return k < toolKindCount }

func (k ToolKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("ToolKind(%d)", uint8(k))
	}
	return toolKindNames[k]
}

// ParseToolKind resolves a kind by its document name.
func ParseToolKind(s string) (ToolKind, error) {
	for k, name := range toolKindNames {
		if name == s {
			return ToolKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown tool kind %q", s)
}

func (k ToolKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("marshal tool kind: invalid value %d", uint8(k))
	}
	return []byte(toolKindNames[k]), nil
}

func (k *ToolKind) UnmarshalText(b []byte) error {
	v, err := ParseToolKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Freehand reports whether the kind is a multi-segment stroke.
func (k ToolKind) Freehand() bool { return k == FreehandDraw || k == Eraser }

// Parametric reports whether the kind is a single-segment shape defined by two corners.
func (k ToolKind) Parametric() bool {
	switch k {
	case Line, Circle, Square, Rectangle, TriangleUp, TriangleDown, TriangleLeft, TriangleRight:
		return true
	}
	return false
}

// Symmetric shapes keep equal width and height.
func (k ToolKind) Symmetric() bool { return k == Circle || k == Square }

// Selectable kinds take part in pointer hit testing.
func (k ToolKind) Selectable() bool { return k.Parametric() }

// Fillable kinds can be targets of a fill click. Lines enclose no area.
func (k ToolKind) Fillable() bool { return k.Parametric() && k != Line }
