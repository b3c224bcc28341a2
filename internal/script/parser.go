/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"sketchboard/internal/engine"
	"sketchboard/internal/vector"
)

// Parse reads a YAML gesture script:
//
//	name: two shapes
//	size: [800, 600]
//	steps:
//	  - tool: rectangle
//	  - drag: [[10, 10], [60, 40]]
//	  - down: [30, 30]
//	  - move: [35, 30]
//	  - up: [35, 30]
//	  - wheel: -1
//	  - stroke_color: "#ff0000"
//	  - fill_color: transparent
//	  - width: 4
//	  - resize: [1024, 768]
//	  - action: undo
//
// Every step is a mapping with exactly one key. Actions that need a file
// (save, export, import) cannot be scripted. Parse keeps going after a bad
// step so that all problems are reported at once.
func Parse(data []byte) (Script, []Error) {
	var raw struct {
		Name  string      `yaml:"name"`
		Size  []float64   `yaml:"size"`
		Steps []yaml.Node `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Script{}, []Error{{Message: err.Error()}}
	}
	s := Script{Name: raw.Name, Steps: []Step{}}
	var errs []Error
	if raw.Size != nil {
		sz, err := sizeOf(raw.Size)
		if err != nil {
			errs = append(errs, Error{Message: "size: " + err.Error()})
		}
		s.Size = sz
	}
	for i := range raw.Steps {
		st, err := parseStep(&raw.Steps[i])
		if err != nil {
			errs = append(errs, Error{Line: raw.Steps[i].Line, Message: err.Error()})
			continue
		}
		s.Steps = append(s.Steps, st)
	}
	return s, errs
}

type rawStep struct {
	Tool        *string     `yaml:"tool"`
	Down        []float64   `yaml:"down"`
	Move        []float64   `yaml:"move"`
	Up          []float64   `yaml:"up"`
	Drag        [][]float64 `yaml:"drag"`
	Wheel       *float64    `yaml:"wheel"`
	Action      *string     `yaml:"action"`
	StrokeColor *string     `yaml:"stroke_color"`
	FillColor   *string     `yaml:"fill_color"`
	Width       *float64    `yaml:"width"`
	Resize      []float64   `yaml:"resize"`
}

func parseStep(n *yaml.Node) (Step, error) {
	if n.Kind != yaml.MappingNode {
		return Step{}, fmt.Errorf("step must be a mapping")
	}
	if len(n.Content) != 2 {
		keys := make([]string, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keys = append(keys, n.Content[i].Value)
		}
		return Step{}, fmt.Errorf("step needs exactly one key, got %q", strings.Join(keys, ", "))
	}
	key := n.Content[0].Value
	var r rawStep
	if err := n.Decode(&r); err != nil {
		return Step{}, fmt.Errorf("%s: %v", key, err)
	}
	st := Step{Line: n.Line}
	var err error
	switch {
	case r.Tool != nil:
		st.Kind = StepTool
		st.Tool, err = engine.ParseTool(strings.TrimSpace(*r.Tool))
	case r.Down != nil:
		st.Kind = StepDown
		st.Points, err = points(r.Down)
	case r.Move != nil:
		st.Kind = StepMove
		st.Points, err = points(r.Move)
	case r.Up != nil:
		st.Kind = StepUp
		st.Points, err = points(r.Up)
	case r.Drag != nil:
		st.Kind = StepDrag
		if len(r.Drag) < 2 {
			return Step{}, fmt.Errorf("drag needs at least two points")
		}
		for _, p := range r.Drag {
			var pts []vector.Pt
			if pts, err = points(p); err != nil {
				break
			}
			st.Points = append(st.Points, pts...)
		}
	case r.Wheel != nil:
		st.Kind = StepWheel
		st.Delta = *r.Wheel
	case r.Action != nil:
		st.Kind = StepAction
		st.Action, err = engine.ParseAction(strings.TrimSpace(*r.Action))
		if err == nil {
			switch st.Action {
			case engine.ActionSave, engine.ActionExport, engine.ActionImport:
				err = fmt.Errorf("action %q needs a file and cannot be scripted", st.Action)
			case engine.ActionSetStrokeColor, engine.ActionSetFillColor, engine.ActionSetStrokeWidth, engine.ActionSetTool:
				err = fmt.Errorf("action %q takes a value; use the %s step", st.Action, valueStepFor(st.Action))
			}
		}
	case r.StrokeColor != nil:
		st.Kind = StepStrokeColor
		st.Color, err = color(*r.StrokeColor)
	case r.FillColor != nil:
		st.Kind = StepFillColor
		st.Color, err = color(*r.FillColor)
	case r.Width != nil:
		st.Kind = StepWidth
		st.Width = *r.Width
		if st.Width <= 0 {
			err = fmt.Errorf("width must be positive, got %v", st.Width)
		}
	case r.Resize != nil:
		st.Kind = StepResize
		st.Size, err = sizeOf(r.Resize)
	default:
		return Step{}, fmt.Errorf("unknown step %q", key)
	}
	if err != nil {
		return Step{}, fmt.Errorf("%s: %w", st.Kind, err)
	}
	return st, nil
}

func points(v []float64) ([]vector.Pt, error) {
	if len(v) != 2 {
		return nil, fmt.Errorf("point needs [x, y], got %d values", len(v))
	}
	return []vector.Pt{{X: v[0], Y: v[1]}}, nil
}

func sizeOf(v []float64) (vector.Size, error) {
	if len(v) != 2 || v[0] <= 0 || v[1] <= 0 {
		return vector.Size{}, fmt.Errorf("size needs [width, height] > 0, got %v", v)
	}
	return vector.Size{W: v[0], H: v[1]}, nil
}

func color(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := vector.ParseColor(s); err != nil {
		return "", err
	}
	return s, nil
}

func valueStepFor(k engine.ActionKind) string {
	switch k {
	case engine.ActionSetStrokeColor:
		return StepStrokeColor.String()
	case engine.ActionSetFillColor:
		return StepFillColor.String()
	case engine.ActionSetStrokeWidth:
		return StepWidth.String()
	default:
		return StepTool.String()
	}
}
