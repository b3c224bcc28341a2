/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"
	"testing"

	"sketchboard/internal/domain"
	"sketchboard/internal/engine"
	"sketchboard/internal/notify"
	"sketchboard/internal/vector"
)

const demo = `
name: demo
size: [800, 600]
steps:
  - stroke_color: "#ff0000"
  - fill_color: transparent
  - width: 4
  - tool: rectangle
  - drag: [[0, 0], [50, 20], [100, 50]]
  - tool: select
  - down: [50, 25]
  - up: [50, 25]
  - action: move-forward
  - wheel: -1
`

func TestParseDemo(t *testing.T) {
	s, errs := Parse([]byte(demo))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if s.Name != "demo" || s.Size != (vector.Size{W: 800, H: 600}) {
		t.Fatalf("header: got %q %v", s.Name, s.Size)
	}
	if len(s.Steps) != 10 {
		t.Fatalf("got %d steps want 10", len(s.Steps))
	}
	drag := s.Steps[4]
	if drag.Kind != StepDrag || len(drag.Points) != 3 || drag.Points[2] != (vector.Pt{X: 100, Y: 50}) {
		t.Fatalf("drag step: %+v", drag)
	}
	if drag.Line != 9 {
		t.Fatalf("drag line: got %d want 9", drag.Line)
	}
	if s.Steps[3].Tool != engine.ToolRectangle || s.Steps[8].Action != engine.ActionMoveForward {
		t.Fatalf("tool/action steps: %+v %+v", s.Steps[3], s.Steps[8])
	}
}

func TestParseReportsEveryBadStep(t *testing.T) {
	src := `steps:
  - tool: hammer
  - down: [1]
  - action: export
  - width: 0
  - stroke_color: "#zzz"
  - jump: 3
  - up: [1, 2]
    move: [3, 4]
  - action: set-tool
  - up: [5, 5]
`
	s, errs := Parse([]byte(src))
	if len(errs) != 8 {
		t.Fatalf("got %d errors want 8: %v", len(errs), errs)
	}
	if errs[0].Line != 2 || !strings.Contains(errs[0].Error(), "line 2") {
		t.Fatalf("first error: %+v", errs[0])
	}
	if !strings.Contains(errs[2].Message, "cannot be scripted") {
		t.Fatalf("export action: %v", errs[2])
	}
	if !strings.Contains(errs[6].Message, "exactly one key") {
		t.Fatalf("two keys: %v", errs[6])
	}
	if len(s.Steps) != 1 || s.Steps[0].Kind != StepUp {
		t.Fatalf("valid steps kept: %+v", s.Steps)
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, errs := Parse([]byte("steps: [")); len(errs) != 1 {
		t.Fatalf("got %v want one syntax error", errs)
	}
}

func TestRunDemo(t *testing.T) {
	s, errs := Parse([]byte(demo))
	if len(errs) != 0 {
		t.Fatalf("parse: %v", errs)
	}
	eng := engine.New(engine.DefaultConfig(), engine.Collaborators{Notifier: &notify.Recorder{}})
	if err := Run(eng, s); err != nil {
		t.Fatalf("run: %v", err)
	}
	log := eng.Log()
	if len(log) != 2 {
		t.Fatalf("got %d revisions want 2", len(log))
	}
	r := log[1]
	if r.ToolKind != domain.Rectangle || r.ZIndex != 1 || r.StrokeColor != "#ff0000" || r.StrokeWidth != 4 {
		t.Fatalf("moved-forward revision: %+v", r)
	}
	if eng.Zoom() != 1.1 {
		t.Fatalf("zoom: got %v want 1.1", eng.Zoom())
	}
	if eng.Tool() != engine.ToolSelect {
		t.Fatalf("tool: got %v want select", eng.Tool())
	}
}

func TestRunStopsOnRejectedStep(t *testing.T) {
	s := Script{Steps: []Step{
		{Kind: StepTool, Tool: engine.ToolLine, Line: 1},
		{Kind: StepStrokeColor, Color: "bogus", Line: 2},
		{Kind: StepDrag, Points: []vector.Pt{{X: 0, Y: 0}, {X: 10, Y: 10}}, Line: 3},
	}}
	eng := engine.New(engine.DefaultConfig(), engine.Collaborators{Notifier: &notify.Recorder{}})
	err := Run(eng, s)
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("got %v want failure at line 2", err)
	}
	if len(eng.Log()) != 0 {
		t.Fatalf("steps after the failure must not run")
	}
}
