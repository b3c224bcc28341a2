/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"math"
	"testing"

	"sketchboard/internal/domain"
	"sketchboard/internal/notify"
	"sketchboard/internal/render"
	"sketchboard/internal/shape"
	"sketchboard/internal/vector"
)

func pt(x, y float64) vector.Pt { return vector.Pt{X: x, Y: y} }

func newTestEngine(t *testing.T) (*Engine, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	e := New(DefaultConfig(), Collaborators{Notifier: rec})
	return e, rec
}

func drag(e *Engine, tool Tool, pts ...vector.Pt) {
	e.PointerDown(pts[0], tool)
	for _, p := range pts[1:] {
		e.PointerMove(p, tool)
	}
	e.PointerUp(pts[len(pts)-1], tool)
}

func click(e *Engine, tool Tool, p vector.Pt) {
	e.PointerDown(p, tool)
	e.PointerUp(p, tool)
}

func TestDrawRectangleThenMoveForward(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(50, 20), pt(100, 50))
	scene := e.CollapsedScene()
	if len(scene) != 1 || scene[0].ZIndex != 0 || scene[0].ToolKind != domain.Rectangle {
		t.Fatalf("unexpected scene after draw: %+v", scene)
	}
	want := domain.Segment{From: pt(0, 0), To: pt(100, 50)}
	if scene[0].Segments[0] != want {
		t.Fatalf("segment = %+v, want %+v", scene[0].Segments[0], want)
	}

	click(e, ToolSelect, pt(50, 25))
	if sel, ok := e.SelectedShape(); !ok || sel.ID != scene[0].ID {
		t.Fatalf("rectangle not selected")
	}
	if err := e.Dispatch(Action{Kind: ActionMoveForward}); err != nil {
		t.Fatalf("move forward: %v", err)
	}
	log := e.Log()
	if len(log) != 2 || log[0].ID != log[1].ID {
		t.Fatalf("expected 2 entries sharing one id, got %+v", log)
	}
	scene = e.CollapsedScene()
	if len(scene) != 1 || scene[0].ZIndex != 1 || scene[0].Segments[0] != want {
		t.Fatalf("unexpected scene after move forward: %+v", scene)
	}
}

func TestMoveBackwardUsesMinMinusOne(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(10, 10))
	drag(e, ToolRectangle, pt(20, 20), pt(30, 30))
	click(e, ToolSelect, pt(25, 25))
	e.Dispatch(Action{Kind: ActionMoveBackward})
	sel, _ := e.SelectedShape()
	if sel.ZIndex != -1 {
		t.Fatalf("zIndex = %d, want -1", sel.ZIndex)
	}
	if e.CollapsedScene()[0].ID != sel.ID {
		t.Fatalf("moved-back shape should render first")
	}
}

func TestSymmetricDraftIsNormalized(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolCircle, pt(100, 100), pt(40, 130))
	r := e.CollapsedScene()[0]
	s := r.Segments[0]
	if math.Abs(s.To.X-s.From.X) != math.Abs(s.To.Y-s.From.Y) {
		t.Fatalf("circle draft not square: %+v", s)
	}
	if s.To != pt(40, 160) {
		t.Fatalf("normalized endpoint = %+v, want (40,160)", s.To)
	}
}

func TestClickWithoutDragAppendsNothing(t *testing.T) {
	e, _ := newTestEngine(t)
	click(e, ToolRectangle, pt(10, 10))
	click(e, ToolDraw, pt(10, 10))
	if n := len(e.Log()); n != 0 {
		t.Fatalf("expected empty log, got %d", n)
	}
}

func TestFreehandAndEraser(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolDraw, pt(0, 0), pt(1, 1), pt(2, 2), pt(2, 2), pt(3, 5))
	r := e.CollapsedScene()[0]
	if r.ToolKind != domain.FreehandDraw || len(r.Segments) != 3 {
		t.Fatalf("expected 3 freehand segments, got %+v", r)
	}
	if r.Segments[2] != (domain.Segment{From: pt(2, 2), To: pt(3, 5)}) {
		t.Fatalf("segments must chain: %+v", r.Segments)
	}

	drag(e, ToolEraser, pt(0, 0), pt(5, 5))
	er := e.CollapsedScene()[1]
	if er.ToolKind != domain.Eraser || er.StrokeColor != "#ffffff" || er.FillColor != "#ffffff" {
		t.Fatalf("eraser must paint background: %+v", er)
	}
	if er.StrokeWidth != 10 || er.ZIndex != 1 {
		t.Fatalf("eraser width/z = %v/%d", er.StrokeWidth, er.ZIndex)
	}
	if got := e.EraserCursorSize(); got != 10 {
		t.Fatalf("eraser cursor = %v", got)
	}
}

func TestPanDoesNotAppend(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolPan, pt(10, 10), pt(30, 40))
	if e.Pan() != pt(20, 30) || len(e.Log()) != 0 {
		t.Fatalf("pan = %+v log = %d", e.Pan(), len(e.Log()))
	}
	if e.State() != StateIdle {
		t.Fatalf("state after up = %s", e.State())
	}
	// drawing now lands in world space
	drag(e, ToolLine, pt(20, 30), pt(40, 50))
	if s := e.CollapsedScene()[0].Segments[0]; s.From != pt(0, 0) || s.To != pt(20, 20) {
		t.Fatalf("line not in world space: %+v", s)
	}
}

func TestMoveSelectedShape(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(100, 50))
	click(e, ToolSelect, pt(50, 25))
	orig, _ := e.SelectedShape()

	// no movement: no append
	click(e, ToolSelect, pt(50, 25))
	if len(e.Log()) != 1 {
		t.Fatalf("zero-distance move appended a revision")
	}

	drag(e, ToolSelect, pt(50, 25), pt(60, 30), pt(70, 35))
	moved, _ := e.SelectedShape()
	if len(e.Log()) != 2 || moved.ID != orig.ID || moved.ZIndex != orig.ZIndex || moved.StrokeColor != orig.StrokeColor {
		t.Fatalf("move must keep id/z/colors: %+v", moved)
	}
	if moved.Segments[0] != (domain.Segment{From: pt(20, 10), To: pt(120, 60)}) {
		t.Fatalf("moved segment = %+v", moved.Segments[0])
	}
}

func TestResizeWithZeroDeltaAppendsSameGeometry(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(100, 50))
	click(e, ToolSelect, pt(50, 25))
	before, _ := e.SelectedShape()
	// south-east corner of the box padded by 10px
	click(e, ToolSelect, pt(110, 60))
	log := e.Log()
	if len(log) != 2 {
		t.Fatalf("expected resize to append, log=%d", len(log))
	}
	if shape.Bounds(log[1].Segments[0]) != shape.Bounds(before.Segments[0]) {
		t.Fatalf("geometry changed: %+v", log[1].Segments[0])
	}
}

func TestResizeEdgeAndSymmetricLock(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(100, 50), pt(0, 0)) // drawn right-to-left
	click(e, ToolSelect, pt(50, 25))
	drag(e, ToolSelect, pt(110, 25), pt(130, 40)) // east edge
	sel, _ := e.SelectedShape()
	if b := shape.Bounds(sel.Segments[0]); b != vector.R(0, 0, 120, 50) {
		t.Fatalf("east resize bounds = %+v", b)
	}

	drag(e, ToolSquare, pt(300, 300), pt(340, 340))
	click(e, ToolSelect, pt(320, 320))
	drag(e, ToolSelect, pt(350, 350), pt(400, 370)) // south-east corner
	sq, _ := e.SelectedShape()
	s := sq.Segments[0]
	if w, h := math.Abs(s.To.X-s.From.X), math.Abs(s.To.Y-s.From.Y); math.Abs(w-h) > 1e-9 || w != 90 {
		t.Fatalf("square lost its aspect: w=%v h=%v", w, h)
	}
}

func TestSelectElsewhereClearsSelection(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(10, 10))
	click(e, ToolSelect, pt(5, 5))
	click(e, ToolSelect, pt(500, 500))
	if _, ok := e.SelectedShape(); ok {
		t.Fatalf("selection should be cleared")
	}
	if len(e.Log()) != 1 {
		t.Fatalf("selection must not append")
	}
}

func TestFillRules(t *testing.T) {
	e, rec := newTestEngine(t)
	drag(e, ToolLine, pt(0, 0), pt(100, 100))
	drag(e, ToolRectangle, pt(200, 200), pt(300, 300))
	e.Dispatch(Action{Kind: ActionSetFillColor, Color: "#ff0000"})
	click(e, ToolFill, pt(50, 50))
	if len(e.Log()) != 2 {
		t.Fatalf("fill on line mutated the log")
	}
	if m, ok := rec.Last(); !ok || m.Level != notify.Warning {
		t.Fatalf("expected a warning for line fill, got %+v", m)
	}

	click(e, ToolFill, pt(250, 250))
	log := e.Log()
	if len(log) != 3 || log[2].FillColor != "#ff0000" || log[2].ToolKind != domain.Rectangle || log[2].ID != log[1].ID {
		t.Fatalf("fill revision wrong: %+v", log[len(log)-1])
	}
	click(e, ToolFill, pt(250, 250))
	if len(e.Log()) != 3 {
		t.Fatalf("same-color fill must be a no-op")
	}

	n := len(rec.Messages())
	click(e, ToolFill, pt(900, 900))
	if len(rec.Messages()) != n+1 {
		t.Fatalf("missing target must warn")
	}
}

func TestFillSameColorSpelledDifferently(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(50, 50))
	e.Dispatch(Action{Kind: ActionSetFillColor, Color: "#FFF"})
	click(e, ToolFill, pt(25, 25))
	if len(e.Log()) != 2 {
		t.Fatalf("log length got %d want 2", len(e.Log()))
	}
	for _, c := range []string{"#ffffff", "white", "#ffffffff"} {
		e.Dispatch(Action{Kind: ActionSetFillColor, Color: c})
		click(e, ToolFill, pt(25, 25))
		if len(e.Log()) != 2 {
			t.Fatalf("fill with %q appended a redundant revision", c)
		}
	}
}

func TestDeleteThenUndo(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolTriangleUp, pt(0, 0), pt(40, 40))
	click(e, ToolSelect, pt(20, 20))
	orig, _ := e.SelectedShape()
	e.Dispatch(Action{Kind: ActionDelete})
	if len(e.CollapsedScene()) != 0 {
		t.Fatalf("deleted shape still visible")
	}
	if _, ok := e.SelectedShape(); ok {
		t.Fatalf("delete must clear selection")
	}
	e.Dispatch(Action{Kind: ActionUndo})
	scene := e.CollapsedScene()
	if len(scene) != 1 || scene[0].Disabled || scene[0].Segments[0] != orig.Segments[0] {
		t.Fatalf("undo did not restore the shape: %+v", scene)
	}
	e.Dispatch(Action{Kind: ActionRedo})
	if len(e.CollapsedScene()) != 0 {
		t.Fatalf("redo should delete again")
	}
}

func TestUndoRedoClearSelectionAndNewDrawClearsRedo(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(10, 10))
	drag(e, ToolRectangle, pt(20, 20), pt(30, 30))
	click(e, ToolSelect, pt(5, 5))
	e.Dispatch(Action{Kind: ActionUndo})
	if _, ok := e.SelectedShape(); ok {
		t.Fatalf("undo must clear selection")
	}
	if len(e.RedoLog()) != 1 {
		t.Fatalf("expected one redo entry")
	}
	drag(e, ToolLine, pt(0, 0), pt(1, 1))
	if len(e.RedoLog()) != 0 {
		t.Fatalf("new append must clear redo")
	}
	// undo on an empty log is silent
	for i := 0; i < 5; i++ {
		if err := e.Dispatch(Action{Kind: ActionUndo}); err != nil {
			t.Fatalf("undo %d: %v", i, err)
		}
	}
}

func TestCopyLandsAtAnchor(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(300, 300), pt(400, 350))
	click(e, ToolSelect, pt(350, 320))
	src, _ := e.SelectedShape()
	e.Dispatch(Action{Kind: ActionCopy})
	cp, ok := e.SelectedShape()
	if !ok || cp.ID == src.ID {
		t.Fatalf("copy should be selected with a new id")
	}
	if cp.ZIndex != src.ZIndex+1 {
		t.Fatalf("copy zIndex = %d", cp.ZIndex)
	}
	if b := shape.Bounds(cp.Segments[0]); b != vector.R(100, 100, 100, 50) {
		t.Fatalf("copy bounds = %+v", b)
	}
	if len(e.CollapsedScene()) != 2 {
		t.Fatalf("expected two shapes")
	}
}

func TestPointerUpWithoutDownIsNoOp(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PointerUp(pt(5, 5), ToolDraw)
	e.PointerMove(pt(6, 6), ToolDraw)
	e.PointerUp(pt(7, 7), ToolFill)
	if len(e.Log()) != 0 || e.State() != StateIdle {
		t.Fatalf("stray events changed state")
	}
}

func TestToolSwitchResetsGesture(t *testing.T) {
	e, _ := newTestEngine(t)
	e.PointerDown(pt(0, 0), ToolRectangle)
	e.PointerMove(pt(50, 50), ToolRectangle)
	e.Dispatch(Action{Kind: ActionSetTool, Tool: ToolLine})
	e.PointerUp(pt(60, 60), ToolLine)
	if len(e.Log()) != 0 || e.State() != StateIdle {
		t.Fatalf("tool switch must drop the draft")
	}
	e.PointerDown(pt(0, 0), ToolLine)
	e.PointerMove(pt(10, 10), ToolLine)
	e.PointerUp(pt(10, 10), ToolCircle) // switched mid-gesture
	if len(e.Log()) != 0 || e.Tool() != ToolCircle {
		t.Fatalf("tool switch via pointer must drop the draft")
	}
}

func TestZoomActionsClamp(t *testing.T) {
	e, _ := newTestEngine(t)
	for i := 0; i < 10; i++ {
		e.Dispatch(Action{Kind: ActionZoomOut})
	}
	if e.Zoom() != 0.5 {
		t.Fatalf("zoom = %v", e.Zoom())
	}
	pan := e.Pan()
	if e.WheelZoom(1) {
		t.Fatalf("wheel zoom past min should be rejected")
	}
	if e.Pan() != pan {
		t.Fatalf("pan changed on rejected zoom")
	}
	e.Resize(400, 400)
	if !e.WheelZoom(-1) || e.Zoom() != 0.6 {
		t.Fatalf("wheel in failed, zoom %v", e.Zoom())
	}
	if vp := e.Viewport(); vp.Zoom() != 0.6 || vp.Size().W != 400 {
		t.Fatalf("viewport copy: zoom %v size %v", vp.Zoom(), vp.Size())
	}
}

func TestSettingsValidation(t *testing.T) {
	e, rec := newTestEngine(t)
	if err := e.Dispatch(Action{Kind: ActionSetStrokeColor, Color: "not-a-color"}); err == nil {
		t.Fatalf("expected invalid color error")
	}
	if err := e.Dispatch(Action{Kind: ActionSetFillColor, Color: "  "}); err == nil {
		t.Fatalf("expected blank color error")
	}
	if err := e.Dispatch(Action{Kind: ActionSetStrokeWidth, Width: -1}); err == nil {
		t.Fatalf("expected width error")
	}
	if len(rec.Messages()) != 3 {
		t.Fatalf("expected three warnings, got %+v", rec.Messages())
	}
	e.Dispatch(Action{Kind: ActionSetStrokeColor, Color: "#00ff00"})
	e.Dispatch(Action{Kind: ActionSetStrokeWidth, Width: 6})
	drag(e, ToolLine, pt(0, 0), pt(5, 5))
	r := e.CollapsedScene()[0]
	if r.StrokeColor != "#00ff00" || r.StrokeWidth != 6 {
		t.Fatalf("settings not applied: %+v", r)
	}
}

func TestNewClearsEverything(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolLine, pt(0, 0), pt(5, 5))
	e.Dispatch(Action{Kind: ActionUndo})
	e.Dispatch(Action{Kind: ActionZoomIn})
	e.Dispatch(Action{Kind: ActionNew})
	if len(e.Log()) != 0 || len(e.RedoLog()) != 0 || e.Zoom() != 1 {
		t.Fatalf("new did not reset the board")
	}
}

func TestRenderIncludesDraftAndSelection(t *testing.T) {
	e, _ := newTestEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(10, 10))
	e.PointerDown(pt(50, 50), ToolLine)
	e.PointerMove(pt(80, 80), ToolLine)
	var rec render.Recorder
	e.Render(&rec)
	// rectangle stroke + draft line stroke
	if got := rec.Count(render.OpStroke); got != 2 {
		t.Fatalf("expected 2 strokes while drafting, got %d", got)
	}
	e.PointerUp(pt(80, 80), ToolLine)

	click(e, ToolSelect, pt(5, 5))
	rec.Reset()
	e.Render(&rec)
	// 2 shapes + dashed outline + 8 handles
	if got := rec.Count(render.OpStroke); got != 11 {
		t.Fatalf("expected selection strokes, got %d", got)
	}
}

func TestRenderEraserCursorFollowsPointer(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Dispatch(Action{Kind: ActionSetTool, Tool: ToolEraser})
	e.Dispatch(Action{Kind: ActionZoomIn})
	e.PointerMove(pt(200, 150), ToolEraser)

	eraserStrokes := func() []render.Op {
		var rec render.Recorder
		e.Render(&rec)
		var out []render.Op
		for _, op := range rec.Ops {
			if op.Kind == render.OpStroke && op.Stroke.Color == render.EraserCursorColor {
				out = append(out, op)
			}
		}
		return out
	}
	ops := eraserStrokes()
	if len(ops) != 1 {
		t.Fatalf("expected one eraser cursor, got %d", len(ops))
	}
	// the circle's screen diameter matches EraserCursorSize
	vp := e.Viewport()
	b := ops[0].Path.Transform(vp.Transform()).Bounds()
	if d := e.EraserCursorSize(); math.Abs(b.W-d) > 1e-6 || math.Abs(b.H-d) > 1e-6 {
		t.Fatalf("cursor size got %vx%v want %v", b.W, b.H, d)
	}
	if c := b.Center(); math.Abs(c.X-200) > 1e-6 || math.Abs(c.Y-150) > 1e-6 {
		t.Fatalf("cursor center got %v want 200,150", c)
	}

	e.PointerLeave()
	if len(eraserStrokes()) != 0 {
		t.Fatalf("cursor should hide when the pointer leaves")
	}
	e.PointerMove(pt(10, 10), ToolEraser)
	e.Dispatch(Action{Kind: ActionSetTool, Tool: ToolDraw})
	if len(eraserStrokes()) != 0 {
		t.Fatalf("cursor should only show for the eraser")
	}
}

func TestCursor(t *testing.T) {
	e, _ := newTestEngine(t)
	if e.Cursor() != "crosshair" {
		t.Fatalf("draw cursor = %q", e.Cursor())
	}
	e.Dispatch(Action{Kind: ActionSetTool, Tool: ToolPan})
	if e.Cursor() != "grab" {
		t.Fatalf("pan cursor = %q", e.Cursor())
	}
	e.PointerDown(pt(0, 0), ToolPan)
	if e.Cursor() != "grabbing" {
		t.Fatalf("panning cursor = %q", e.Cursor())
	}
	e.PointerUp(pt(0, 0), ToolPan)

	drag(e, ToolRectangle, pt(0, 0), pt(100, 50))
	click(e, ToolSelect, pt(50, 25))
	e.PointerMove(pt(50, 25), ToolSelect)
	if e.Cursor() != "move" {
		t.Fatalf("body cursor = %q", e.Cursor())
	}
	e.PointerMove(pt(110, 60), ToolSelect)
	if e.Cursor() != "nwse-resize" {
		t.Fatalf("corner cursor = %q", e.Cursor())
	}
}
