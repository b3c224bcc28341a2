/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"sketchboard/internal/domain"
	"sketchboard/internal/notify"
	"sketchboard/internal/vector"
)

// jsonPersistence is a minimal board codec: a bare JSON array of revisions.
type jsonPersistence struct {
	lastRaw bool
}

func (p *jsonPersistence) Export(w io.Writer, shapes []domain.ShapeRevision, rawLog bool) error {
	p.lastRaw = rawLog
	return json.NewEncoder(w).Encode(shapes)
}

func (p *jsonPersistence) Import(r io.Reader) ([]domain.ShapeRevision, error) {
	var out []domain.ShapeRevision
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

type fakeImages struct {
	format string
	shapes int
	err    error
}

func (f *fakeImages) Encode(w io.Writer, format string, shapes []domain.ShapeRevision, _ vector.Color) error {
	f.format, f.shapes = format, len(shapes)
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "img")
	return err
}

func newPersistentEngine(t *testing.T) (*Engine, *jsonPersistence, *fakeImages, *notify.Recorder) {
	t.Helper()
	p := &jsonPersistence{}
	img := &fakeImages{}
	rec := &notify.Recorder{}
	return New(DefaultConfig(), Collaborators{Persistence: p, Images: img, Notifier: rec}), p, img, rec
}

func TestExportSceneAndRawLog(t *testing.T) {
	e, p, _, _ := newPersistentEngine(t)
	drag(e, ToolRectangle, pt(0, 0), pt(10, 10))
	click(e, ToolSelect, pt(5, 5))
	e.Dispatch(Action{Kind: ActionMoveForward})

	var scene, raw bytes.Buffer
	if err := e.Dispatch(Action{Kind: ActionExport, Writer: &scene}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := e.Dispatch(Action{Kind: ActionExport, Writer: &raw, IncludeLog: true}); err != nil {
		t.Fatalf("export raw: %v", err)
	}
	if !p.lastRaw {
		t.Fatalf("raw flag not forwarded")
	}
	var a, b []domain.ShapeRevision
	json.Unmarshal(scene.Bytes(), &a)
	json.Unmarshal(raw.Bytes(), &b)
	if len(a) != 1 || len(b) != 2 {
		t.Fatalf("scene export has %d shapes, raw export %d revisions", len(a), len(b))
	}
}

func TestImportReplacesLogAndClearsRedo(t *testing.T) {
	e, _, _, _ := newPersistentEngine(t)
	drag(e, ToolLine, pt(0, 0), pt(5, 5))
	drag(e, ToolLine, pt(0, 0), pt(6, 6))
	e.Dispatch(Action{Kind: ActionUndo})

	doc := `[{"id":"imp-1","toolKind":"Square","strokeColor":"#000","fillColor":"#fff","strokeWidth":3,"zIndex":4,
	  "segments":[{"from":{"x":0,"y":0},"to":{"x":20,"y":20}}],"disabled":false}]`
	if err := e.Dispatch(Action{Kind: ActionImport, Reader: strings.NewReader(doc)}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(e.RedoLog()) != 0 {
		t.Fatalf("import must clear redo")
	}
	scene := e.CollapsedScene()
	if len(scene) != 1 || scene[0].ID != "imp-1" || scene[0].ToolKind != domain.Square {
		t.Fatalf("unexpected scene after import: %+v", scene)
	}
	// imported shapes are editable like drawn ones
	click(e, ToolSelect, pt(10, 10))
	e.Dispatch(Action{Kind: ActionMoveForward})
	if sel, _ := e.SelectedShape(); sel.ZIndex != 5 {
		t.Fatalf("zIndex after move forward = %d", sel.ZIndex)
	}
}

func TestInvalidImportLeavesStateUnchanged(t *testing.T) {
	e, _, _, rec := newPersistentEngine(t)
	drag(e, ToolLine, pt(0, 0), pt(5, 5))
	before := e.Log()

	bad := []string{
		`{"not":"an array"}`,
		`[{"id":"x","toolKind":"Line","strokeColor":"#000","fillColor":"#fff","strokeWidth":0,"zIndex":0,"segments":[{"from":{"x":0,"y":0},"to":{"x":1,"y":1}}]}]`,
		`[{"id":"","toolKind":"Line","strokeColor":"#000","fillColor":"#fff","strokeWidth":1,"zIndex":0,"segments":[]}]`,
		`[{"id":"a","toolKind":"Rectangle","strokeWidth":2,"segments":[{"from":{"x":0,"y":0},"to":{"x":1,"y":1}}]}]`,
		`[{"id":"a","toolKind":"Rectangle","strokeColor":"not-a-color","fillColor":"rgb(1,2,3)","strokeWidth":2,"zIndex":0,"disabled":false,"segments":[{"from":{"x":0,"y":0},"to":{"x":1,"y":1}}]}]`,
	}
	for i, doc := range bad {
		if err := e.Dispatch(Action{Kind: ActionImport, Reader: strings.NewReader(doc)}); err == nil {
			t.Fatalf("case %d: expected rejection", i)
		}
	}
	after := e.Log()
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Fatalf("rejected import mutated the log")
	}
	if msgs := rec.Messages(); len(msgs) != len(bad) || msgs[0].Level != notify.Warning {
		t.Fatalf("expected one warning per rejection, got %+v", msgs)
	}
}

func TestSaveUsesImageEncoder(t *testing.T) {
	e, _, img, rec := newPersistentEngine(t)
	drag(e, ToolCircle, pt(0, 0), pt(30, 30))
	var out bytes.Buffer
	if err := e.Dispatch(Action{Kind: ActionSave, Writer: &out}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if img.format != "png" || img.shapes != 1 || out.String() != "img" {
		t.Fatalf("unexpected encoder call: %+v out=%q", img, out.String())
	}
	if err := e.Dispatch(Action{Kind: ActionSave, Writer: &out, Format: "svg"}); err != nil || img.format != "svg" {
		t.Fatalf("explicit format not used: %v %q", err, img.format)
	}

	img.err = errors.New("disk full")
	if err := e.Dispatch(Action{Kind: ActionSave, Writer: &out}); err == nil {
		t.Fatalf("expected encoder error")
	}
	if m, _ := rec.Last(); m.Level != notify.Error {
		t.Fatalf("expected error notification, got %+v", m)
	}
}

func TestCancelledFileChoiceIsReported(t *testing.T) {
	e, _, _, rec := newPersistentEngine(t)
	for _, k := range []ActionKind{ActionSave, ActionExport, ActionImport} {
		if err := e.Dispatch(Action{Kind: k}); err != nil {
			t.Fatalf("%s with no file: %v", k, err)
		}
	}
	if n := len(rec.Messages()); n != 3 {
		t.Fatalf("expected 3 cancellation notes, got %d", n)
	}
}

func TestMissingCollaborators(t *testing.T) {
	e := New(DefaultConfig(), Collaborators{Notifier: &notify.Recorder{}})
	var buf bytes.Buffer
	if err := e.Dispatch(Action{Kind: ActionExport, Writer: &buf}); !errors.Is(err, ErrNoPersistence) {
		t.Fatalf("expected ErrNoPersistence, got %v", err)
	}
	if err := e.Dispatch(Action{Kind: ActionSave, Writer: &buf}); !errors.Is(err, ErrNoPersistence) {
		t.Fatalf("expected ErrNoPersistence, got %v", err)
	}
}

func TestCommandsWithoutSelectionAreNoOps(t *testing.T) {
	e, _, _, rec := newPersistentEngine(t)
	drag(e, ToolLine, pt(0, 0), pt(5, 5))
	for _, k := range []ActionKind{ActionMoveForward, ActionMoveBackward, ActionCopy, ActionDelete} {
		if err := e.Dispatch(Action{Kind: k}); err != nil {
			t.Fatalf("%s: %v", k, err)
		}
	}
	if len(e.Log()) != 1 || len(rec.Messages()) != 0 {
		t.Fatalf("commands without selection must be silent no-ops")
	}
}

func TestCancelAbortsGesture(t *testing.T) {
	e, _, _, _ := newPersistentEngine(t)
	e.PointerDown(pt(0, 0), ToolRectangle)
	e.PointerMove(pt(40, 40), ToolRectangle)
	e.Dispatch(Action{Kind: ActionCancel})
	e.PointerUp(pt(40, 40), ToolRectangle)
	if len(e.Log()) != 0 {
		t.Fatalf("cancelled gesture appended")
	}
}

func TestNamesRoundTrip(t *testing.T) {
	for _, tool := range Tools() {
		got, err := ParseTool(tool.String())
		if err != nil || got != tool {
			t.Fatalf("ParseTool(%q) = %v, %v", tool, got, err)
		}
	}
	for k := ActionNew; k <= ActionCancel; k++ {
		got, err := ParseAction(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseAction(%q) = %v, %v", k, got, err)
		}
	}
}
