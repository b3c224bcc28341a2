/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sketchboard/internal/domain"
	"sketchboard/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Sketchboard Crash Report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("report content: %s", s)
	}
}

func TestAutosaveWithoutSnapshot(t *testing.T) {
	path, err := autosave(Target{Dir: t.TempDir()})
	if err != nil || path != "" {
		t.Fatalf("got %q %v want nothing", path, err)
	}
}

func TestAutosavePanickingSnapshot(t *testing.T) {
	_, err := autosave(Target{Dir: t.TempDir(), Snapshot: func() []domain.ShapeRevision { panic("locked") }})
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("got %v want snapshot panic error", err)
	}
}

func TestRecoverWritesReportAndAutosave(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	shapes := []domain.ShapeRevision{{ID: "s1", ToolKind: domain.Line, StrokeColor: "#000000", FillColor: "transparent",
		StrokeWidth: 2, Segments: []domain.Segment{{From: domain.Coordinate{X: 1, Y: 1}, To: domain.Coordinate{X: 9, Y: 9}}}}}

	func() {
		defer Recover(Target{Dir: dir, Snapshot: func() []domain.ShapeRevision { return shapes }})
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("exit code: got %d want 2", code)
	}
	var report, saved string
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		switch {
		case strings.HasPrefix(f.Name(), "crash-"):
			report = filepath.Join(dir, f.Name())
		case strings.HasPrefix(f.Name(), "autosave-"):
			saved = filepath.Join(dir, f.Name())
		}
	}
	if report == "" || saved == "" {
		t.Fatalf("missing files in %s: report %q autosave %q", dir, report, saved)
	}
	doc, err := storage.LoadDocument(saved)
	if err != nil {
		t.Fatalf("autosave unreadable: %v", err)
	}
	if doc.Mode != storage.ModeLog || len(doc.Shapes) != 1 || doc.Shapes[0].ID != "s1" {
		t.Fatalf("autosave content: %+v", doc)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(Target{})
	}()
	if called {
		t.Fatalf("exit must not be called without a panic")
	}
}
