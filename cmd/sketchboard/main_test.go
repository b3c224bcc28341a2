/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sketchboard/internal/config"
	"sketchboard/internal/storage"
)

const replayScript = `
name: cli
size: [400, 300]
steps:
  - fill_color: "#ff0000"
  - tool: rectangle
  - drag: [[10, 10], [60, 40]]
  - tool: circle
  - drag: [[100, 100], [140, 140]]
`

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	code := run(context.Background(), config.Defaults(), args, &out)
	return code, out.String()
}

func replayed(t *testing.T) (dir, board string) {
	t.Helper()
	dir = t.TempDir()
	scriptPath := filepath.Join(dir, "cli.yaml")
	if err := os.WriteFile(scriptPath, []byte(replayScript), 0o644); err != nil {
		t.Fatal(err)
	}
	board = filepath.Join(dir, "board.json")
	if code, out := runCLI(t, "replay", scriptPath, board); code != 0 {
		t.Fatalf("replay exit %d: %s", code, out)
	}
	return dir, board
}

func TestVersionAndUsage(t *testing.T) {
	code, out := runCLI(t, "version")
	if code != 0 || !strings.Contains(out, "Sketchboard") {
		t.Fatalf("version got %d %q", code, out)
	}
	code, out = runCLI(t, "bogus")
	if code != 2 || !strings.Contains(out, "Usage:") {
		t.Fatalf("unknown command got %d %q", code, out)
	}
	code, _ = runCLI(t, "render", "only-one")
	if code != 2 {
		t.Fatalf("missing argument got %d want 2", code)
	}
}

func TestReplayThenValidate(t *testing.T) {
	_, board := replayed(t)
	doc, err := storage.LoadDocument(board)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Shapes) != 2 || doc.Mode != storage.ModeLog {
		t.Fatalf("replayed doc got %d shapes mode %s", len(doc.Shapes), doc.Mode)
	}
	code, out := runCLI(t, "validate", board)
	if code != 0 || !strings.Contains(out, "OK: 2 revisions") {
		t.Fatalf("validate got %d %q", code, out)
	}
}

func TestRenderFormats(t *testing.T) {
	dir, board := replayed(t)
	for _, name := range []string{"out.png", "out.svg", "out.pdf"} {
		p := filepath.Join(dir, name)
		if code, out := runCLI(t, "render", board, p); code != 0 {
			t.Fatalf("render %s exit %d: %s", name, code, out)
		}
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Fatalf("render %s produced nothing: %v", name, err)
		}
	}
	if code, _ := runCLI(t, "render", board, filepath.Join(dir, "out.gif")); code != 1 {
		t.Fatalf("unsupported format exit got %d want 1", code)
	}
}

func TestReplayToImage(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "cli.yaml")
	if err := os.WriteFile(scriptPath, []byte(replayScript), 0o644); err != nil {
		t.Fatal(err)
	}
	svg := filepath.Join(dir, "board.svg")
	if code, out := runCLI(t, "replay", scriptPath, svg); code != 0 {
		t.Fatalf("replay exit %d: %s", code, out)
	}
	data, err := os.ReadFile(svg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatalf("not an svg: %.80s", data)
	}
}

func TestPackUnpack(t *testing.T) {
	dir, board := replayed(t)
	archive := filepath.Join(dir, "board.db")
	if code, out := runCLI(t, "pack", board, archive); code != 0 {
		t.Fatalf("pack exit %d: %s", code, out)
	}
	back := filepath.Join(dir, "back.json")
	if code, out := runCLI(t, "unpack", archive, back); code != 0 {
		t.Fatalf("unpack exit %d: %s", code, out)
	}
	doc, err := storage.LoadDocument(back)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Shapes) != 2 {
		t.Fatalf("unpacked shapes got %d want 2", len(doc.Shapes))
	}
}

func TestReplayReportsScriptErrors(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(scriptPath, []byte("steps:\n  - tool: hammer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out := runCLI(t, "replay", scriptPath, filepath.Join(dir, "out.json"))
	if code != 1 || !strings.Contains(out, "script errors") {
		t.Fatalf("bad script got %d %q", code, out)
	}
}
