/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boards", "one.skb.json")
	doc := NewDocument(sampleShapes(), ModeLog)
	if err := SaveDocument(path, doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	got, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if got.DocumentID != doc.DocumentID || len(got.Shapes) != len(doc.Shapes) {
		t.Fatalf("got %+v", got)
	}
	if backups, _ := Backups(path); len(backups) != 0 {
		t.Fatalf("first save should not create backups, got %v", backups)
	}
}

func TestSaveKeepsBackupAndNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	first := NewDocument(sampleShapes()[:1], ModeScene)
	second := NewDocument(sampleShapes(), ModeLog)
	if err := SaveDocument(path, first); err != nil {
		t.Fatal(err)
	}
	if err := SaveDocument(path, second); err != nil {
		t.Fatal(err)
	}
	backups, err := Backups(path)
	if err != nil || len(backups) != 1 {
		t.Fatalf("backups: %v %v", backups, err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range ents {
		if e.Name() != "board.json" && e.Name() != BackupsDirName {
			t.Fatalf("unexpected leftover %q", e.Name())
		}
	}
	got, err := LoadDocument(path)
	if err != nil || got.DocumentID != second.DocumentID {
		t.Fatalf("got %v %v want second document", got.DocumentID, err)
	}
}

func TestLoadFallsBackToBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	first := NewDocument(sampleShapes()[:1], ModeScene)
	if err := SaveDocument(path, first); err != nil {
		t.Fatal(err)
	}
	if err := SaveDocument(path, NewDocument(sampleShapes(), ModeLog)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if got.DocumentID != first.DocumentID {
		t.Fatalf("got %q want backup %q", got.DocumentID, first.DocumentID)
	}
}

func TestLoadMissingWithoutBackups(t *testing.T) {
	if _, err := LoadDocument(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSaveDocumentRequiresPath(t *testing.T) {
	if err := SaveDocument("  ", NewDocument(nil, ModeScene)); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
