/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns an unexpected panic into a crash report and an
// autosaved board document, then exits.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"sketchboard/internal/domain"
	applog "sketchboard/internal/log"
	"sketchboard/internal/storage"
	"sketchboard/internal/version"
)

// exitFn is replaced in tests.
var exitFn = os.Exit

// Target tells Recover where to write and what to save.
// A zero Target writes the report to the temp dir and saves nothing.
type Target struct {
	Dir string
	// Snapshot returns the revision log to autosave.
	Snapshot func() []domain.ShapeRevision
}

// Recover captures a panic, logs it with the stack, writes a crash report,
// autosaves the board log and exits with code 2.
//
// Usage: defer crash.Recover(target)
func Recover(t Target) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(t.Dir, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if path, err := autosave(t); err != nil {
		l.Error("autosave failed", slog.Any("err", err))
	} else if path != "" {
		l.Info("autosave written", slog.String("path", path))
		_, _ = fmt.Fprintf(os.Stderr, "Your board was autosaved to: %s\n", path)
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func reportDir(dir string) string {
	if dir == "" {
		return os.TempDir()
	}
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

func writeReport(dir string, panicVal any, stack []byte) (string, error) {
	now := time.Now()
	path := filepath.Join(reportDir(dir), fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Sketchboard Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	return path, f.Sync()
}

// autosave writes the snapshot as a log document. A panicking snapshot
// function is reported as an error.
func autosave(t Target) (path string, err error) {
	if t.Snapshot == nil {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			path, err = "", fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	shapes := t.Snapshot()
	path = filepath.Join(reportDir(t.Dir), fmt.Sprintf("autosave-%s.json", time.Now().Format("20060102-150405")))
	if err := storage.SaveDocument(path, storage.NewDocument(shapes, storage.ModeLog)); err != nil {
		return "", err
	}
	return path, nil
}
