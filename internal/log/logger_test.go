/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestInitWritesJSONFile verifies that Init with a file handler writes JSON
// logs carrying the static and contextual attributes.
func TestInitWritesJSONFile(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("skb_log_%d.json", time.Now().UnixNano()))
	t.Cleanup(func() { _ = os.Remove(fpath) })

	Init(Options{Level: "debug", Format: "json", File: fpath})
	t.Cleanup(func() { Init(Options{Level: "info", Format: "console"}) })

	l := WithDocument(WithOperation(WithComponent("testcomp"), "op1"), "doc-1")
	l.Info("hello world", slog.String("k", "v"))

	time.Sleep(50 * time.Millisecond)

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(strings.NewReader(string(b)))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "sketchboard" {
		t.Fatalf("app attr: got %v want sketchboard", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	for k, want := range map[string]string{"component": "testcomp", "op": "op1", "doc": "doc-1", "msg": "hello world", "k": "v"} {
		if m[k] != want {
			t.Fatalf("%s attr: got %v want %v", k, m[k], want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("SKB_LOG_LEVEL", "warn")
	t.Setenv("SKB_LOG_FORMAT", "json")
	t.Setenv("SKB_LOG_SOURCE", "true")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
}

func TestFromEnvDefaultsOnBadValue(t *testing.T) {
	t.Setenv("SKB_LOG_SOURCE", "perhaps")
	opts := FromEnv()
	if opts.Level != "info" || opts.Format != "console" || opts.AddSource {
		t.Fatalf("got %+v want defaults", opts)
	}
}

func TestWithDocumentEmptyIsNoop(t *testing.T) {
	l := slog.Default()
	if WithDocument(l, "") != l {
		t.Fatalf("empty document id should return the same logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q): got %v want %v", in, got, want)
		}
	}
}
