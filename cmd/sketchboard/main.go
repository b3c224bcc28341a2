/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"sketchboard/internal/config"
	"sketchboard/internal/crash"
	"sketchboard/internal/engine"
	"sketchboard/internal/export"
	applog "sketchboard/internal/log"
	"sketchboard/internal/scene"
	"sketchboard/internal/script"
	"sketchboard/internal/storage"
	"sketchboard/internal/ui"
	"sketchboard/internal/vector"
	"sketchboard/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Sketchboard")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  sketchboard version|-v|--version           Show version")
	fmt.Fprintln(w, "  sketchboard ui [<board.json>]               Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Fprintln(w, "  sketchboard validate <board.json>           Check a board document")
	fmt.Fprintln(w, "  sketchboard render <board.json> <out>       Render a board to .png, .svg or .pdf")
	fmt.Fprintln(w, "  sketchboard pack <board.json> <board.db>    Store a board in a SQLite archive")
	fmt.Fprintln(w, "  sketchboard unpack <board.db> <board.json>  Extract a board from a SQLite archive")
	fmt.Fprintln(w, "  sketchboard replay <script.yaml> <out>      Run an interaction script and save the result")
	fmt.Fprintln(w, "  sketchboard config                          Print the effective configuration")
}

func main() {
	cfg, err := config.Load()
	applog.Init(cfg.LogOptions())
	l := applog.WithComponent("cli")
	if err != nil {
		l.Warn("config problem, using defaults where needed", slog.Any("err", err))
	}
	defer crash.Recover(crash.Target{Dir: cfg.Export.Dir})

	l.Debug("start", slog.Int("args", len(os.Args)))
	os.Exit(run(context.Background(), cfg, os.Args[1:], os.Stdout))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, cfg config.AppConfig, args []string, out io.Writer) int {
	l := applog.WithComponent("cli")
	if len(args) == 0 {
		usage(out)
		return 0
	}
	need := func(n int, what string) bool {
		if len(args) < n+1 {
			fmt.Fprintf(out, "%s requires %s\n", args[0], what)
			usage(out)
			return false
		}
		return true
	}
	fail := func(op string, err error) int {
		l.Error(op+" failed", slog.Any("err", err))
		fmt.Fprintln(out, "Error:", err)
		return 1
	}

	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(out, "Sketchboard")
		fmt.Fprintln(out, version.String())
	case "ui":
		var path string
		if len(args) >= 2 {
			path, _ = filepath.Abs(args[1])
		}
		if err := ui.Run(cfg, path); err != nil {
			return fail("ui", err)
		}
	case "validate":
		if !need(1, "<board.json>") {
			return 2
		}
		doc, err := storage.LoadDocument(args[1])
		if err != nil {
			return fail("validate", err)
		}
		fmt.Fprintf(out, "OK: %d revisions (%s)\n", len(doc.Shapes), doc.Mode)
	case "render":
		if !need(2, "<board.json> and <out>") {
			return 2
		}
		if err := renderBoard(cfg, args[1], args[2]); err != nil {
			return fail("render", err)
		}
		fmt.Fprintln(out, "Rendered", args[2])
	case "pack":
		if !need(2, "<board.json> and <board.db>") {
			return 2
		}
		doc, err := storage.LoadDocument(args[1])
		if err != nil {
			return fail("pack", err)
		}
		if err := storage.WriteArchive(ctx, args[2], doc); err != nil {
			return fail("pack", err)
		}
		fmt.Fprintf(out, "Packed %d revisions into %s\n", len(doc.Shapes), args[2])
	case "unpack":
		if !need(2, "<board.db> and <board.json>") {
			return 2
		}
		doc, err := storage.ReadArchive(ctx, args[1])
		if err != nil {
			return fail("unpack", err)
		}
		if err := storage.SaveDocument(args[2], doc); err != nil {
			return fail("unpack", err)
		}
		fmt.Fprintf(out, "Unpacked %d revisions into %s\n", len(doc.Shapes), args[2])
	case "replay":
		if !need(2, "<script.yaml> and <out>") {
			return 2
		}
		if err := replay(cfg, args[1], args[2], out); err != nil {
			return fail("replay", err)
		}
		fmt.Fprintln(out, "Replayed into", args[2])
	case "config":
		path, _ := config.ConfigPath()
		fmt.Fprintln(out, "# config file:", path)
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fail("config", err)
		}
		_ = enc.Close()
	default:
		usage(out)
		return 2
	}
	return 0
}

func exportOptions(cfg config.AppConfig) (export.Options, error) {
	bg, err := vector.ParseColor(cfg.Canvas.Background)
	if err != nil {
		return export.Options{}, err
	}
	return export.Options{Margin: cfg.Export.Margin, Scale: 1, Background: bg}, nil
}

func renderBoard(cfg config.AppConfig, in, outPath string) error {
	format, err := export.FormatFromPath(outPath)
	if err != nil {
		return err
	}
	doc, err := storage.LoadDocument(in)
	if err != nil {
		return err
	}
	shapes := doc.Shapes
	if doc.Mode == storage.ModeLog {
		shapes = scene.Collapse(shapes)
	}
	opts, err := exportOptions(cfg)
	if err != nil {
		return err
	}
	return writeFile(outPath, func(w io.Writer) error { return export.Write(format, w, shapes, opts) })
}

// replay runs a script on a fresh engine. A .json output receives the revision log,
// any image extension receives the rendered scene.
func replay(cfg config.AppConfig, scriptPath, outPath string, out io.Writer) error {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	s, errs := script.Parse(data)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(out, " -", e.Error())
		}
		return fmt.Errorf("%s: %d script errors", filepath.Base(scriptPath), len(errs))
	}
	opts, err := exportOptions(cfg)
	if err != nil {
		return err
	}
	eng := engine.New(cfg.EngineConfig(), engine.Collaborators{
		Persistence: storage.Codec{},
		Images:      export.Encoder{Options: opts},
	})
	if err := script.Run(eng, s); err != nil {
		return err
	}
	if filepath.Ext(outPath) == ".json" {
		return storage.SaveDocument(outPath, storage.NewDocument(eng.Log(), storage.ModeLog))
	}
	format, err := export.FormatFromPath(outPath)
	if err != nil {
		return err
	}
	return writeFile(outPath, func(w io.Writer) error {
		return eng.Dispatch(engine.Action{Kind: engine.ActionSave, Format: string(format), Writer: w})
	})
}

func writeFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		return err
	}
	return bw.Flush()
}
