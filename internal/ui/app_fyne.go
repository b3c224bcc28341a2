//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"sketchboard/internal/config"
	"sketchboard/internal/crash"
	"sketchboard/internal/engine"
	"sketchboard/internal/export"
	applog "sketchboard/internal/log"
	"sketchboard/internal/notify"
	"sketchboard/internal/storage"
	"sketchboard/internal/version"
)

const (
	prefWindowWidth  = "window.width"
	prefWindowHeight = "window.height"
	recentPrefsKey   = "recent.boards"
	recentMax        = 10
)

var strokeWidths = []string{"2", "4", "6", "8", "10"}

// Run opens the board window. boardPath, when set, is loaded first and becomes the
// target of Save Board.
func Run(cfg config.AppConfig, boardPath string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	fyneApp := app.NewWithID("sketchboard")
	w := fyneApp.NewWindow("Sketchboard")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback(prefWindowWidth, 1280)
	winH := prefs.IntWithFallback(prefWindowHeight, 800)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	notifier := notify.Func(func(level notify.Level, msg string) {
		fyne.Do(func() { status.SetText(fmt.Sprintf("[%s] %s", level, msg)) })
	})
	eng := engine.New(cfg.EngineConfig(), engine.Collaborators{
		Persistence: storage.Codec{},
		Images:      export.Encoder{Options: export.Options{Margin: cfg.Export.Margin, Scale: 1}},
		Notifier:    notifier,
	})
	defer crash.Recover(crash.Target{Dir: cfg.Export.Dir, Snapshot: eng.Log})

	board := NewBoardWidget(eng)

	toolNames := make([]string, 0, len(engine.Tools()))
	for _, t := range engine.Tools() {
		toolNames = append(toolNames, t.String())
	}
	toolSelect := widget.NewSelect(toolNames, nil)
	syncTool := func() {
		if toolSelect.Selected != eng.Tool().String() {
			toolSelect.SetSelected(eng.Tool().String())
		}
	}

	dispatch := func(a engine.Action) {
		if err := eng.Dispatch(a); err != nil {
			l.Debug("action failed", slog.String("action", a.Kind.String()), slog.Any("err", err))
		}
		syncTool()
		board.Refresh()
	}

	toolSelect.OnChanged = func(s string) {
		t, err := engine.ParseTool(s)
		if err != nil || t == eng.Tool() {
			return
		}
		dispatch(engine.Action{Kind: engine.ActionSetTool, Tool: t})
	}
	toolSelect.SetSelected(eng.Tool().String())

	strokeEntry := widget.NewSelectEntry([]string{"#000000", "#ff0000", "#00aa00", "#0000ff", "#ffffff"})
	strokeEntry.SetText(eng.StrokeColor())
	strokeEntry.OnSubmitted = func(s string) {
		dispatch(engine.Action{Kind: engine.ActionSetStrokeColor, Color: strings.TrimSpace(s)})
		strokeEntry.SetText(eng.StrokeColor())
	}
	fillEntry := widget.NewSelectEntry([]string{"transparent", "#000000", "#ff0000", "#00aa00", "#0000ff", "#ffff00"})
	fillEntry.SetText(eng.FillColor())
	fillEntry.OnSubmitted = func(s string) {
		dispatch(engine.Action{Kind: engine.ActionSetFillColor, Color: strings.TrimSpace(s)})
		fillEntry.SetText(eng.FillColor())
	}
	widthSelect := widget.NewSelect(strokeWidths, func(s string) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v == eng.StrokeWidth() {
			return
		}
		dispatch(engine.Action{Kind: engine.ActionSetStrokeWidth, Width: v})
	})
	widthSelect.SetSelected(strconv.FormatFloat(eng.StrokeWidth(), 'f', -1, 64))

	includeLog := widget.NewCheck("Raw log", nil)
	includeLog.SetChecked(cfg.Export.IncludeLog)

	location := func() fyne.ListableURI {
		if cfg.Export.Dir == "" {
			return nil
		}
		lister, err := fstorage.ListerForURI(fstorage.NewFileURI(cfg.Export.Dir))
		if err != nil {
			return nil
		}
		return lister
	}

	saveImage := func() {
		d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			a := engine.Action{Kind: engine.ActionSave}
			if wc != nil {
				defer func() { _ = wc.Close() }()
				a.Writer = wc
				if f, ferr := export.FormatFromPath(wc.URI().Name()); ferr == nil {
					a.Format = string(f)
				}
			}
			dispatch(a)
		}, w)
		d.SetFileName("board." + cfg.Export.Format)
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".svg", ".pdf"}))
		if loc := location(); loc != nil {
			d.SetLocation(loc)
		}
		d.Show()
	}

	exportDoc := func() {
		d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			a := engine.Action{Kind: engine.ActionExport, IncludeLog: includeLog.Checked}
			if wc != nil {
				defer func() { _ = wc.Close() }()
				a.Writer = wc
			}
			dispatch(a)
		}, w)
		d.SetFileName("board.json")
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		if loc := location(); loc != nil {
			d.SetLocation(loc)
		}
		d.Show()
	}

	importDoc := func() {
		d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			a := engine.Action{Kind: engine.ActionImport}
			if rc != nil {
				defer func() { _ = rc.Close() }()
				a.Reader = rc
				addRecentBoard(prefs, rc.URI().Path())
			}
			dispatch(a)
		}, w)
		d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		if loc := location(); loc != nil {
			d.SetLocation(loc)
		}
		d.Show()
	}

	openBoard := func(path string) {
		if err := loadBoard(eng, path); err != nil {
			l.Warn("open board failed", slog.String("path", path), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		boardPath = path
		addRecentBoard(prefs, path)
		w.SetTitle("Sketchboard - " + filepath.Base(path))
		syncTool()
		board.Refresh()
	}

	saveBoard := func() {
		if boardPath == "" {
			exportDoc()
			return
		}
		doc := storage.NewDocument(eng.Log(), storage.ModeLog)
		if err := storage.SaveDocument(boardPath, doc); err != nil {
			l.Error("save board failed", slog.String("path", boardPath), slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Saved " + filepath.Base(boardPath))
	}

	act := func(k engine.ActionKind) func() {
		return func() { dispatch(engine.Action{Kind: k}) }
	}

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), act(engine.ActionNew)),
		widget.NewToolbarAction(theme.FolderOpenIcon(), importDoc),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), saveBoard),
		widget.NewToolbarAction(theme.DownloadIcon(), saveImage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), act(engine.ActionUndo)),
		widget.NewToolbarAction(theme.ContentRedoIcon(), act(engine.ActionRedo)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), act(engine.ActionZoomIn)),
		widget.NewToolbarAction(theme.ZoomOutIcon(), act(engine.ActionZoomOut)),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.MoveUpIcon(), act(engine.ActionMoveForward)),
		widget.NewToolbarAction(theme.MoveDownIcon(), act(engine.ActionMoveBackward)),
		widget.NewToolbarAction(theme.ContentCopyIcon(), act(engine.ActionCopy)),
		widget.NewToolbarAction(theme.DeleteIcon(), act(engine.ActionDelete)),
	)

	settings := container.NewHBox(
		widget.NewLabel("Tool"), toolSelect,
		widget.NewLabel("Stroke"), strokeEntry,
		widget.NewLabel("Fill"), fillEntry,
		widget.NewLabel("Width"), widthSelect,
		includeLog,
	)

	recentMenu := fyne.NewMenuItem("Open Recent", nil)
	refreshRecent := func() {
		var items []*fyne.MenuItem
		for _, p := range loadRecentBoards(prefs) {
			items = append(items, fyne.NewMenuItem(p, func() { openBoard(p) }))
		}
		if len(items) == 0 {
			none := fyne.NewMenuItem("(none)", nil)
			none.Disabled = true
			items = append(items, none)
		}
		recentMenu.ChildMenu = fyne.NewMenu("", items...)
	}
	refreshRecent()

	newItem := fyne.NewMenuItem("New", act(engine.ActionNew))
	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierShortcutDefault}
	saveItem := fyne.NewMenuItem("Save Board", saveBoard)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	fileMenu := fyne.NewMenu("File",
		newItem,
		recentMenu,
		fyne.NewMenuItemSeparator(),
		saveItem,
		fyne.NewMenuItem("Export Document...", exportDoc),
		fyne.NewMenuItem("Import Document...", importDoc),
		fyne.NewMenuItem("Save Image...", saveImage),
	)
	undoItem := fyne.NewMenuItem("Undo", act(engine.ActionUndo))
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem := fyne.NewMenuItem("Redo", act(engine.ActionRedo))
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	editMenu := fyne.NewMenu("Edit",
		undoItem,
		redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy", act(engine.ActionCopy)),
		fyne.NewMenuItem("Delete", act(engine.ActionDelete)),
		fyne.NewMenuItem("Bring Forward", act(engine.ActionMoveForward)),
		fyne.NewMenuItem("Send Backward", act(engine.ActionMoveBackward)),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu))

	for _, item := range []*fyne.MenuItem{newItem, saveItem, undoItem, redoItem} {
		w.Canvas().AddShortcut(item.Shortcut, func(fyne.Shortcut) { item.Action() })
	}
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			dispatch(engine.Action{Kind: engine.ActionCancel})
		case fyne.KeyDelete, fyne.KeyBackspace:
			dispatch(engine.Action{Kind: engine.ActionDelete})
		}
	})

	board.OnChange = syncTool
	w.SetContent(container.NewBorder(container.NewVBox(toolbar, settings), status, nil, nil, board))
	w.SetCloseIntercept(func() {
		size := w.Canvas().Size()
		prefs.SetInt(prefWindowWidth, int(size.Width))
		prefs.SetInt(prefWindowHeight, int(size.Height))
		w.Close()
	})

	if boardPath != "" {
		openBoard(boardPath)
		refreshRecent()
	}

	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// loadBoard reads a document, falling back to its latest backup, and imports it.
func loadBoard(eng *engine.Engine, path string) error {
	doc, err := storage.LoadDocument(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := storage.EncodeDocument(&buf, doc); err != nil {
		return err
	}
	return eng.Dispatch(engine.Action{Kind: engine.ActionImport, Reader: &buf})
}

func loadRecentBoards(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentBoards(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentBoard(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentBoards(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// case-insensitive on Windows
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentBoards(p, out)
}
