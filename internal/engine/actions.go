/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"sketchboard/internal/domain"
	"sketchboard/internal/notify"
	"sketchboard/internal/shape"
	"sketchboard/internal/vector"
)

// ActionKind names a toolbar command.
type ActionKind uint8

const (
	ActionNew ActionKind = iota
	ActionUndo
	ActionRedo
	ActionSave
	ActionExport
	ActionImport
	ActionZoomIn
	ActionZoomOut
	ActionMoveForward
	ActionMoveBackward
	ActionCopy
	ActionDelete
	ActionSetStrokeColor
	ActionSetFillColor
	ActionSetStrokeWidth
	ActionSetTool
	ActionCancel
)

var actionNames = map[ActionKind]string{
	ActionNew:            "new",
	ActionUndo:           "undo",
	ActionRedo:           "redo",
	ActionSave:           "save",
	ActionExport:         "export",
	ActionImport:         "import",
	ActionZoomIn:         "zoom-in",
	ActionZoomOut:        "zoom-out",
	ActionMoveForward:    "move-forward",
	ActionMoveBackward:   "move-backward",
	ActionCopy:           "copy",
	ActionDelete:         "delete",
	ActionSetStrokeColor: "set-stroke-color",
	ActionSetFillColor:   "set-fill-color",
	ActionSetStrokeWidth: "set-stroke-width",
	ActionSetTool:        "set-tool",
	ActionCancel:         "cancel",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// ParseAction resolves an action by name.
func ParseAction(s string) (ActionKind, error) {
	for k, name := range actionNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Action is a non-pointer command. Only the fields relevant to Kind are read.
type Action struct {
	Kind  ActionKind
	Color string  // SetStrokeColor, SetFillColor
	Width float64 // SetStrokeWidth
	Tool  Tool    // SetTool
	// Format selects the image format for Save; empty uses the configured default.
	Format string
	// IncludeLog exports the raw log instead of the collapsed scene.
	IncludeLog bool
	// Writer receives Save/Export output; nil means the user cancelled the file choice.
	Writer io.Writer
	// Reader supplies the Import document; nil means the user cancelled the file choice.
	Reader io.Reader
}

// Dispatch runs a toolbar command. No-op commands (nothing selected, zoom at its bounds,
// empty undo stack) return nil. Rejected input and I/O failures are reported to the notifier
// and returned; the engine state is left as it was.
func (e *Engine) Dispatch(a Action) error {
	e.lock()
	defer e.unlock()
	l := e.logger.With(slog.String("action", a.Kind.String()))

	switch a.Kind {
	case ActionNew:
		e.log.Reset()
		e.resetSessionLocked()
		e.selectedID = ""
		e.vp.Reset()
		l.Info("board cleared")
	case ActionUndo:
		e.resetSessionLocked()
		e.selectedID = ""
		if r, ok := e.log.UndoLast(); ok {
			l.Debug("undone", slog.String("id", r.ID))
		}
	case ActionRedo:
		e.resetSessionLocked()
		e.selectedID = ""
		if r, ok := e.log.RedoLast(); ok {
			l.Debug("redone", slog.String("id", r.ID))
		}
	case ActionZoomIn:
		if !e.vp.ZoomIn() {
			l.Debug("zoom at bound", slog.Float64("zoom", e.vp.Zoom()))
		}
	case ActionZoomOut:
		if !e.vp.ZoomOut() {
			l.Debug("zoom at bound", slog.Float64("zoom", e.vp.Zoom()))
		}
	case ActionMoveForward, ActionMoveBackward:
		sel, ok := e.selectedLocked()
		if !ok {
			l.Debug("nothing selected")
			return nil
		}
		r := sel.Clone()
		if a.Kind == ActionMoveForward {
			r.ZIndex = e.log.NextZ()
		} else {
			r.ZIndex = e.log.PrevZ()
		}
		e.appendLocked(r, a.Kind.String())
	case ActionCopy:
		sel, ok := e.selectedLocked()
		if !ok {
			l.Debug("nothing selected")
			return nil
		}
		r := sel.Clone()
		r.ID = domain.NewShapeID()
		r.ZIndex = e.log.NextZ()
		b, _ := shape.RevisionBounds(r)
		anchor := e.vp.ToWorld(e.cfg.CopyAnchor)
		r = shape.Translate(r, anchor.Sub(b.Min()))
		e.appendLocked(r, "copy")
		e.selectedID = r.ID
	case ActionDelete:
		sel, ok := e.selectedLocked()
		if !ok {
			l.Debug("nothing selected")
			return nil
		}
		r := sel.Clone()
		r.Disabled = true
		e.appendLocked(r, "delete")
		e.selectedID = ""
	case ActionSetStrokeColor, ActionSetFillColor:
		_, err := vector.ParseColor(a.Color)
		if err == nil && strings.TrimSpace(a.Color) == "" {
			err = errors.New("empty color")
		}
		if err != nil {
			e.notifyLocked(notify.Warning, fmt.Sprintf("invalid color %q", a.Color))
			return fmt.Errorf("%s: %w", a.Kind, err)
		}
		if a.Kind == ActionSetStrokeColor {
			e.strokeColor = a.Color
		} else {
			e.fillColor = a.Color
		}
	case ActionSetStrokeWidth:
		if a.Width <= 0 {
			e.notifyLocked(notify.Warning, "stroke width must be positive")
			return fmt.Errorf("%s: width %v must be positive", a.Kind, a.Width)
		}
		e.strokeWidth = a.Width
	case ActionSetTool:
		if !a.Tool.Valid() {
			return fmt.Errorf("%s: invalid tool %d", a.Kind, uint8(a.Tool))
		}
		e.switchToolLocked(a.Tool)
	case ActionCancel:
		e.resetSessionLocked()
	case ActionSave:
		return e.saveLocked(a, l)
	case ActionExport:
		return e.exportLocked(a, l)
	case ActionImport:
		return e.importLocked(a, l)
	default:
		return fmt.Errorf("unknown action %d", uint8(a.Kind))
	}
	return nil
}

func (e *Engine) saveLocked(a Action, l *slog.Logger) error {
	if e.collab.Images == nil {
		return ErrNoPersistence
	}
	if a.Writer == nil {
		e.notifyLocked(notify.Info, "save cancelled")
		return nil
	}
	format := a.Format
	if format == "" {
		format = e.cfg.ImageFormat
	}
	shapes := cloneAll(e.log.Collapse())
	if err := e.collab.Images.Encode(a.Writer, format, shapes, vector.MustColor(e.cfg.Background)); err != nil {
		e.notifyLocked(notify.Error, "save failed: "+err.Error())
		return fmt.Errorf("save %s: %w", format, err)
	}
	l.Info("image saved", slog.String("format", format), slog.Int("shapes", len(shapes)))
	return nil
}

func (e *Engine) exportLocked(a Action, l *slog.Logger) error {
	if e.collab.Persistence == nil {
		return ErrNoPersistence
	}
	if a.Writer == nil {
		e.notifyLocked(notify.Info, "export cancelled")
		return nil
	}
	shapes := e.log.Entries()
	if !a.IncludeLog {
		shapes = cloneAll(e.log.Collapse())
	}
	if err := e.collab.Persistence.Export(a.Writer, shapes, a.IncludeLog); err != nil {
		e.notifyLocked(notify.Error, "export failed: "+err.Error())
		return fmt.Errorf("export: %w", err)
	}
	l.Info("board exported", slog.Int("revisions", len(shapes)), slog.Bool("raw_log", a.IncludeLog))
	return nil
}

func (e *Engine) importLocked(a Action, l *slog.Logger) error {
	if e.collab.Persistence == nil {
		return ErrNoPersistence
	}
	if a.Reader == nil {
		e.notifyLocked(notify.Info, "import cancelled")
		return nil
	}
	revs, err := e.collab.Persistence.Import(a.Reader)
	if err == nil {
		err = domain.ValidateAll(revs)
	}
	if err != nil {
		e.notifyLocked(notify.Warning, "import rejected: "+err.Error())
		l.Warn("import rejected", slog.Any("err", err))
		return fmt.Errorf("import: %w", err)
	}
	e.resetSessionLocked()
	e.selectedID = ""
	e.log.Replace(revs)
	l.Info("board imported", slog.Int("revisions", len(revs)))
	return nil
}
