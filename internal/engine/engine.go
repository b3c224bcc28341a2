/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine is the board's scene and interaction core. It turns pointer, wheel and toolbar
// input into appends on the shape revision log and exposes the collapsed scene for rendering.
//
// All mutations go through the Engine; renderers and the UI only read. The Engine is safe for
// concurrent use so that a UI can render from its paint callback while events arrive.
package engine

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"sketchboard/internal/domain"
	applog "sketchboard/internal/log"
	"sketchboard/internal/notify"
	"sketchboard/internal/render"
	"sketchboard/internal/scene"
	"sketchboard/internal/shape"
	"sketchboard/internal/undo"
	"sketchboard/internal/vector"
	"sketchboard/internal/viewport"
)

// ErrNoPersistence is returned by Export/Import/Save when no collaborator was configured.
var ErrNoPersistence = errors.New("no persistence collaborator configured")

// Config carries the board defaults.
type Config struct {
	Viewport    viewport.Config
	Width       float64
	Height      float64
	Background  string
	StrokeColor string
	FillColor   string
	StrokeWidth float64
	// HandlePadding is the selection padding and handle tolerance in screen pixels.
	HandlePadding float64
	// CopyAnchor is the screen point a copied shape's bounding box is placed at.
	CopyAnchor  vector.Pt
	EraserScale float64
	// ImageFormat is used by Save when the action carries no format.
	ImageFormat string
	Undo        undo.Config
}

func DefaultConfig() Config {
	return Config{
		Viewport:      viewport.DefaultConfig(),
		Width:         1280,
		Height:        800,
		Background:    "#ffffff",
		StrokeColor:   "#000000",
		FillColor:     "transparent",
		StrokeWidth:   2,
		HandlePadding: 10,
		CopyAnchor:    vector.Pt{X: 100, Y: 100},
		EraserScale:   5,
		ImageFormat:   "png",
	}
}

// Persistence encodes and decodes board documents.
type Persistence interface {
	Export(w io.Writer, shapes []domain.ShapeRevision, rawLog bool) error
	Import(r io.Reader) ([]domain.ShapeRevision, error)
}

// ImageEncoder renders shapes to an image format such as png, svg or pdf.
type ImageEncoder interface {
	Encode(w io.Writer, format string, shapes []domain.ShapeRevision, background vector.Color) error
}

// Collaborators are the engine's outside dependencies. Nil members disable the related actions,
// except Notifier which defaults to the structured log.
type Collaborators struct {
	Persistence Persistence
	Images      ImageEncoder
	Notifier    notify.Notifier
}

type note struct {
	level notify.Level
	msg   string
}

// Engine owns the revision log, the viewport, the selection and the gesture session.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	log    *scene.Log
	vp     *viewport.Viewport
	sess   session
	collab Collaborators
	logger *slog.Logger

	tool        Tool
	selectedID  string
	strokeColor string
	fillColor   string
	strokeWidth float64
	hover       vector.Pt
	hovering    bool

	// notifications queued under the lock, delivered after it is released
	pending []note
}

func New(cfg Config, c Collaborators) *Engine {
	def := DefaultConfig()
	if cfg.StrokeWidth <= 0 {
		cfg.StrokeWidth = def.StrokeWidth
	}
	if cfg.HandlePadding <= 0 {
		cfg.HandlePadding = def.HandlePadding
	}
	if cfg.EraserScale <= 0 {
		cfg.EraserScale = def.EraserScale
	}
	if cfg.Background == "" {
		cfg.Background = def.Background
	}
	if cfg.StrokeColor == "" {
		cfg.StrokeColor = def.StrokeColor
	}
	if cfg.FillColor == "" {
		cfg.FillColor = def.FillColor
	}
	if cfg.ImageFormat == "" {
		cfg.ImageFormat = def.ImageFormat
	}
	if c.Notifier == nil {
		c.Notifier = notify.Log{}
	}
	return &Engine{
		cfg:         cfg,
		log:         scene.NewLog(cfg.Undo),
		vp:          viewport.New(cfg.Viewport, cfg.Width, cfg.Height),
		collab:      c,
		logger:      applog.WithComponent("engine"),
		tool:        ToolDraw,
		strokeColor: cfg.StrokeColor,
		fillColor:   cfg.FillColor,
		strokeWidth: cfg.StrokeWidth,
	}
}

func (e *Engine) lock() { e.mu.Lock() }

// unlock releases the engine and then delivers queued notifications,
// so a notifier may safely call back into the engine.
func (e *Engine) unlock() {
	notes := e.pending
	e.pending = nil
	n := e.collab.Notifier
	e.mu.Unlock()
	for _, m := range notes {
		n.Notify(m.level, m.msg)
	}
}

func (e *Engine) notifyLocked(level notify.Level, msg string) {
	e.pending = append(e.pending, note{level: level, msg: msg})
}

// CollapsedScene returns the visible shapes in stacking order.
func (e *Engine) CollapsedScene() []domain.ShapeRevision {
	e.lock()
	defer e.unlock()
	return cloneAll(e.log.Collapse())
}

// Log returns a copy of the raw revision log.
func (e *Engine) Log() []domain.ShapeRevision {
	e.lock()
	defer e.unlock()
	return e.log.Entries()
}

// RedoLog returns a copy of the redo stack.
func (e *Engine) RedoLog() []domain.ShapeRevision {
	e.lock()
	defer e.unlock()
	return e.log.RedoEntries()
}

// SelectedShape re-resolves the selection to the current head of its id.
func (e *Engine) SelectedShape() (domain.ShapeRevision, bool) {
	e.lock()
	defer e.unlock()
	return e.selectedLocked()
}

func (e *Engine) selectedLocked() (domain.ShapeRevision, bool) {
	r, ok := e.log.Head(e.selectedID)
	if !ok || !r.ToolKind.Selectable() {
		return domain.ShapeRevision{}, false
	}
	return r, true
}

func (e *Engine) Tool() Tool {
	e.lock()
	defer e.unlock()
	return e.tool
}

func (e *Engine) State() State {
	e.lock()
	defer e.unlock()
	return e.sess.state
}

func (e *Engine) StrokeColor() string {
	e.lock()
	defer e.unlock()
	return e.strokeColor
}

func (e *Engine) FillColor() string {
	e.lock()
	defer e.unlock()
	return e.fillColor
}

func (e *Engine) StrokeWidth() float64 {
	e.lock()
	defer e.unlock()
	return e.strokeWidth
}

// Zoom returns the current zoom factor.
func (e *Engine) Zoom() float64 {
	e.lock()
	defer e.unlock()
	return e.vp.Zoom()
}

// Pan returns the current pan offset in screen pixels.
func (e *Engine) Pan() vector.Pt {
	e.lock()
	defer e.unlock()
	return e.vp.Pan()
}

// Viewport returns a copy of the current viewport.
func (e *Engine) Viewport() viewport.Viewport {
	e.lock()
	defer e.unlock()
	return *e.vp
}

// ToWorld converts a screen point with the current viewport.
func (e *Engine) ToWorld(p vector.Pt) vector.Pt {
	e.lock()
	defer e.unlock()
	return e.vp.ToWorld(p)
}

// WheelZoom zooms around the viewport center; negative deltas zoom in.
func (e *Engine) WheelZoom(delta float64) bool {
	e.lock()
	defer e.unlock()
	ok := e.vp.WheelZoom(delta)
	if !ok {
		e.logger.Debug("zoom ignored", slog.Float64("zoom", e.vp.Zoom()), slog.Float64("delta", delta))
	}
	return ok
}

// Resize updates the viewport size.
func (e *Engine) Resize(width, height float64) {
	e.lock()
	defer e.unlock()
	e.vp.Resize(width, height)
}

// PointerLeave hides the hover feedback until the pointer returns.
func (e *Engine) PointerLeave() {
	e.lock()
	defer e.unlock()
	e.hovering = false
}

// EraserCursorSize is the on-screen diameter of the eraser cursor.
func (e *Engine) EraserCursorSize() float64 {
	e.lock()
	defer e.unlock()
	return e.strokeWidth * e.cfg.EraserScale * e.vp.Zoom()
}

// Cursor returns a CSS-style cursor name for the current tool, gesture and hover position.
func (e *Engine) Cursor() string {
	e.lock()
	defer e.unlock()
	switch e.tool {
	case ToolPan:
		if e.sess.state == StatePanning {
			return "grabbing"
		}
		return "grab"
	case ToolFill:
		return "pointer"
	case ToolEraser:
		return "none"
	case ToolSelect:
		switch e.sess.state {
		case StateMoving:
			return "move"
		case StateResizing:
			return e.sess.dir.Cursor()
		}
		sel, ok := e.selectedLocked()
		if !ok {
			return "default"
		}
		b := shape.Bounds(sel.Segments[0])
		pad := e.vp.ScreenToWorldLength(e.cfg.HandlePadding)
		world := e.vp.ToWorld(e.hover)
		if dir := shape.HandleAt(b, world, pad, sel.ToolKind.Symmetric()); dir != shape.DirNone {
			return dir.Cursor()
		}
		if shape.Padded(b, pad).Contains(world) {
			return "move"
		}
		return "default"
	}
	return "crosshair"
}

// Render draws the scene, the gesture in progress and the selection onto s.
func (e *Engine) Render(s render.Surface) {
	e.lock()
	defer e.unlock()
	render.Draw(s, e.frameLocked())
}

func (e *Engine) frameLocked() render.Frame {
	shapes := cloneAll(e.log.Collapse())
	sel, hasSel := e.selectedLocked()

	switch e.sess.state {
	case StateMoving, StateResizing:
		for i := range shapes {
			if shapes[i].ID == e.sess.target.ID {
				shapes[i] = e.sess.target.WithSegment(e.sess.preview)
			}
		}
		if hasSel && sel.ID == e.sess.target.ID {
			sel = sel.WithSegment(e.sess.preview)
		}
	case StateFreehandDrawing, StateShapeDrafting:
		if r, ok := e.pendingRevisionLocked(""); ok {
			shapes = append(shapes, r)
		}
	}

	f := render.Frame{
		Background: vector.MustColor(e.cfg.Background),
		Transform:  e.vp.Transform(),
		Shapes:     shapes,
	}
	if e.tool == ToolEraser && e.hovering {
		f.Eraser = &render.EraserCursor{
			Center:    e.vp.ToWorld(e.hover),
			Diameter:  e.strokeWidth * e.cfg.EraserScale,
			PixelSize: e.vp.ScreenToWorldLength(1),
		}
	}
	if hasSel && e.tool == ToolSelect {
		f.Selection = &render.Selection{
			Bounds:    shape.Bounds(sel.Segments[0]),
			Padding:   e.vp.ScreenToWorldLength(e.cfg.HandlePadding),
			Symmetric: sel.ToolKind.Symmetric(),
			PixelSize: e.vp.ScreenToWorldLength(1),
		}
	}
	return f
}

func cloneAll(in []domain.ShapeRevision) []domain.ShapeRevision {
	out := make([]domain.ShapeRevision, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
