/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package engine

import (
	"log/slog"

	"sketchboard/internal/domain"
	"sketchboard/internal/notify"
	"sketchboard/internal/shape"
	"sketchboard/internal/vector"
)

// PointerDown starts a gesture at the screen point pt with the given tool.
// A different tool than the current one is a tool switch and resets any gesture first.
func (e *Engine) PointerDown(pt vector.Pt, tool Tool) {
	e.lock()
	defer e.unlock()
	if !tool.Valid() {
		return
	}
	if tool != e.tool {
		e.switchToolLocked(tool)
	}
	e.hover, e.hovering = pt, true
	if e.sess.pressed {
		// a second button while a gesture is running is ignored
		return
	}
	world := e.vp.ToWorld(pt)
	e.sess = session{
		pressed:     true,
		tool:        tool,
		startScreen: pt,
		startWorld:  world,
		lastWorld:   world,
	}
	switch {
	case tool == ToolPan:
		e.vp.BeginPan(pt)
		e.sess.state = StatePanning
	case tool.freehand():
		e.sess.state = StateFreehandDrawing
	case tool.parametric():
		e.sess.state = StateShapeDrafting
	case tool == ToolSelect:
		e.beginSelectLocked(world)
	case tool == ToolFill:
		// resolved on pointer-up
	}
}

func (e *Engine) beginSelectLocked(world vector.Pt) {
	if sel, ok := e.selectedLocked(); ok {
		seg := sel.Segments[0]
		b := shape.Bounds(seg)
		pad := e.vp.ScreenToWorldLength(e.cfg.HandlePadding)
		if dir := shape.HandleAt(b, world, pad, sel.ToolKind.Symmetric()); dir != shape.DirNone {
			e.sess.state = StateResizing
			e.sess.target = sel
			e.sess.dir = dir
			e.sess.preview = shape.Resize(seg, dir, vector.Pt{}, sel.ToolKind.Symmetric())
			return
		}
		if shape.Padded(b, pad).Contains(world) {
			e.sess.state = StateMoving
			e.sess.target = sel
			e.sess.preview = seg
			return
		}
	}
	if hit, ok := shape.HitTest(e.log.Collapse(), world, shape.Selectable); ok {
		e.selectedID = hit.ID
		e.logger.Debug("selected", slog.String("id", hit.ID), slog.String("kind", hit.ToolKind.String()))
		return
	}
	e.selectedID = ""
}

// PointerMove updates the gesture in progress, or only the hover position when idle.
func (e *Engine) PointerMove(pt vector.Pt, tool Tool) {
	e.lock()
	defer e.unlock()
	if !tool.Valid() {
		return
	}
	if tool != e.tool {
		e.switchToolLocked(tool)
		return
	}
	e.hover, e.hovering = pt, true
	e.trackLocked(pt)
}

func (e *Engine) trackLocked(pt vector.Pt) {
	if !e.sess.pressed {
		return
	}
	world := e.vp.ToWorld(pt)
	delta := world.Sub(e.sess.startWorld)
	switch e.sess.state {
	case StatePanning:
		e.vp.PanTo(pt)
	case StateFreehandDrawing:
		if world == e.sess.lastWorld {
			return
		}
		e.sess.segments = append(e.sess.segments, domain.Segment{From: e.sess.lastWorld, To: world})
		e.sess.lastWorld = world
	case StateShapeDrafting:
		to := world
		if k, _ := e.sess.tool.Kind(); k.Symmetric() {
			to = shape.Normalize(e.sess.startWorld, world)
		}
		e.sess.draft = domain.Segment{From: e.sess.startWorld, To: to}
		e.sess.hasDraft = true
	case StateMoving:
		e.sess.preview = shape.Move(e.sess.target.Segments[0], delta)
		e.sess.moved = delta != (vector.Pt{})
	case StateResizing:
		e.sess.preview = shape.Resize(e.sess.target.Segments[0], e.sess.dir, delta, e.sess.target.ToolKind.Symmetric())
		e.sess.moved = delta != (vector.Pt{})
	}
	e.sess.lastWorld = world
}

// PointerUp finishes the gesture and appends its revision, if any. The session is always reset.
// A pointer-up without a matching pointer-down does nothing.
func (e *Engine) PointerUp(pt vector.Pt, tool Tool) {
	e.lock()
	defer e.unlock()
	if !tool.Valid() {
		return
	}
	if tool != e.tool {
		e.switchToolLocked(tool)
		return
	}
	if !e.sess.pressed {
		return
	}
	defer e.resetSessionLocked()
	e.hover, e.hovering = pt, true
	e.trackLocked(pt)

	switch e.sess.state {
	case StatePanning:
		e.vp.EndPan()
	case StateFreehandDrawing, StateShapeDrafting:
		if r, ok := e.pendingRevisionLocked(domain.NewShapeID()); ok {
			e.appendLocked(r, "draw")
		}
	case StateMoving:
		if e.sess.moved {
			e.appendLocked(e.sess.target.WithSegment(e.sess.preview), "move")
		}
	case StateResizing:
		e.appendLocked(e.sess.target.WithSegment(e.sess.preview), "resize")
	case StateIdle:
		if e.sess.tool == ToolFill {
			e.fillAtLocked(e.vp.ToWorld(pt))
		}
	}
}

// pendingRevisionLocked builds the revision a finished freehand or drafting gesture would append.
func (e *Engine) pendingRevisionLocked(id string) (domain.ShapeRevision, bool) {
	kind, ok := e.sess.tool.Kind()
	if !ok {
		return domain.ShapeRevision{}, false
	}
	r := domain.ShapeRevision{
		ID:          id,
		ToolKind:    kind,
		StrokeColor: e.strokeColor,
		FillColor:   e.fillColor,
		StrokeWidth: e.strokeWidth,
		ZIndex:      e.log.NextZ(),
	}
	switch e.sess.state {
	case StateFreehandDrawing:
		if len(e.sess.segments) == 0 {
			return domain.ShapeRevision{}, false
		}
		r.Segments = append([]domain.Segment(nil), e.sess.segments...)
		if kind == domain.Eraser {
			r.StrokeColor = e.cfg.Background
			r.FillColor = e.cfg.Background
			r.StrokeWidth = e.strokeWidth * e.cfg.EraserScale
		}
	case StateShapeDrafting:
		if !e.sess.hasDraft || e.sess.draft.From == e.sess.draft.To {
			return domain.ShapeRevision{}, false
		}
		r.Segments = []domain.Segment{e.sess.draft}
	default:
		return domain.ShapeRevision{}, false
	}
	return r, true
}

func (e *Engine) fillAtLocked(world vector.Pt) {
	target, ok := shape.HitTest(e.log.Collapse(), world, shape.Selectable)
	if !ok {
		e.notifyLocked(notify.Warning, "fill target not found")
		return
	}
	if !target.ToolKind.Fillable() {
		e.notifyLocked(notify.Warning, "lines cannot be filled")
		return
	}
	if sameColor(target.FillColor, e.fillColor) {
		return
	}
	r := target.Clone()
	r.FillColor = e.fillColor
	e.appendLocked(r, "fill")
}

// sameColor compares parsed colors, so "#FFF" and "#ffffff" are equal.
func sameColor(a, b string) bool {
	ca, errA := vector.ParseColor(a)
	cb, errB := vector.ParseColor(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ca == cb
}

func (e *Engine) appendLocked(r domain.ShapeRevision, op string) {
	e.log.Append(r)
	e.logger.Debug("append",
		slog.String("op", op),
		slog.String("id", r.ID),
		slog.String("kind", r.ToolKind.String()),
		slog.Int("z", r.ZIndex),
		slog.Int("log_len", e.log.Len()))
}

// switchToolLocked activates tool and drops any gesture in flight, so that no later move
// or resize is computed against a drag snapshot taken with the previous tool.
func (e *Engine) switchToolLocked(tool Tool) {
	e.resetSessionLocked()
	if tool != ToolSelect {
		e.selectedID = ""
	}
	e.tool = tool
}

func (e *Engine) resetSessionLocked() {
	if e.sess.state == StatePanning {
		e.vp.EndPan()
	}
	e.sess = session{}
}
