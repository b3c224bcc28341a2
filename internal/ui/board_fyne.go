//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"sketchboard/internal/engine"
	"sketchboard/internal/export"
	"sketchboard/internal/vector"
)

// BoardWidget shows the engine's scene and forwards pointer and wheel input to it.
type BoardWidget struct {
	widget.BaseWidget

	eng    *engine.Engine
	raster *canvas.Raster
	// OnChange runs after any input that may have changed the scene or the selection.
	OnChange func()
}

var (
	_ desktop.Mouseable  = (*BoardWidget)(nil)
	_ desktop.Hoverable  = (*BoardWidget)(nil)
	_ desktop.Cursorable = (*BoardWidget)(nil)
	_ fyne.Scrollable    = (*BoardWidget)(nil)
)

func NewBoardWidget(eng *engine.Engine) *BoardWidget {
	b := &BoardWidget{eng: eng}
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	b.raster = canvas.NewRaster(b.draw)
	return widget.NewSimpleRenderer(b.raster)
}

func (b *BoardWidget) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

// Resize keeps the engine's viewport in step with the widget.
func (b *BoardWidget) Resize(size fyne.Size) {
	b.eng.Resize(float64(size.Width), float64(size.Height))
	b.BaseWidget.Resize(size)
}

// draw renders at the raster's pixel size; the engine works in logical units so
// the surface is scaled by the device pixel ratio.
func (b *BoardWidget) draw(w, h int) image.Image {
	size := b.Size()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	s := export.NewRasterSurfaceFor(img)
	if size.Width > 0 {
		s.SetDeviceScale(float64(w) / float64(size.Width))
	}
	b.eng.Render(s)
	return img
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.eng.PointerDown(toPt(e.Position), b.eng.Tool())
	b.changed()
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.eng.PointerUp(toPt(e.Position), b.eng.Tool())
	b.changed()
}

func (b *BoardWidget) MouseIn(e *desktop.MouseEvent) { b.MouseMoved(e) }

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.eng.PointerMove(toPt(e.Position), b.eng.Tool())
	b.Refresh()
}

func (b *BoardWidget) MouseOut() {
	b.eng.PointerLeave()
	b.Refresh()
}

// Scrolled zooms; wheel up zooms in.
func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	if b.eng.WheelZoom(float64(-e.Scrolled.DY)) {
		b.changed()
	}
}

func (b *BoardWidget) Cursor() desktop.Cursor { return cursorFor(b.eng.Cursor()) }

func (b *BoardWidget) changed() {
	b.Refresh()
	if b.OnChange != nil {
		b.OnChange()
	}
}

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

// cursorFor maps CSS cursor names onto the few cursors the desktop driver offers.
func cursorFor(name string) desktop.Cursor {
	switch name {
	case "crosshair":
		return desktop.CrosshairCursor
	case "pointer", "grab", "grabbing", "move", "nesw-resize", "nwse-resize":
		return desktop.PointerCursor
	case "ew-resize":
		return desktop.HResizeCursor
	case "ns-resize":
		return desktop.VResizeCursor
	case "none":
		return desktop.HiddenCursor
	}
	return desktop.DefaultCursor
}
