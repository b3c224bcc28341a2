/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport maps between screen pixels and world coordinates for a pannable, zoomable board.
package viewport

import (
	"sketchboard/internal/vector"
)

// precision is the number of decimals zoom and pan are rounded to, so repeated zooming does not drift.
const precision = 3

// Config bounds the zoom factor.
type Config struct {
	MinZoom float64
	MaxZoom float64
	Step    float64
	Initial float64
}

func DefaultConfig() Config {
	return Config{MinZoom: 0.5, MaxZoom: 5, Step: 0.1, Initial: 1}
}

// Viewport holds pan offset (screen pixels) and zoom factor.
// toWorld(p) = (p - pan) / zoom; rendering applies translate(pan) then scale(zoom).
type Viewport struct {
	cfg  Config
	pan  vector.Pt
	zoom float64
	size vector.Size

	panning         bool
	panAtDragStart  vector.Pt
	dragStartScreen vector.Pt
}

func New(cfg Config, width, height float64) *Viewport {
	def := DefaultConfig()
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = def.MinZoom
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = max(def.MaxZoom, cfg.MinZoom)
	}
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.Initial < cfg.MinZoom || cfg.Initial > cfg.MaxZoom {
		cfg.Initial = min(max(def.Initial, cfg.MinZoom), cfg.MaxZoom)
	}
	return &Viewport{cfg: cfg, zoom: cfg.Initial, size: vector.Size{W: width, H: height}}
}

func (v *Viewport) Zoom() float64                 { return v.zoom }
func (v *Viewport) Pan() vector.Pt                { return v.pan }
func (v *Viewport) Size() vector.Size             { return v.size }
func (v *Viewport) Config() Config                { return v.cfg }
func (v *Viewport) Center() vector.Pt             { return vector.Pt{X: v.size.W / 2, Y: v.size.H / 2} }
func (v *Viewport) Panning() bool                 { return v.panning }
func (v *Viewport) ToWorld(p vector.Pt) vector.Pt { return p.Sub(v.pan).Mul(1 / v.zoom) }
func (v *Viewport) ToScreen(p vector.Pt) vector.Pt {
	return p.Mul(v.zoom).Add(v.pan)
}

// Transform is the world-to-screen matrix handed to drawing surfaces.
func (v *Viewport) Transform() vector.Affine2D {
	return vector.Translate(v.pan.X, v.pan.Y).Mul(vector.Scale(v.zoom, v.zoom))
}

// ScreenToWorldLength converts a pixel distance into world units at the current zoom.
func (v *Viewport) ScreenToWorldLength(px float64) float64 { return px / v.zoom }

// SetZoom changes the zoom and recomputes pan so the viewport center stays fixed.
// Requests outside [MinZoom, MaxZoom] leave the state unchanged and report false.
func (v *Viewport) SetZoom(z float64) bool {
	z = vector.FloatRound(z, precision)
	if z < v.cfg.MinZoom || z > v.cfg.MaxZoom || z == v.zoom {
		return false
	}
	c := v.Center()
	ratio := z / v.zoom
	v.pan = vector.Pt{
		X: vector.FloatRound(c.X-(c.X-v.pan.X)*ratio, precision),
		Y: vector.FloatRound(c.Y-(c.Y-v.pan.Y)*ratio, precision),
	}
	v.zoom = z
	return true
}

func (v *Viewport) ZoomIn() bool  { return v.SetZoom(v.zoom + v.cfg.Step) }
func (v *Viewport) ZoomOut() bool { return v.SetZoom(v.zoom - v.cfg.Step) }

// WheelZoom zooms in for a negative wheel delta and out for a positive one.
func (v *Viewport) WheelZoom(delta float64) bool {
	switch {
	case delta < 0:
		return v.ZoomIn()
	case delta > 0:
		return v.ZoomOut()
	}
	return false
}

// BeginPan records the drag anchor for a pan gesture.
func (v *Viewport) BeginPan(screen vector.Pt) {
	v.panning = true
	v.panAtDragStart = v.pan
	v.dragStartScreen = screen
}

// PanTo sets pan = panAtDragStart + (screen - dragStart). It is ignored outside a pan gesture.
func (v *Viewport) PanTo(screen vector.Pt) bool {
	if !v.panning {
		return false
	}
	v.pan = v.panAtDragStart.Add(screen.Sub(v.dragStartScreen))
	return true
}

// EndPan finishes a pan gesture.
func (v *Viewport) EndPan() { v.panning = false }

// Resize updates the viewport size; pan and zoom are kept.
func (v *Viewport) Resize(width, height float64) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	v.size = vector.Size{W: width, H: height}
}

// Reset returns to the initial zoom with no pan.
func (v *Viewport) Reset() {
	v.pan = vector.Pt{}
	v.zoom = v.cfg.Initial
	v.panning = false
}
