/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import "sketchboard/internal/vector"

// OpKind names a recorded surface call.
type OpKind string

const (
	OpClear     OpKind = "clear"
	OpTransform OpKind = "transform"
	OpStroke    OpKind = "stroke"
	OpFill      OpKind = "fill"
)

// Op is one recorded call.
type Op struct {
	Kind      OpKind
	Path      vector.Path
	Stroke    vector.Stroke
	Color     vector.Color
	Transform vector.Affine2D
}

// Recorder is a Surface that keeps every call, for tests and diagnostics.
type Recorder struct {
	Ops []Op
}

func (r *Recorder) Clear(bg vector.Color) { r.Ops = append(r.Ops, Op{Kind: OpClear, Color: bg}) }
func (r *Recorder) SetTransform(m vector.Affine2D) {
	r.Ops = append(r.Ops, Op{Kind: OpTransform, Transform: m})
}
func (r *Recorder) StrokePath(p vector.Path, s vector.Stroke) {
	r.Ops = append(r.Ops, Op{Kind: OpStroke, Path: p, Stroke: s, Color: s.Color})
}
func (r *Recorder) FillPath(p vector.Path, c vector.Color) {
	r.Ops = append(r.Ops, Op{Kind: OpFill, Path: p, Color: c})
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Reset drops all recorded ops.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }
