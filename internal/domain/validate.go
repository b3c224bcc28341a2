/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"sketchboard/internal/vector"
)

// ErrInvalidRevision is returned for revisions that fail field validation.
var ErrInvalidRevision = errors.New("invalid shape revision")

// Validate checks a revision field by field. It is used on every imported revision.
func (r ShapeRevision) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidRevision, fmt.Sprintf(format, args...))
	}
	if r.ID == "" {
		return fail("id is empty")
	}
	if !r.ToolKind.Valid() {
		return fail("id %s: unknown tool kind %d", r.ID, uint8(r.ToolKind))
	}
	for _, c := range [...]struct{ field, value string }{{"strokeColor", r.StrokeColor}, {"fillColor", r.FillColor}} {
		if strings.TrimSpace(c.value) == "" {
			return fail("id %s: %s is empty", r.ID, c.field)
		}
		if _, err := vector.ParseColor(c.value); err != nil {
			return fail("id %s: %s: %v", r.ID, c.field, err)
		}
	}
	if math.IsNaN(r.StrokeWidth) || math.IsInf(r.StrokeWidth, 0) || r.StrokeWidth <= 0 {
		return fail("id %s: strokeWidth must be positive, got %v", r.ID, r.StrokeWidth)
	}
	if r.Segments == nil {
		return fail("id %s: segments missing", r.ID)
	}
	if r.ToolKind.Parametric() && len(r.Segments) != 1 {
		return fail("id %s: %s needs exactly one segment, got %d", r.ID, r.ToolKind, len(r.Segments))
	}
	for i, s := range r.Segments {
		for _, v := range []float64{s.From.X, s.From.Y, s.To.X, s.To.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fail("id %s: segment %d has a non-finite coordinate", r.ID, i)
			}
		}
	}
	return nil
}

// ValidateAll validates a list of revisions and reports the first failure with its position.
func ValidateAll(revs []ShapeRevision) error {
	for i, r := range revs {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("revision %d: %w", i, err)
		}
	}
	return nil
}
