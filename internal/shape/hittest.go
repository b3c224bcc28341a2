/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"sketchboard/internal/domain"
	"sketchboard/internal/vector"
)

// HitTest returns the topmost shape whose bounding box contains p among those accepted by filter.
// shapes must be in render order (ascending zIndex); on equal zIndex the later shape wins because it is drawn on top.
// Hits are bounding-box containment, so a click inside a triangle's box counts as a hit.
func HitTest(shapes []domain.ShapeRevision, p vector.Pt, filter func(domain.ToolKind) bool) (domain.ShapeRevision, bool) {
	best := -1
	for i, r := range shapes {
		if filter != nil && !filter(r.ToolKind) {
			continue
		}
		seg, ok := r.Primary()
		if !ok || !Bounds(seg).Contains(p) {
			continue
		}
		if best == -1 || r.ZIndex >= shapes[best].ZIndex {
			best = i
		}
	}
	if best == -1 {
		return domain.ShapeRevision{}, false
	}
	return shapes[best].Clone(), true
}

// Selectable is the hit filter for pointer selection.
func Selectable(k domain.ToolKind) bool { return k.Selectable() }
