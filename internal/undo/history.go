/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import "sync"

// Config controls depth caps.
type Config struct {
	// MaxRedo limits the number of entries kept on the redo stack (0 means unlimited).
	// The oldest undone entries are dropped first.
	MaxRedo int
}

// History is an append-only sequence with a parallel redo stack.
// Undo moves the tail of the sequence onto the redo stack and Redo moves it back,
// so entries are relocated rather than inverted. It is safe for concurrent use.
type History[T any] struct {
	cfg Config
	mu  sync.Mutex
	log []T
	// redo holds undone entries, most recently undone last
	redo []T
	// version increases on every mutation so readers can memoize derived state
	version uint64
}

func NewHistory[T any](cfg Config) *History[T] {
	return &History[T]{cfg: cfg}
}

// Push appends v. Any new entry invalidates the redo stack.
func (h *History[T]) Push(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append(h.log, v)
	h.redo = nil
	h.version++
}

// Undo pops the tail of the log and pushes it onto the redo stack.
func (h *History[T]) Undo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var zero T
	if len(h.log) == 0 {
		return zero, false
	}
	v := h.log[len(h.log)-1]
	h.log[len(h.log)-1] = zero
	h.log = h.log[:len(h.log)-1]
	h.redo = append(h.redo, v)
	h.enforceCapsLocked()
	h.version++
	return v, true
}

// Redo pops from redo and appends back to the log.
func (h *History[T]) Redo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var zero T
	if len(h.redo) == 0 {
		return zero, false
	}
	v := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.log = append(h.log, v)
	h.version++
	return v, true
}

// Replace swaps the whole log for items and clears redo.
func (h *History[T]) Replace(items []T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append([]T(nil), items...)
	h.redo = nil
	h.version++
}

// Clear empties both stacks.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = nil
	h.redo = nil
	h.version++
}

// Items returns a copy of the log, oldest first.
func (h *History[T]) Items() []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]T(nil), h.log...)
}

// RedoItems returns a copy of the redo stack, next redo last.
func (h *History[T]) RedoItems() []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]T(nil), h.redo...)
}

// Len returns the log length.
func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.log)
}

// Version returns the mutation counter.
func (h *History[T]) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// Stats returns current sizes for diagnostics.
func (h *History[T]) Stats() (logLen int, redoLen int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.log), len(h.redo)
}

func (h *History[T]) enforceCapsLocked() {
	if h.cfg.MaxRedo > 0 && len(h.redo) > h.cfg.MaxRedo {
		// drop the oldest undone entries
		toDrop := len(h.redo) - h.cfg.MaxRedo
		h.redo = append([]T{}, h.redo[toDrop:]...)
	}
}
