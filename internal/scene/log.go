/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the append-only shape revision log and its projection onto the visible scene.
package scene

import (
	"math"
	"sort"
	"sync"

	"sketchboard/internal/domain"
	"sketchboard/internal/undo"
)

// Log is the event-sourced drawing state. Every edit is an appended revision; undo relocates the
// tail onto a redo stack. The collapsed scene is memoized on the history's mutation version.
type Log struct {
	hist *undo.History[domain.ShapeRevision]

	mu          sync.Mutex
	memoVersion uint64
	memo        []domain.ShapeRevision
	memoValid   bool
}

func NewLog(cfg undo.Config) *Log {
	return &Log{hist: undo.NewHistory[domain.ShapeRevision](cfg)}
}

// Append adds r as the new head for its id. The revision is cloned so callers cannot alias logged segments.
func (l *Log) Append(r domain.ShapeRevision) {
	l.hist.Push(r.Clone())
}

// UndoLast moves the log tail to the redo stack.
func (l *Log) UndoLast() (domain.ShapeRevision, bool) { return l.hist.Undo() }

// RedoLast moves the redo tail back onto the log.
func (l *Log) RedoLast() (domain.ShapeRevision, bool) { return l.hist.Redo() }

// Reset clears the log and the redo stack.
func (l *Log) Reset() { l.hist.Clear() }

// Replace swaps the whole log for revs and clears redo.
func (l *Log) Replace(revs []domain.ShapeRevision) {
	cp := make([]domain.ShapeRevision, len(revs))
	for i, r := range revs {
		cp[i] = r.Clone()
	}
	l.hist.Replace(cp)
}

// Entries returns a copy of the raw log, oldest first.
func (l *Log) Entries() []domain.ShapeRevision { return l.hist.Items() }

// RedoEntries returns a copy of the redo stack, next redo last.
func (l *Log) RedoEntries() []domain.ShapeRevision { return l.hist.RedoItems() }

// Len is the number of log entries.
func (l *Log) Len() int { return l.hist.Len() }

// Collapse projects the log onto the current scene: the last revision per id, without
// disabled heads, ordered by ascending zIndex. Ties keep the order in which the ids first appeared.
// The returned slice is shared with the memo and must not be modified.
func (l *Log) Collapse() []domain.ShapeRevision {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := l.hist.Version()
	if l.memoValid && l.memoVersion == v {
		return l.memo
	}
	l.memo = Collapse(l.hist.Items())
	l.memoVersion = v
	l.memoValid = true
	return l.memo
}

// Collapse is the pure projection used by Log.Collapse.
func Collapse(entries []domain.ShapeRevision) []domain.ShapeRevision {
	heads := make(map[string]int, len(entries))
	order := make([]string, 0, len(entries))
	for i, r := range entries {
		if _, seen := heads[r.ID]; !seen {
			order = append(order, r.ID)
		}
		heads[r.ID] = i
	}
	out := make([]domain.ShapeRevision, 0, len(order))
	for _, id := range order {
		r := entries[heads[id]]
		if r.Disabled {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// Head returns the current visible revision for id.
func (l *Log) Head(id string) (domain.ShapeRevision, bool) {
	if id == "" {
		return domain.ShapeRevision{}, false
	}
	for _, r := range l.Collapse() {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return domain.ShapeRevision{}, false
}

// ZRange returns the lowest and highest zIndex of the collapsed scene; ok is false for an empty scene.
func (l *Log) ZRange() (lo, hi int, ok bool) {
	shapes := l.Collapse()
	if len(shapes) == 0 {
		return 0, 0, false
	}
	lo, hi = math.MaxInt, math.MinInt
	for _, r := range shapes {
		lo = min(lo, r.ZIndex)
		hi = max(hi, r.ZIndex)
	}
	return lo, hi, true
}

// NextZ is the zIndex a new topmost shape receives.
func (l *Log) NextZ() int {
	_, hi, ok := l.ZRange()
	if !ok {
		return 0
	}
	return hi + 1
}

// PrevZ is the zIndex a shape sent to the back receives.
func (l *Log) PrevZ() int {
	lo, _, ok := l.ZRange()
	if !ok {
		return 0
	}
	return lo - 1
}
