/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session owns the mutable editor state that outlives any single
// gesture: the key collection, the selection, and the debounce timer for
// text inputs. Gestures mutate the collection in place through KeyStore
// and the store restores the canonical ordering when an edit commits.
package session

import (
	"sync"
	"time"

	"keyforge/internal/domain"
)

// KeyStore holds the ordered key collection. Keys returns the live
// backing slice so edit gestures can update entries in place; Touch
// signals a mid-drag change for re-render, Commit restores the
// canonical invariant when a structural edit finishes.
type KeyStore struct {
	keys     []domain.Key
	onChange func()
}

func NewKeyStore(keys []domain.Key) *KeyStore {
	domain.Normalize(keys)
	return &KeyStore{keys: keys}
}

// OnChange registers the re-render callback. A nil callback is allowed.
func (s *KeyStore) OnChange(fn func()) { s.onChange = fn }

func (s *KeyStore) Keys() []domain.Key { return s.keys }

// Len reports the number of keys.
func (s *KeyStore) Len() int { return len(s.keys) }

// Replace swaps in a new collection, normalizes it and notifies.
func (s *KeyStore) Replace(keys []domain.Key) {
	domain.Normalize(keys)
	s.keys = keys
	s.notify()
}

// Add appends a key and re-normalizes.
func (s *KeyStore) Add(k domain.Key) {
	s.keys = append(s.keys, k)
	domain.Normalize(s.keys)
	s.notify()
}

// Remove drops every key whose id is in ids and re-normalizes.
func (s *KeyStore) Remove(ids []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.keys[:0]
	for _, k := range s.keys {
		if _, ok := drop[k.ID]; !ok {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(s.keys) {
		return
	}
	s.keys = kept
	domain.Normalize(s.keys)
	s.notify()
}

// Touch notifies listeners of an in-flight change without normalizing;
// drags call it on every move so the canvas tracks the pointer.
func (s *KeyStore) Touch() { s.notify() }

// Commit restores the canonical invariant after a structural edit and
// notifies.
func (s *KeyStore) Commit() {
	domain.Normalize(s.keys)
	s.notify()
}

func (s *KeyStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// NavState is the selection and part-scoping state read by gestures.
// The selection is a set of key ids; order carries no meaning. When an
// active part is set, keys of other parts are invisible to hit-testing
// and selection mutation.
type NavState struct {
	selected   []string
	activePart *int
}

func NewNavState() *NavState { return &NavState{} }

func (n *NavState) Selected() []string       { return n.selected }
func (n *NavState) SetSelected(ids []string) { n.selected = ids }

// ClearSelection empties the selection.
func (n *NavState) ClearSelection() { n.selected = nil }

// IsSelected reports whether id is in the selection.
func (n *NavState) IsSelected(id string) bool {
	for _, v := range n.selected {
		if v == id {
			return true
		}
	}
	return false
}

// ActivePart returns the part scope, ok=false when editing all parts.
func (n *NavState) ActivePart() (int, bool) {
	if n.activePart == nil {
		return 0, false
	}
	return *n.activePart, true
}

func (n *NavState) SetActivePart(part int) { n.activePart = &part }
func (n *NavState) ClearActivePart()       { n.activePart = nil }

// Debouncer defers a function until the input settles: each Schedule
// cancels the previous pending call. Safe for concurrent use; the
// callback runs on a timer goroutine.
type Debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer() *Debouncer { return &Debouncer{} }

// Schedule arranges fn to run after delay, replacing any pending call.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, fn)
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
