/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package session

import (
	"sync/atomic"
	"testing"
	"time"

	"keyforge/internal/domain"
)

func TestKeyStoreNormalizesOnConstruction(t *testing.T) {
	keys := []domain.Key{
		{ID: "b", X: 3, Y: 2, W: 1, H: 1, Row: 1, Col: 0},
		{ID: "a", X: 2, Y: 1, W: 1, H: 1, Row: 0, Col: 0},
	}
	s := NewKeyStore(keys)
	got := s.Keys()
	if got[0].ID != "a" || got[0].X != 0 || got[0].Y != 0 {
		t.Fatalf("expected canonical order and origin shift: %+v", got)
	}
}

func TestKeyStoreCommitRestoresInvariant(t *testing.T) {
	s := NewKeyStore([]domain.Key{{ID: "a", W: 1, H: 1}})
	var changes int
	s.OnChange(func() { changes++ })
	s.Keys()[0].X = 1.2345
	s.Touch()
	if changes != 1 {
		t.Fatalf("touch must notify without normalizing, changes=%d", changes)
	}
	if s.Keys()[0].X != 1.2345 {
		t.Fatalf("touch must leave values raw: %v", s.Keys()[0].X)
	}
	s.Commit()
	if changes != 2 {
		t.Fatalf("commit must notify, changes=%d", changes)
	}
	if s.Keys()[0].X != 0 {
		t.Fatalf("commit must re-shift the origin: %v", s.Keys()[0].X)
	}
}

func TestKeyStoreRemove(t *testing.T) {
	s := NewKeyStore([]domain.Key{
		{ID: "a", X: 0, W: 1, H: 1, Col: 0},
		{ID: "b", X: 1, W: 1, H: 1, Col: 1},
	})
	var changes int
	s.OnChange(func() { changes++ })
	s.Remove([]string{"a"})
	if s.Len() != 1 || s.Keys()[0].ID != "b" {
		t.Fatalf("remove failed: %+v", s.Keys())
	}
	if s.Keys()[0].X != 0 || s.Keys()[0].Col != 0 {
		t.Fatalf("remove must re-normalize: %+v", s.Keys()[0])
	}
	s.Remove([]string{"missing"})
	if changes != 1 {
		t.Fatalf("removing nothing must not notify, changes=%d", changes)
	}
}

func TestNavStatePartScope(t *testing.T) {
	n := NewNavState()
	if _, ok := n.ActivePart(); ok {
		t.Fatalf("fresh state must have no part scope")
	}
	n.SetActivePart(2)
	if p, ok := n.ActivePart(); !ok || p != 2 {
		t.Fatalf("unexpected part scope: %d %v", p, ok)
	}
	n.ClearActivePart()
	if _, ok := n.ActivePart(); ok {
		t.Fatalf("clear must drop the scope")
	}
}

func TestNavStateSelection(t *testing.T) {
	n := NewNavState()
	n.SetSelected([]string{"a", "b"})
	if !n.IsSelected("a") || n.IsSelected("c") {
		t.Fatalf("membership check broken: %v", n.Selected())
	}
	n.ClearSelection()
	if len(n.Selected()) != 0 {
		t.Fatalf("clear must empty the selection")
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer()
	var fired atomic.Int32
	for i := 0; i < 5; i++ {
		d.Schedule(20*time.Millisecond, func() { fired.Add(1) })
	}
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected a single coalesced call, got %d", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer()
	var fired atomic.Int32
	d.Schedule(20*time.Millisecond, func() { fired.Add(1) })
	d.Cancel()
	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("cancel must drop the pending call, got %d", got)
	}
}
