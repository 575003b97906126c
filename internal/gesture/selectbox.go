/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"keyforge/internal/geom"
	"keyforge/internal/view"
)

// boxThreshold is the movement (in virtual units) required before the
// overlay rectangle starts tracking, filtering accidental
// micro-selections.
const boxThreshold = 20.0

// SelectMachine implements rubber-band selection. The release converts
// the overlay rectangle into a content-space polygon and marks every
// in-scope key whose rotated polygon overlaps it (SAT, any overlap
// counts). Modifiers decide how hits combine with the prior selection:
// none replaces, Shift unions, Alt toggles.
//
// The touch variant instead requires the movement threshold to enter a
// dragging sub-state, then continuously adds the key under the finger
// to the selection; it never removes.
type SelectMachine struct {
	env *Env

	active   bool
	touch    bool
	dragging bool
	start    geom.Pt // virtual
	end      *geom.Pt
}

func NewSelectMachine(env *Env) *SelectMachine { return &SelectMachine{env: env} }

func (m *SelectMachine) Down(ev Pointer) {
	m.active = true
	m.touch = ev.Touch
	m.dragging = false
	m.end = nil
	m.start = m.env.View.ScreenToVirtual(ev.X, ev.Y)
}

func (m *SelectMachine) Move(ev Pointer) {
	if !m.active {
		return
	}
	cur := m.env.View.ScreenToVirtual(ev.X, ev.Y)
	if m.touch {
		if !m.dragging && dist(m.start.X, m.start.Y, cur.X, cur.Y) < boxThreshold {
			return
		}
		m.dragging = true
		m.addKeyUnderFinger(ev)
		return
	}
	if m.end == nil && dist(m.start.X, m.start.Y, cur.X, cur.Y) < boxThreshold {
		return
	}
	c := cur
	m.end = &c
}

func (m *SelectMachine) Up(ev Pointer) {
	if !m.active {
		return
	}
	defer m.Reset()
	if m.touch || m.end == nil {
		return
	}
	hits := m.hitIDs()
	var result []string
	switch {
	case ev.Shift:
		result = union(m.env.Nav.Selected(), hits)
	case ev.Alt:
		result = symmetricDiff(m.env.Nav.Selected(), hits)
	default:
		result = hits
	}
	m.env.Nav.SetSelected(result)
}

func (m *SelectMachine) Reset() {
	m.active = false
	m.dragging = false
	m.end = nil
}

// Overlay returns the rubber-band rectangle in virtual coordinates for
// rendering; ok is false while no rectangle is being dragged.
func (m *SelectMachine) Overlay() (start, end geom.Pt, ok bool) {
	if !m.active || m.end == nil {
		return geom.Pt{}, geom.Pt{}, false
	}
	return m.start, *m.end, true
}

// hitIDs builds the selection polygon in content space and SAT-tests
// every in-scope key.
func (m *SelectMachine) hitIDs() []string {
	keys := m.env.Keys.Keys()
	off := view.ContentOffset(keys)
	minX, maxX := m.start.X, m.end.X
	if maxX < minX {
		minX, maxX = maxX, minX
	}
	minY, maxY := m.start.Y, m.end.Y
	if maxY < minY {
		minY, maxY = maxY, minY
	}
	box := geom.Polygon{
		{X: minX + off.X, Y: minY + off.Y},
		{X: maxX + off.X, Y: minY + off.Y},
		{X: maxX + off.X, Y: maxY + off.Y},
		{X: minX + off.X, Y: maxY + off.Y},
	}
	var hits []string
	for _, k := range keys {
		if !m.env.inScope(k) {
			continue
		}
		if geom.PolygonsIntersect(box, geom.KeyPolygon(k)) {
			hits = append(hits, k.ID)
		}
	}
	return hits
}

// addKeyUnderFinger appends the key under the touch point to the
// selection if it is not already present.
func (m *SelectMachine) addKeyUnderFinger(ev Pointer) {
	cp := m.env.contentPoint(ev.X, ev.Y)
	for _, k := range m.env.Keys.Keys() {
		if !m.env.inScope(k) {
			continue
		}
		if geom.PointInPolygon(geom.KeyPolygon(k), cp.X, cp.Y) {
			m.env.Nav.SetSelected(union(m.env.Nav.Selected(), []string{k.ID}))
			return
		}
	}
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func symmetricDiff(a, b []string) []string {
	inA := make(map[string]struct{}, len(a))
	for _, id := range a {
		inA[id] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	for _, id := range b {
		if _, ok := inA[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
