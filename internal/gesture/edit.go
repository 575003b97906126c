/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"math"

	"keyforge/internal/domain"
	"keyforge/internal/geom"
)

// EditOp selects the edit machine's sub-mode.
type EditOp int

const (
	OpMove EditOp = iota
	OpResize
	OpRotateCenter
	OpRotateAnchor
)

const (
	// editThreshold gates entry into active dragging, in screen px.
	editThreshold = 5.0
	// gridSnap is the position/size snap increment in layout units;
	// holding Shift disables it.
	gridSnap = 0.25
	// angleSnap is the rotation snap increment in degrees; holding
	// Shift disables it.
	angleSnap = 15.0
	// minKeySize is the smallest width or height a resize may produce.
	minKeySize = 0.25
)

// EditMachine moves, resizes, and rotates the selected keys. A drag
// only starts on a press that carries a handle marker; the original
// geometry of every selected key is captured at press time so each
// move event computes absolute deltas against it. Releasing an active
// drag re-normalizes the collection.
type EditMachine struct {
	env *Env
	op  EditOp

	pressed  bool
	dragging bool
	startX   float64
	startY   float64

	originals map[string]domain.Key
	order     []string // selection order at press

	// Rotation state: ref is the angle reference point in layout
	// units, anchor the shared rigid-rotation anchor (OpRotateAnchor).
	ref        geom.Pt
	anchor     geom.Pt
	startAngle float64
}

func NewEditMachine(env *Env) *EditMachine { return &EditMachine{env: env} }

// Op returns the current sub-mode.
func (m *EditMachine) Op() EditOp { return m.op }

// SetOp switches the sub-mode, discarding any in-flight drag.
func (m *EditMachine) SetOp(op EditOp) {
	m.Reset()
	m.op = op
}

func (m *EditMachine) Down(ev Pointer) {
	if ev.HandleKey == "" {
		return
	}
	sel := m.env.Nav.Selected()
	if !contains(sel, ev.HandleKey) {
		sel = []string{ev.HandleKey}
		m.env.Nav.SetSelected(sel)
	}

	m.originals = make(map[string]domain.Key, len(sel))
	m.order = m.order[:0]
	for _, k := range m.env.Keys.Keys() {
		if contains(sel, k.ID) {
			m.originals[k.ID] = k
			m.order = append(m.order, k.ID)
		}
	}
	if len(m.originals) == 0 {
		return
	}

	m.pressed = true
	m.dragging = false
	m.startX, m.startY = ev.X, ev.Y

	m.ref = m.centroid()
	if m.op == OpRotateAnchor {
		m.anchor = m.sharedAnchor()
		m.ref = m.anchor
	}
	m.startAngle = m.angleAt(ev)
}

func (m *EditMachine) Move(ev Pointer) {
	if !m.pressed {
		return
	}
	if !m.dragging {
		if dist(m.startX, m.startY, ev.X, ev.Y) < editThreshold {
			return
		}
		m.dragging = true
	}
	switch m.op {
	case OpMove:
		m.applyMove(ev)
	case OpResize:
		m.applyResize(ev)
	case OpRotateCenter:
		m.applyRotateCenter(ev)
	case OpRotateAnchor:
		m.applyRotateAnchor(ev)
	}
	m.env.Keys.Touch()
}

func (m *EditMachine) Up(Pointer) {
	if m.dragging {
		m.env.Keys.Commit()
	}
	m.Reset()
}

func (m *EditMachine) Reset() {
	m.pressed = false
	m.dragging = false
	m.originals = nil
	m.order = nil
}

// unitDelta converts the screen drag vector into layout units.
func (m *EditMachine) unitDelta(ev Pointer) (dx, dy float64) {
	s := m.env.View.T.S
	return (ev.X - m.startX) / s / domain.Unit, (ev.Y - m.startY) / s / domain.Unit
}

func (m *EditMachine) applyMove(ev Pointer) {
	dx, dy := m.unitDelta(ev)
	m.eachSelected(func(k *domain.Key, orig domain.Key) {
		nx, ny := orig.X+dx, orig.Y+dy
		if !ev.Shift {
			nx = snap(nx, gridSnap)
			ny = snap(ny, gridSnap)
		}
		k.X, k.Y = nx, ny
		// The pivot follows the key only when it is an explicit
		// anchor; a center pivot needs no bookkeeping.
		if orig.Pivot.Set {
			k.Pivot = domain.Pivot{
				X:   orig.Pivot.X + (nx - orig.X),
				Y:   orig.Pivot.Y + (ny - orig.Y),
				Set: true,
			}
		}
	})
}

func (m *EditMachine) applyResize(ev Pointer) {
	dw, dh := m.unitDelta(ev)
	m.eachSelected(func(k *domain.Key, orig domain.Key) {
		nw, nh := orig.W+dw, orig.H+dh
		if !ev.Shift {
			nw = snap(nw, gridSnap)
			nh = snap(nh, gridSnap)
		}
		k.W = math.Max(minKeySize, nw)
		k.H = math.Max(minKeySize, nh)
	})
}

func (m *EditMachine) applyRotateCenter(ev Pointer) {
	delta := m.deltaAngle(ev)
	m.eachSelected(func(k *domain.Key, orig domain.Key) {
		k.R = orig.R + delta
		k.Pivot = domain.Pivot{} // back to rotating about own center
	})
}

func (m *EditMachine) applyRotateAnchor(ev Pointer) {
	delta := m.deltaAngle(ev)
	m.eachSelected(func(k *domain.Key, orig domain.Key) {
		ocx, ocy := orig.Center()
		nc := geom.RotateAbout(geom.Pt{X: ocx, Y: ocy}, m.anchor, delta)
		k.X = nc.X - orig.W/2
		k.Y = nc.Y - orig.H/2
		k.R = orig.R + delta
		k.Pivot = domain.Pivot{X: m.anchor.X, Y: m.anchor.Y, Set: true}
	})
}

func (m *EditMachine) deltaAngle(ev Pointer) float64 {
	delta := m.angleAt(ev) - m.startAngle
	if !ev.Shift {
		delta = snap(delta, angleSnap)
	}
	return delta
}

// angleAt returns the pointer's angle in degrees about the reference
// point.
func (m *EditMachine) angleAt(ev Pointer) float64 {
	cp := m.env.contentPoint(ev.X, ev.Y)
	return math.Atan2(cp.Y/domain.Unit-m.ref.Y, cp.X/domain.Unit-m.ref.X) * 180 / math.Pi
}

// centroid averages the rotated centers of the captured keys, in
// layout units.
func (m *EditMachine) centroid() geom.Pt {
	var sx, sy float64
	for _, id := range m.order {
		c := geom.KeyCenter(m.originals[id])
		sx += c.X / domain.Unit
		sy += c.Y / domain.Unit
	}
	n := float64(len(m.order))
	return geom.Pt{X: sx / n, Y: sy / n}
}

// sharedAnchor picks the rigid-rotation anchor: a single key's
// explicit pivot (else its center), or the centroid for a multi-key
// selection.
func (m *EditMachine) sharedAnchor() geom.Pt {
	if len(m.order) == 1 {
		k := m.originals[m.order[0]]
		if k.Pivot.Set {
			return geom.Pt{X: k.Pivot.X, Y: k.Pivot.Y}
		}
		c := geom.KeyCenter(k)
		return geom.Pt{X: c.X / domain.Unit, Y: c.Y / domain.Unit}
	}
	return m.centroid()
}

// eachSelected applies fn to the live store entry of every captured
// key alongside its pre-drag original.
func (m *EditMachine) eachSelected(fn func(k *domain.Key, orig domain.Key)) {
	keys := m.env.Keys.Keys()
	for i := range keys {
		if orig, ok := m.originals[keys[i].ID]; ok {
			fn(&keys[i], orig)
		}
	}
}

func snap(v, step float64) float64 {
	return math.Round(v/step) * step
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
