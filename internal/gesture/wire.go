/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import "keyforge/internal/geom"

// wireThreshold is the movement in screen pixels that commits a
// pending press into a wiring drag.
const wireThreshold = 6.0

// WireMachine implements pin-assignment painting: while dragging, the
// first in-scope key under the pointer that has not fired yet this
// drag triggers the wiring-assignment callback exactly once. Presses
// on UI buttons pass through untouched so the wiring canvas and its
// controls coexist.
type WireMachine struct {
	env *Env

	pending  bool
	dragging bool
	startX   float64
	startY   float64

	triggered map[string]bool
}

func NewWireMachine(env *Env) *WireMachine { return &WireMachine{env: env} }

func (m *WireMachine) Down(ev Pointer) {
	if ev.OnButton {
		return
	}
	m.pending = true
	m.dragging = false
	m.startX, m.startY = ev.X, ev.Y
	m.triggered = make(map[string]bool)
}

func (m *WireMachine) Move(ev Pointer) {
	if m.pending && !m.dragging &&
		dist(m.startX, m.startY, ev.X, ev.Y) >= wireThreshold {
		m.dragging = true
	}
	if !m.dragging {
		return
	}
	cp := m.env.contentPoint(ev.X, ev.Y)
	keys := m.env.Keys.Keys()
	for i := range keys {
		k := keys[i]
		if !m.env.inScope(k) || m.triggered[k.ID] {
			continue
		}
		if geom.PointInPolygon(geom.KeyPolygon(k), cp.X, cp.Y) {
			m.triggered[k.ID] = true
			if m.env.Assign != nil {
				m.env.Assign(&keys[i])
			}
			return
		}
	}
}

func (m *WireMachine) Up(Pointer) { m.Reset() }

func (m *WireMachine) Reset() {
	m.pending = false
	m.dragging = false
	m.triggered = nil
}
