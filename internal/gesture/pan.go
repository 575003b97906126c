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

	"keyforge/internal/geom"
	"keyforge/internal/view"
)

// PanMachine drags the viewport. A mouse or single-touch drag updates
// the pan offset; a second finger switches to pinch-zoom handling. Any
// panning disables auto-zoom.
type PanMachine struct {
	env *Env

	active bool
	startX float64
	startY float64
	start  view.Transform
}

func NewPanMachine(env *Env) *PanMachine { return &PanMachine{env: env} }

func (m *PanMachine) Down(ev Pointer) {
	if len(ev.Touches) == 2 {
		d, mid := pinchGeometry(ev.Touches)
		m.env.View.StartPinch(d, mid.X, mid.Y)
		m.active = false
		return
	}
	m.active = true
	m.startX, m.startY = ev.X, ev.Y
	m.start = m.env.View.T
}

func (m *PanMachine) Move(ev Pointer) {
	if m.env.View.Pinching() {
		if len(ev.Touches) == 2 {
			d, mid := pinchGeometry(ev.Touches)
			m.env.View.Pinch(d, mid.X, mid.Y)
		}
		return
	}
	if !m.active {
		return
	}
	s := m.env.View.T.S
	m.env.View.PanTo(
		m.start.X+(ev.X-m.startX)/s,
		m.start.Y+(ev.Y-m.startY)/s,
	)
}

func (m *PanMachine) Up(ev Pointer) {
	if m.env.View.Pinching() && len(ev.Touches) < 2 {
		m.env.View.EndPinch()
	}
	m.active = false
}

func (m *PanMachine) Reset() {
	m.active = false
	m.env.View.EndPinch()
}

func pinchGeometry(touches []geom.Pt) (dist float64, mid geom.Pt) {
	a, b := touches[0], touches[1]
	return math.Hypot(b.X-a.X, b.Y-a.Y), geom.Pt{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
