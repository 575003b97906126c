/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gesture implements the pointer-driven interaction modes of
// the layout editor: pan, box-select, wiring assignment, and geometry
// editing. Exactly one machine is active at a time; switching tools
// resets the outgoing machine so a half-completed drag never leaks
// state into the next mode.
package gesture

import (
	"math"

	"keyforge/internal/domain"
	"keyforge/internal/geom"
	"keyforge/internal/view"
)

// Pointer is a normalized pointer or touch event in client (screen)
// coordinates. The UI shell translates toolkit events into this form.
type Pointer struct {
	X, Y float64

	Shift bool
	Alt   bool

	// Touch marks events originating from a touch screen; Touches
	// carries all active contact points (two for a pinch).
	Touch   bool
	Touches []geom.Pt

	// OnButton is set when the press landed on a UI control that must
	// keep working on top of the canvas; gesture machines let those
	// pass through undisturbed.
	OnButton bool

	// HandleKey carries the id of the key whose edit handle was
	// pressed, or "" when the press hit bare canvas.
	HandleKey string
}

// Machine is the common surface of the four interaction modes.
type Machine interface {
	Down(ev Pointer)
	Move(ev Pointer)
	Up(ev Pointer)
	Reset()
}

// KeyStore is the externally owned key collection the machines mutate.
// Keys returns the live backing slice so entries can be edited in
// place; Touch signals a re-render mid-drag; Commit restores the
// canonical invariant and notifies observers when a structural edit is
// complete.
type KeyStore interface {
	Keys() []domain.Key
	Touch()
	Commit()
}

// NavState is the externally owned selection and navigation state.
type NavState interface {
	Selected() []string
	SetSelected(ids []string)
	// ActivePart returns the active edit part scope; ok is false when
	// no scope is active and every key is in scope.
	ActivePart() (part int, ok bool)
}

// Env bundles the collaborators a machine needs.
type Env struct {
	Keys KeyStore
	Nav  NavState
	View *view.View

	// Assign is the wiring-assignment callback invoked by the wire
	// machine; side-effect only.
	Assign func(*domain.Key)
}

// inScope reports whether a key participates in hit-testing and
// selection mutation under the current part scope.
func (e *Env) inScope(k domain.Key) bool {
	part, ok := e.Nav.ActivePart()
	return !ok || k.Part == part
}

// contentPoint converts a client position into content space, where
// key polygons live.
func (e *Env) contentPoint(clientX, clientY float64) geom.Pt {
	virt := e.View.ScreenToVirtual(clientX, clientY)
	return e.View.VirtualToContent(virt, e.Keys.Keys())
}

// Tool selects the active interaction mode.
type Tool int

const (
	ToolPan Tool = iota
	ToolSelect
	ToolWire
	ToolEdit
)

// Controller owns the four machines and enforces mode exclusivity:
// the outgoing machine is reset before the incoming one sees input.
type Controller struct {
	tool Tool

	pan  *PanMachine
	sel  *SelectMachine
	wire *WireMachine
	edit *EditMachine
}

// NewController builds the closed set of machines over a shared
// environment. The initial tool is Pan.
func NewController(env *Env) *Controller {
	return &Controller{
		pan:  NewPanMachine(env),
		sel:  NewSelectMachine(env),
		wire: NewWireMachine(env),
		edit: NewEditMachine(env),
	}
}

// Tool returns the active tool.
func (c *Controller) Tool() Tool { return c.tool }

// SetTool switches interaction modes, discarding any in-flight gesture
// of the previous mode.
func (c *Controller) SetTool(t Tool) {
	if t == c.tool {
		return
	}
	c.active().Reset()
	c.tool = t
}

func (c *Controller) active() Machine {
	switch c.tool {
	case ToolSelect:
		return c.sel
	case ToolWire:
		return c.wire
	case ToolEdit:
		return c.edit
	default:
		return c.pan
	}
}

func (c *Controller) Down(ev Pointer) { c.active().Down(ev) }
func (c *Controller) Move(ev Pointer) { c.active().Move(ev) }
func (c *Controller) Up(ev Pointer)   { c.active().Up(ev) }

// Select exposes the box-select machine so the shell can render its
// overlay rectangle.
func (c *Controller) Select() *SelectMachine { return c.sel }

// Edit exposes the edit machine so the shell can switch its sub-mode.
func (c *Controller) Edit() *EditMachine { return c.edit }

func dist(ax, ay, bx, by float64) float64 { return math.Hypot(bx-ax, by-ay) }
