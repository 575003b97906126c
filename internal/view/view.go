/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package view maps between the three coordinate spaces of the editor:
//
//   - screen: pixels, origin at the viewport's top-left;
//   - virtual: pixels, origin at the container center, pre-scale;
//   - content: virtual offset by half the content bounding box so the
//     visual origin sits at the geometric center of all keys.
//
// The Transform is process-local state re-derived from user gestures;
// it is never persisted.
package view

import (
	"keyforge/internal/domain"
	"keyforge/internal/geom"
)

const (
	// MinScale and MaxScale bound the zoom factor. Requests outside
	// the range are rejected, leaving the transform unchanged.
	MinScale = 0.2
	MaxScale = 5.0

	// AutoZoomMax caps the scale picked by auto-zoom.
	AutoZoomMax = 1.5

	// FitPadding is the fixed padding in screen pixels kept around the
	// content when auto-zoom fits it into the container.
	FitPadding = 24.0
)

// Transform is the current pan/zoom state: S the scale factor, X and Y
// the pan offset in virtual units.
type Transform struct {
	S float64
	X float64
	Y float64
}

// View combines the transform with the container metrics needed to
// convert client coordinates.
type View struct {
	T Transform

	// Container origin and size in client (screen) pixels.
	OriginX, OriginY float64
	Width, Height    float64

	// AutoZoom recomputes the scale to fit the content whenever the
	// collection changes; it turns itself off the moment the user pans
	// or zooms manually.
	AutoZoom bool

	pinch *pinchState
}

type pinchState struct {
	startDist float64
	startT    Transform
	startMid  geom.Pt // virtual position of the midpoint at pinch start
}

// New returns a view with the identity transform and auto-zoom enabled.
func New() *View {
	return &View{T: Transform{S: 1}, AutoZoom: true}
}

// SetContainer records the viewport's client-space origin and size.
func (v *View) SetContainer(originX, originY, width, height float64) {
	v.OriginX, v.OriginY = originX, originY
	v.Width, v.Height = width, height
}

// ScreenToVirtual converts client coordinates to virtual space:
// subtract the container-center offset, divide by the scale, then
// subtract the pan offset.
func (v *View) ScreenToVirtual(clientX, clientY float64) geom.Pt {
	return geom.Pt{
		X: (clientX-(v.OriginX+v.Width/2))/v.T.S - v.T.X,
		Y: (clientY-(v.OriginY+v.Height/2))/v.T.S - v.T.Y,
	}
}

// VirtualToScreen is the inverse of ScreenToVirtual.
func (v *View) VirtualToScreen(p geom.Pt) (clientX, clientY float64) {
	return (p.X+v.T.X)*v.T.S + v.OriginX + v.Width/2,
		(p.Y+v.T.Y)*v.T.S + v.OriginY + v.Height/2
}

// ContentOffset returns bbox.min + bbox.size/2 of the keys' rotated
// polygons in pixel space. Keys are authored relative to the content
// bounding box, not the virtual origin, so this offset is added to a
// virtual point before any polygon hit test.
func ContentOffset(keys []domain.Key) geom.Pt {
	b := geom.KeysBounds(keys)
	return geom.Pt{X: b.MinX + b.W()/2, Y: b.MinY + b.H()/2}
}

// VirtualToContent shifts a virtual point into content space.
func (v *View) VirtualToContent(p geom.Pt, keys []domain.Key) geom.Pt {
	off := ContentOffset(keys)
	return geom.Pt{X: p.X + off.X, Y: p.Y + off.Y}
}

// SetScale applies a zoom request. Values outside [MinScale, MaxScale]
// are rejected and the transform stays as it was. Manual zoom disables
// auto-zoom.
func (v *View) SetScale(s float64) bool {
	if s < MinScale || s > MaxScale {
		return false
	}
	v.T.S = s
	v.AutoZoom = false
	return true
}

// PanTo replaces the pan offset. Manual panning disables auto-zoom.
func (v *View) PanTo(x, y float64) {
	v.T.X, v.T.Y = x, y
	v.AutoZoom = false
}

// FitContent recomputes the scale so the keys' bounding box plus fixed
// padding fits the container, capped at AutoZoomMax, and recenters the
// pan. It only acts while auto-zoom is enabled.
func (v *View) FitContent(keys []domain.Key) {
	if !v.AutoZoom || len(keys) == 0 || v.Width <= 0 || v.Height <= 0 {
		return
	}
	b := geom.KeysBounds(keys)
	if b.W() <= 0 || b.H() <= 0 {
		return
	}
	sx := (v.Width - 2*FitPadding) / b.W()
	sy := (v.Height - 2*FitPadding) / b.H()
	s := sx
	if sy < s {
		s = sy
	}
	if s > AutoZoomMax {
		s = AutoZoomMax
	}
	if s < MinScale {
		s = MinScale
	}
	v.T.S = s
	// Content is rendered centered on the virtual origin, so fitting
	// just clears the pan.
	v.T.X, v.T.Y = 0, 0
}

// StartPinch captures the two-finger gesture baseline: the inter-finger
// distance and the virtual position of the midpoint under the current
// transform.
func (v *View) StartPinch(dist float64, midX, midY float64) {
	if dist <= 0 {
		return
	}
	v.pinch = &pinchState{
		startDist: dist,
		startT:    v.T,
		startMid:  v.ScreenToVirtual(midX, midY),
	}
}

// Pinch updates scale and pan from the current two-finger distance and
// midpoint. The scale request startScale*dist/startDist is rejected
// outside [MinScale, MaxScale], leaving the transform unchanged. The
// pan offset is recomputed so the midpoint's virtual position is
// preserved under the new scale.
func (v *View) Pinch(dist float64, midX, midY float64) bool {
	if v.pinch == nil || dist <= 0 {
		return false
	}
	s := v.pinch.startT.S * dist / v.pinch.startDist
	if s < MinScale || s > MaxScale {
		return false
	}
	v.T.S = s
	v.T.X = (midX-(v.OriginX+v.Width/2))/s - v.pinch.startMid.X
	v.T.Y = (midY-(v.OriginY+v.Height/2))/s - v.pinch.startMid.Y
	v.AutoZoom = false
	return true
}

// EndPinch discards any in-flight pinch state.
func (v *View) EndPinch() { v.pinch = nil }

// Pinching reports whether a pinch gesture is in flight.
func (v *View) Pinching() bool { return v.pinch != nil }
