/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Rotation-aware 2D geometry for key hit-testing and overlap tests.
// These utilities are UI-agnostic and deterministic to enable unit
// testing and reuse across frontends. Angles are degrees throughout;
// conversion to radians is local to each function.

import (
	"math"

	"keyforge/internal/domain"
)

// Pt is a 2D point in pixels unless stated otherwise.
type Pt struct{ X, Y float64 }

// Polygon is an ordered list of vertices.
type Polygon []Pt

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func (b BBox) W() float64 { return b.MaxX - b.MinX }
func (b BBox) H() float64 { return b.MaxY - b.MinY }

// Center returns the geometric center of the box.
func (b BBox) Center() Pt { return Pt{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2} }

// RotateAbout rotates p by deg degrees around pivot.
func RotateAbout(p, pivot Pt, deg float64) Pt {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	return Pt{
		X: pivot.X + dx*cos - dy*sin,
		Y: pivot.Y + dx*sin + dy*cos,
	}
}

// keyPivot resolves the rotation anchor in pixel space: the explicit
// pivot when set, otherwise the key's own center.
func keyPivot(k domain.Key) Pt {
	if k.Pivot.Set {
		return Pt{k.Pivot.X * domain.Unit, k.Pivot.Y * domain.Unit}
	}
	cx, cy := k.Center()
	return Pt{cx * domain.Unit, cy * domain.Unit}
}

// KeyPolygon returns the four rotated corners of the key's rectangle in
// pixel space, clockwise from the top-left corner.
func KeyPolygon(k domain.Key) Polygon {
	x := k.X * domain.Unit
	y := k.Y * domain.Unit
	w := k.W * domain.Unit
	h := k.H * domain.Unit
	corners := Polygon{
		{x, y},
		{x + w, y},
		{x + w, y + h},
		{x, y + h},
	}
	if k.R == 0 {
		return corners
	}
	pivot := keyPivot(k)
	for i, p := range corners {
		corners[i] = RotateAbout(p, pivot, k.R)
	}
	return corners
}

// KeyCenter returns the rotated center of the key in pixel space.
func KeyCenter(k domain.Key) Pt {
	cx, cy := k.Center()
	c := Pt{cx * domain.Unit, cy * domain.Unit}
	if k.R == 0 {
		return c
	}
	return RotateAbout(c, keyPivot(k), k.R)
}

// PointInPolygon reports whether (x, y) lies inside the polygon using
// the crossing-number rule. Points exactly on an edge may land on
// either side; hit tests at pixel granularity do not care.
func PointInPolygon(poly Polygon, x, y float64) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		pi, pj := poly[i], poly[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PolygonsIntersect reports whether two convex polygons overlap using
// the separating-axis theorem over both polygons' edge normals. Any
// overlap counts; containment is not required.
func PolygonsIntersect(a, b Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, poly := range []Polygon{a, b} {
		for i := range poly {
			p1 := poly[i]
			p2 := poly[(i+1)%len(poly)]
			// Edge normal as the candidate separating axis.
			ax, ay := p2.Y-p1.Y, p1.X-p2.X
			minA, maxA := project(a, ax, ay)
			minB, maxB := project(b, ax, ay)
			if maxA < minB || maxB < minA {
				return false
			}
		}
	}
	return true
}

func project(poly Polygon, ax, ay float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, p := range poly {
		d := p.X*ax + p.Y*ay
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	return min, max
}

// PolygonBounds returns the axis-aligned bounding box of a polygon.
func PolygonBounds(poly Polygon) BBox {
	b := BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range poly {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// KeysBounds returns the axis-aligned bounding box in pixel space
// enclosing every key's rotated polygon. The zero box is returned for
// an empty collection.
func KeysBounds(keys []domain.Key) BBox {
	if len(keys) == 0 {
		return BBox{}
	}
	b := BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, k := range keys {
		kb := PolygonBounds(KeyPolygon(k))
		b.MinX = math.Min(b.MinX, kb.MinX)
		b.MinY = math.Min(b.MinY, kb.MinY)
		b.MaxX = math.Max(b.MaxX, kb.MaxX)
		b.MaxY = math.Max(b.MaxY, kb.MaxY)
	}
	return b
}

// RotatedSize returns the effective post-rotation width and height of a
// key in layout units: the dimensions of its rotated polygon's bounding
// box. Used by row/column inference as the clustering tolerance base.
func RotatedSize(k domain.Key) (w, h float64) {
	b := PolygonBounds(KeyPolygon(k))
	return b.W() / domain.Unit, b.H() / domain.Unit
}
