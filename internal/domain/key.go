/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for KeyForge: physical key
// placements on a keyboard plate plus the logical row/column grid
// recovered from them. Geometry lives in layout units; rendering maps
// units to pixels via Unit.

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Unit is the number of virtual pixels per layout unit. One layout unit
// is the pitch of a standard 1u keycap.
const Unit = 70.0

// Pivot is the rotation anchor of a key. When Set is false the key
// rotates about its own geometric center. The wire formats (KLE, DTS)
// encode "own center" as rx==ry==0; the adapters translate between that
// sentinel and this tagged form so the core never overloads zero.
type Pivot struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Set bool    `json:"set"`
}

// Key is a single physical key placement.
//
// X, Y is the unrotated top-left corner in layout units; W, H the size
// (>0); R the rotation in degrees about Pivot. Row and Col are the
// logical grid indices (>=0) recovered by inference or supplied by an
// import. Part is the physical section the key belongs to on split
// boards.
type Key struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	R     float64 `json:"r"`
	Pivot Pivot   `json:"pivot,omitempty"`
	Row   int     `json:"row"`
	Col   int     `json:"col"`
	Part  int     `json:"part"`
}

// NewKeyID mints a fresh opaque key id. Ids survive moves and rotations
// but are regenerated on copy-paste and on format import.
func NewKeyID() string { return uuid.NewString() }

// Center returns the unrotated center of the key in layout units.
func (k Key) Center() (float64, float64) { return k.X + k.W/2, k.Y + k.H/2 }

// Round2 rounds v to two decimal places, the precision every float
// field carries after normalization.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Normalize restores the canonical-order invariant in place:
// minimum X and Y across all keys become 0 (set pivots shift by the
// same delta so anchors stay attached), minimum Row and Col become 0,
// every float field is rounded to two decimals, and the slice is sorted
// ascending by (Row, Col). Downstream consumers assume this invariant
// whenever they read the collection. Idempotent.
func Normalize(keys []Key) {
	if len(keys) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	minRow, minCol := keys[0].Row, keys[0].Col
	for _, k := range keys {
		minX = math.Min(minX, k.X)
		minY = math.Min(minY, k.Y)
		if k.Row < minRow {
			minRow = k.Row
		}
		if k.Col < minCol {
			minCol = k.Col
		}
	}
	for i := range keys {
		k := &keys[i]
		k.X = Round2(k.X - minX)
		k.Y = Round2(k.Y - minY)
		k.W = Round2(k.W)
		k.H = Round2(k.H)
		k.R = Round2(k.R)
		if k.Pivot.Set {
			k.Pivot.X = Round2(k.Pivot.X - minX)
			k.Pivot.Y = Round2(k.Pivot.Y - minY)
		}
		k.Row -= minRow
		k.Col -= minCol
	}
	SortByGrid(keys)
}

// SortByGrid sorts keys ascending by (Row, Col).
func SortByGrid(keys []Key) {
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Col < keys[j].Col
	})
}

// Clone returns a deep copy of the key slice.
func Clone(keys []Key) []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}
