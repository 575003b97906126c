/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package infer

import (
	"testing"

	"keyforge/internal/domain"
)

func TestExactGrid(t *testing.T) {
	keys := []domain.Key{
		{ID: "d", X: 1, Y: 1, W: 1, H: 1},
		{ID: "a", X: 0, Y: 0, W: 1, H: 1},
		{ID: "b", X: 1, Y: 0, W: 1, H: 1},
		{ID: "c", X: 0, Y: 1, W: 1, H: 1},
	}
	PhysicalToLogical(keys)
	want := []struct {
		id       string
		row, col int
	}{
		{"a", 0, 0}, {"b", 0, 1}, {"c", 1, 0}, {"d", 1, 1},
	}
	for i, w := range want {
		if keys[i].ID != w.id || keys[i].Row != w.row || keys[i].Col != w.col {
			t.Fatalf("key %d: got %s (%d,%d), want %s (%d,%d)",
				i, keys[i].ID, keys[i].Row, keys[i].Col, w.id, w.row, w.col)
		}
	}
}

func TestChainedClustering(t *testing.T) {
	// Three keys at y = 0, 0.39, 0.78, height 1. Adjacent pairs are
	// within the 0.4 tolerance, the extremes are not; transitive
	// chaining still puts all three in one row.
	keys := []domain.Key{
		{ID: "a", X: 0, Y: 0, W: 1, H: 1},
		{ID: "b", X: 1, Y: 0.39, W: 1, H: 1},
		{ID: "c", X: 2, Y: 0.78, W: 1, H: 1},
	}
	PhysicalToLogical(keys)
	for _, k := range keys {
		if k.Row != 0 {
			t.Fatalf("chained keys must share row 0: %+v", k)
		}
	}
	if keys[0].Col != 0 || keys[1].Col != 1 || keys[2].Col != 2 {
		t.Fatalf("columns must follow center-x order: %+v", keys)
	}
}

func TestSeparateRows(t *testing.T) {
	keys := []domain.Key{
		{ID: "a", X: 0, Y: 0, W: 1, H: 1},
		{ID: "b", X: 0, Y: 1, W: 1, H: 1},
	}
	PhysicalToLogical(keys)
	if keys[0].Row != 0 || keys[1].Row != 1 {
		t.Fatalf("keys a full unit apart must split rows: %+v", keys)
	}
	if keys[0].Col != 0 || keys[1].Col != 0 {
		t.Fatalf("column numbering is local per row: %+v", keys)
	}
}

func TestColumnsNotGloballyAligned(t *testing.T) {
	keys := []domain.Key{
		{ID: "a", X: 0, Y: 0, W: 1, H: 1},
		{ID: "b", X: 1, Y: 0, W: 1, H: 1},
		{ID: "c", X: 5, Y: 2, W: 1, H: 1},
	}
	PhysicalToLogical(keys)
	if keys[2].ID != "c" || keys[2].Col != 0 {
		t.Fatalf("lone key in its row gets col 0 regardless of x: %+v", keys[2])
	}
}

func TestRotationAffectsEffectiveHeight(t *testing.T) {
	// A tall key rotated flat (90 degrees) has effective height equal
	// to its width, tightening the tolerance window.
	keys := []domain.Key{
		{ID: "a", X: 0, Y: 0, W: 1, H: 1},
		{ID: "b", X: 1, Y: 0.45, W: 0.5, H: 2, R: 90},
	}
	PhysicalToLogical(keys)
	// b's effective height is 0.5 so tolerance = 0.4*0.5 = 0.2;
	// centers differ by |0.5 - 1.45| = 0.95, so rows must split.
	if keys[0].Row == keys[1].Row {
		t.Fatalf("rotation-reduced height should split rows: %+v", keys)
	}
}

func TestEmptyAndSingle(t *testing.T) {
	PhysicalToLogical(nil)
	one := []domain.Key{{ID: "a", X: 7, Y: 3, W: 1, H: 1, Row: 9, Col: 9}}
	PhysicalToLogical(one)
	if one[0].Row != 0 || one[0].Col != 0 {
		t.Fatalf("single key maps to (0,0): %+v", one[0])
	}
}

func TestEqualMeanRowsOrderDeterministically(t *testing.T) {
	// Two tall keys at center-Y 0 and 1 chain into one row (tolerance
	// 0.4*3 = 1.2) with mean 0.5; the short key at center-Y 0.5 stays
	// separate (tolerance 0.4*0.5 = 0.2) with the same mean. The tie
	// must break the same way on every run despite map iteration.
	base := []domain.Key{
		{ID: "a", X: 0, Y: -1.5, W: 1, H: 3},
		{ID: "b", X: 1.5, Y: -0.5, W: 1, H: 3},
		{ID: "c", X: 3, Y: 0.25, W: 1, H: 0.5},
	}
	for trial := 0; trial < 50; trial++ {
		keys := append([]domain.Key(nil), base...)
		PhysicalToLogical(keys)
		rows := make(map[string]int, len(keys))
		for _, k := range keys {
			rows[k.ID] = k.Row
		}
		if rows["a"] != 0 || rows["b"] != 0 || rows["c"] != 1 {
			t.Fatalf("trial %d: unstable row order: a=%d b=%d c=%d",
				trial, rows["a"], rows["b"], rows["c"])
		}
	}
}
