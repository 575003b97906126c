/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package infer recovers a logical row/column grid from physical key
// geometry. Keys authored with nothing but coordinates get Row and Col
// assigned deterministically by clustering their rotated centers.
package infer

import (
	"sort"

	"keyforge/internal/domain"
	"keyforge/internal/geom"
)

// rowTolerance is the fraction of the smaller effective key height two
// keys may differ in center-Y and still share a row.
const rowTolerance = 0.4

// PhysicalToLogical assigns Row and Col to every key in place and
// re-sorts the slice by (Row, Col).
//
// Rows are connected components of the relation
// |cy_i - cy_j| <= rowTolerance * min(eh_i, eh_j) over rotated centers
// and effective (post-rotation) heights. The relation is chained
// through intermediates on purpose: staggered rows with gradually
// drifting baselines still cluster, at the cost of occasionally fusing
// rows that drift too far in aggregate. Rows are numbered by ascending
// mean center-Y; columns are numbered 0..m-1 per row by ascending
// center-X and are not aligned across rows.
func PhysicalToLogical(keys []domain.Key) {
	assignGrid(keys)
}

// PhysicalToLogicalLax is the permissive re-run used when a first
// inference produced an implausible grid (for example more rows than
// twice the physical height of the layout). It performs the same
// clustering as PhysicalToLogical; the laxness lies in re-running over
// key geometry while discarding whatever row/col data the source
// claimed. See DESIGN.md.
func PhysicalToLogicalLax(keys []domain.Key) {
	assignGrid(keys)
}

func assignGrid(keys []domain.Key) {
	n := len(keys)
	if n == 0 {
		return
	}

	centers := make([]geom.Pt, n)
	heights := make([]float64, n)
	for i, k := range keys {
		c := geom.KeyCenter(k)
		centers[i] = geom.Pt{X: c.X / domain.Unit, Y: c.Y / domain.Unit}
		_, eh := geom.RotatedSize(k)
		heights[i] = eh
	}

	dsu := newUnionFind(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			tol := rowTolerance * min(heights[i], heights[j])
			dy := centers[i].Y - centers[j].Y
			if dy < 0 {
				dy = -dy
			}
			if dy <= tol {
				dsu.union(i, j)
			}
		}
	}

	// Group indices by component.
	groups := make(map[int][]int)
	for i := 0; i < n; i++ {
		root := dsu.find(i)
		groups[root] = append(groups[root], i)
	}

	// Order rows by mean center-Y of their members. Groups come out of
	// a map, so ties on the mean break on the smallest member index to
	// keep row numbering deterministic.
	type row struct {
		members []int
		meanY   float64
	}
	rows := make([]row, 0, len(groups))
	for _, members := range groups {
		var sum float64
		for _, i := range members {
			sum += centers[i].Y
		}
		rows = append(rows, row{members: members, meanY: sum / float64(len(members))})
	}
	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].meanY != rows[b].meanY {
			return rows[a].meanY < rows[b].meanY
		}
		return rows[a].members[0] < rows[b].members[0]
	})

	for r, rw := range rows {
		sort.Slice(rw.members, func(a, b int) bool {
			return centers[rw.members[a]].X < centers[rw.members[b]].X
		})
		for c, i := range rw.members {
			keys[i].Row = r
			keys[i].Col = c
		}
	}

	domain.SortByGrid(keys)
}

// unionFind is a plain disjoint-set structure with path halving.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
