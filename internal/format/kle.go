/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"keyforge/internal/domain"
	"keyforge/internal/geom"
	"keyforge/internal/infer"
)

// kleLabelRe recovers a grid position from a key label: "r,c", "r/c"
// or "r x c".
var kleLabelRe = regexp.MustCompile(`^\s*(\d+)\s*(?:[,/]|x)\s*(\d+)\s*$`)

// kleState is the running cursor of the KLE wire encoding. Placement
// properties are relative: x/y advance the cursor, w/h apply to the
// next key only, r/rx/ry persist until changed, and assigning rx or ry
// also moves the cursor to the new rotation origin.
type kleState struct {
	x, y   float64
	w, h   float64
	r      float64
	rx, ry float64
}

// ParseKLE decodes a KLE layout: either the raw top-level array or the
// VIA/VIAL {layouts:{keymap:[…]}} wrapper. Grid positions are recovered
// from key labels where present; otherwise they are inferred from the
// geometry, with a lax re-run when the inferred row count exceeds twice
// the physical height (a sign the clustering tore rows apart).
func ParseKLE(text string) ([]domain.Key, error) {
	rows, err := kleRows(text)
	if err != nil {
		return nil, err
	}

	st := kleState{w: 1, h: 1}
	var keys []domain.Key
	gridComplete := true
	sawRow := false
	for _, raw := range rows {
		var row []any
		if err := json.Unmarshal(raw, &row); err != nil {
			// Non-array top-level elements are KLE metadata.
			var meta map[string]any
			if json.Unmarshal(raw, &meta) == nil {
				continue
			}
			return nil, fmt.Errorf("kle: malformed row: %w", ErrUnrecognized)
		}
		if sawRow {
			st.y++
			st.x = st.rx
		}
		sawRow = true
		for _, item := range row {
			switch v := item.(type) {
			case map[string]any:
				kleApplyProps(&st, v)
			case string:
				k := domain.Key{
					X: st.x, Y: st.y,
					W: st.w, H: st.h,
					R:     st.r,
					Pivot: pivotFromWire(st.rx, st.ry),
				}
				if gr, gc, ok := kleLabelGrid(v); ok {
					k.Row, k.Col = gr, gc
				} else {
					gridComplete = false
				}
				keys = append(keys, k)
				st.x += st.w
				st.w, st.h = 1, 1
			default:
				return nil, fmt.Errorf("kle: unexpected element %T", item)
			}
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("kle: no keys: %w", ErrUnrecognized)
	}

	if !gridComplete {
		infer.PhysicalToLogical(keys)
		if kleRowsImplausible(keys) {
			infer.PhysicalToLogicalLax(keys)
		}
	}
	return finish(keys, false), nil
}

// kleRows extracts the top-level row list from raw KLE or the VIA
// wrapper.
func kleRows(text string) ([]json.RawMessage, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(text), &rows); err == nil {
		return rows, nil
	}
	var wrap struct {
		Layouts struct {
			Keymap []json.RawMessage `json:"keymap"`
		} `json:"layouts"`
	}
	if err := json.Unmarshal([]byte(text), &wrap); err == nil && len(wrap.Layouts.Keymap) > 0 {
		return wrap.Layouts.Keymap, nil
	}
	return nil, fmt.Errorf("kle: neither an array nor a keymap wrapper: %w", ErrUnrecognized)
}

// kleApplyProps folds a property object into the cursor. Rotation
// fields are applied before placement so an rx/ry in the same object
// rebases the cursor first, matching the reference serializer.
func kleApplyProps(st *kleState, props map[string]any) {
	if v, ok := kleNum(props, "r"); ok {
		st.r = v
	}
	if v, ok := kleNum(props, "rx"); ok {
		st.rx = v
		st.x = v
	}
	if v, ok := kleNum(props, "ry"); ok {
		st.ry = v
		st.y = v
	}
	if v, ok := kleNum(props, "x"); ok {
		st.x += v
	}
	if v, ok := kleNum(props, "y"); ok {
		st.y += v
	}
	if v, ok := kleNum(props, "w"); ok {
		st.w = v
	}
	if v, ok := kleNum(props, "h"); ok {
		st.h = v
	}
}

func kleNum(props map[string]any, name string) (float64, bool) {
	v, ok := props[name].(float64)
	return v, ok
}

// kleLabelGrid scans the label's lines for a grid position.
func kleLabelGrid(label string) (row, col int, ok bool) {
	for _, line := range strings.Split(label, "\n") {
		m := kleLabelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		r, _ := strconv.Atoi(m[1])
		c, _ := strconv.Atoi(m[2])
		return r, c, true
	}
	return 0, 0, false
}

// kleRowsImplausible flags an inference result whose row count exceeds
// twice the layout's physical height in units.
func kleRowsImplausible(keys []domain.Key) bool {
	maxRow := 0
	for _, k := range keys {
		if k.Row > maxRow {
			maxRow = k.Row
		}
	}
	height := geom.KeysBounds(keys).H() / domain.Unit
	return float64(maxRow+1) > 2*height
}

// ToKLE serializes the collection into a KLE-compatible JSON string:
// one KLE row per logical row, each key carrying a synthetic "row,col"
// label. Output parses back via ParseKLE with identical geometry up to
// rounding.
func ToKLE(keys []domain.Key) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("kle: nothing to serialize")
	}
	ordered := domain.Clone(keys)
	domain.Normalize(ordered)

	st := kleState{w: 1, h: 1}
	var out []any
	var row []any
	curRow := ordered[0].Row
	flush := func() {
		if len(row) > 0 {
			out = append(out, row)
			row = nil
		}
	}
	for _, k := range ordered {
		if k.Row != curRow {
			flush()
			curRow = k.Row
			st.y++
			st.x = st.rx
		}
		props := map[string]float64{}
		rx, ry := pivotToWire(k.Pivot)
		if k.R != st.r {
			props["r"] = k.R
			st.r = k.R
		}
		if rx != st.rx {
			props["rx"] = rx
			st.rx = rx
			st.x = rx
		}
		if ry != st.ry {
			props["ry"] = ry
			st.ry = ry
			st.y = ry
		}
		if dx := k.X - st.x; dx != 0 {
			props["x"] = dx
			st.x += dx
		}
		if dy := k.Y - st.y; dy != 0 {
			props["y"] = dy
			st.y += dy
		}
		if k.W != 1 {
			props["w"] = k.W
		}
		if k.H != 1 {
			props["h"] = k.H
		}
		if len(props) > 0 {
			row = append(row, props)
		}
		row = append(row, fmt.Sprintf("%d,%d", k.Row, k.Col))
		st.x += k.W
	}
	flush()

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("kle: encode: %w", err)
	}
	return string(data), nil
}
