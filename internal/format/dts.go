/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"keyforge/internal/domain"
)

const dtsCompatible = "zmk,physical-layout"

// key_physical_attrs carries (w h x y r rx ry) as x100 fixed-point
// integers; negatives appear parenthesized in device-tree sources.
var dtsTupleRe = regexp.MustCompile(
	`&key_physical_attrs` + strings.Repeat(`\s+\(?\s*(-?\d+)\s*\)?`, 7))

// ParseDTS extracts key geometry from a ZMK device-tree snippet. It
// scans the node declaring the physical-layout compatible first and
// falls back to the whole text when that block yields no tuples.
func ParseDTS(text string) ([]domain.Key, error) {
	keys := dtsScan(dtsCompatibleBlock(text))
	if len(keys) == 0 {
		keys = dtsScan(text)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no %s key tuples found: %w", dtsCompatible, ErrUnrecognized)
	}
	return finish(keys, true), nil
}

// dtsCompatibleBlock returns the brace-delimited node that declares the
// physical-layout compatible, or "" when absent. The compatible string
// is a property inside the node, so the node's opening brace precedes
// it; walk backward over any balanced child blocks to find it.
func dtsCompatibleBlock(text string) string {
	at := strings.Index(text, dtsCompatible)
	if at < 0 {
		return ""
	}
	start := -1
	depth := 0
back:
	for i := at - 1; i >= 0; i-- {
		switch text[i] {
		case '}':
			depth++
		case '{':
			if depth == 0 {
				start = i
				break back
			}
			depth--
		}
	}
	if start < 0 {
		return ""
	}
	depth = 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

func dtsScan(text string) []domain.Key {
	if text == "" {
		return nil
	}
	var keys []domain.Key
	for _, m := range dtsTupleRe.FindAllStringSubmatch(text, -1) {
		var v [7]float64
		for i := 0; i < 7; i++ {
			n, err := strconv.Atoi(m[i+1])
			if err != nil {
				return nil
			}
			v[i] = float64(n) / 100
		}
		keys = append(keys, domain.Key{
			W: v[0], H: v[1],
			X: v[2], Y: v[3],
			R:     v[4],
			Pivot: pivotFromWire(v[5], v[6]),
		})
	}
	return keys
}
