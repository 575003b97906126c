/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package format converts between the internal key collection and the
// external layout encodings: ZMK device-tree physical layouts, the
// generic layout JSON shape, and KLE/VIA JSON. Adapters never panic; a
// parse failure returns nil keys together with an error, and
// errors.Is(err, ErrUnrecognized) tells "not this format at all" apart
// from "recognized but invalid".
package format

import (
	"errors"

	"keyforge/internal/domain"
	"keyforge/internal/infer"
)

// ErrUnrecognized reports that the input does not look like the format
// the adapter handles. Recognized-but-invalid input returns a plain
// descriptive error instead.
var ErrUnrecognized = errors.New("input not recognized")

// finish stamps imported keys with fresh identities and part 0, runs
// grid inference when asked and restores the canonical ordering.
func finish(keys []domain.Key, runInference bool) []domain.Key {
	for i := range keys {
		keys[i].ID = domain.NewKeyID()
		keys[i].Part = 0
	}
	if runInference {
		infer.PhysicalToLogical(keys)
	}
	domain.Normalize(keys)
	return keys
}

// pivotFromWire maps the legacy rx/ry encoding onto the tagged pivot:
// the zero pair is the "rotate about own center" sentinel in every wire
// format.
func pivotFromWire(rx, ry float64) domain.Pivot {
	if rx == 0 && ry == 0 {
		return domain.Pivot{}
	}
	return domain.Pivot{X: rx, Y: ry, Set: true}
}

// pivotToWire is the inverse mapping; an unset pivot serializes as the
// zero pair.
func pivotToWire(p domain.Pivot) (rx, ry float64) {
	if !p.Set {
		return 0, 0
	}
	return p.X, p.Y
}

// Parse tries every adapter in a fixed order and returns the keys from
// the first one that recognizes the input, together with the format
// name ("dts", "json" or "kle"). A recognized-but-invalid payload stops
// the cascade and surfaces that adapter's error.
func Parse(text string) ([]domain.Key, string, error) {
	if keys, err := ParseDTS(text); err == nil {
		return keys, "dts", nil
	} else if !errors.Is(err, ErrUnrecognized) {
		return nil, "dts", err
	}
	// KLE runs before layout JSON so the VIA {layouts:{keymap:…}}
	// wrapper is not mistaken for a malformed layouts document.
	if keys, err := ParseKLE(text); err == nil {
		return keys, "kle", nil
	} else if !errors.Is(err, ErrUnrecognized) {
		return nil, "kle", err
	}
	if keys, err := ParseLayoutJSON(text); err == nil {
		return keys, "json", nil
	} else if !errors.Is(err, ErrUnrecognized) {
		return nil, "json", err
	}
	return nil, "", ErrUnrecognized
}

// strictGridOrder reports whether (row, col) strictly ascends across
// the slice in input order.
func strictGridOrder(keys []domain.Key) bool {
	for i := 1; i < len(keys); i++ {
		a, b := keys[i-1], keys[i]
		if b.Row < a.Row || (b.Row == a.Row && b.Col <= a.Col) {
			return false
		}
	}
	return true
}
