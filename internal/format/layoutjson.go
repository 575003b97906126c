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
	"sort"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"keyforge/internal/domain"
)

// layoutSchema validates the generic layout JSON shape before decoding.
// x and y are mandatory per entry; everything else has a default.
const layoutSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["layouts"],
  "properties": {
    "layouts": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["layout"],
        "properties": {
          "layout": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["x", "y"],
              "properties": {
                "x": { "type": "number" },
                "y": { "type": "number" },
                "w": { "type": "number" },
                "h": { "type": "number" },
                "r": { "type": "number" },
                "rx": { "type": "number" },
                "ry": { "type": "number" },
                "row": { "type": "integer", "minimum": 0 },
                "col": { "type": "integer", "minimum": 0 },
                "matrix": {
                  "type": "array",
                  "items": { "type": "integer", "minimum": 0 },
                  "minItems": 2,
                  "maxItems": 2
                }
              }
            }
          }
        }
      }
    }
  }
}`

type layoutDoc struct {
	Layouts map[string]struct {
		Layout []layoutEntry `json:"layout"`
	} `json:"layouts"`
}

type layoutEntry struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	W      *float64 `json:"w"`
	H      *float64 `json:"h"`
	R      float64  `json:"r"`
	RX     float64  `json:"rx"`
	RY     float64  `json:"ry"`
	Row    *int     `json:"row"`
	Col    *int     `json:"col"`
	Matrix []int    `json:"matrix"`
}

// ParseLayoutJSON decodes the generic {layouts:{name:{layout:[…]}}}
// shape. Only the first layout (by name, sorted, for determinism across
// map iteration) is used. Keys without a complete row/col assignment
// run through grid inference; a present but not strictly ascending
// (row, col) sequence is treated as unreliable and re-inferred.
func ParseLayoutJSON(text string) ([]domain.Key, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, fmt.Errorf("layout json: %w", ErrUnrecognized)
	}
	if _, ok := probe["layouts"]; !ok {
		return nil, fmt.Errorf("layout json: missing layouts object: %w", ErrUnrecognized)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(layoutSchema),
		gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("layout json: validate: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("layout json: %s", result.Errors()[0])
	}

	var doc layoutDoc
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("layout json: decode: %w", err)
	}
	if len(doc.Layouts) == 0 {
		return nil, fmt.Errorf("layout json: no layouts: %w", ErrUnrecognized)
	}
	names := make([]string, 0, len(doc.Layouts))
	for name := range doc.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := doc.Layouts[names[0]].Layout
	if len(entries) == 0 {
		return nil, fmt.Errorf("layout json: layout %q has no keys", names[0])
	}

	keys := make([]domain.Key, 0, len(entries))
	gridComplete := true
	for i, e := range entries {
		if e.X == nil || e.Y == nil {
			return nil, fmt.Errorf("layout json: entry %d: x and y are required", i)
		}
		k := domain.Key{
			X: *e.X, Y: *e.Y,
			W: 1, H: 1,
			R:     e.R,
			Pivot: pivotFromWire(e.RX, e.RY),
		}
		if e.W != nil {
			k.W = *e.W
		}
		if e.H != nil {
			k.H = *e.H
		}
		switch {
		case e.Row != nil && e.Col != nil:
			k.Row, k.Col = *e.Row, *e.Col
		case len(e.Matrix) == 2:
			k.Row, k.Col = e.Matrix[0], e.Matrix[1]
		default:
			gridComplete = false
		}
		keys = append(keys, k)
	}

	needInference := !gridComplete || !strictGridOrder(keys)
	return finish(keys, needInference), nil
}

// ToLayoutJSON serializes keys into the generic layout JSON shape under
// a single "LAYOUT" entry. The output parses back through
// ParseLayoutJSON without inference.
func ToLayoutJSON(keys []domain.Key) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("layout json: no keys to serialize")
	}
	out := domain.Clone(keys)
	domain.Normalize(out)

	entries := make([]map[string]any, 0, len(out))
	for _, k := range out {
		e := map[string]any{
			"x":   k.X,
			"y":   k.Y,
			"row": k.Row,
			"col": k.Col,
		}
		if k.W != 1 {
			e["w"] = k.W
		}
		if k.H != 1 {
			e["h"] = k.H
		}
		if k.R != 0 {
			e["r"] = k.R
		}
		if rx, ry := pivotToWire(k.Pivot); rx != 0 || ry != 0 {
			e["rx"] = rx
			e["ry"] = ry
		}
		entries = append(entries, e)
	}
	doc := map[string]any{
		"layouts": map[string]any{
			"LAYOUT": map[string]any{"layout": entries},
		},
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("layout json: encode: %w", err)
	}
	return string(b), nil
}
