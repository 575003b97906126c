/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import (
	"errors"
	"testing"

	"keyforge/internal/domain"
)

const dtsSample = `
/ {
    physical_layout0: physical_layout_0 {
        compatible = "zmk,physical-layout";
        display-name = "Default Layout";
        keys = <
            &key_physical_attrs 100 100   0   0     0    0    0
            &key_physical_attrs 100 100 100   0     0    0    0
            &key_physical_attrs 150 100   0 100 (-1500)  75  150
        >;
    };
};
`

func TestParseDTS(t *testing.T) {
	keys, err := ParseDTS(dtsSample)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	for i, k := range keys {
		if k.ID == "" {
			t.Fatalf("key %d has no id", i)
		}
		if k.Part != 0 {
			t.Fatalf("imported keys belong to part 0: %+v", k)
		}
	}
	// The two unit keys share a row, the rotated wide key sits below.
	if keys[0].Row != 0 || keys[1].Row != 0 || keys[2].Row != 1 {
		t.Fatalf("unexpected rows: %d %d %d", keys[0].Row, keys[1].Row, keys[2].Row)
	}
	if keys[0].Col != 0 || keys[1].Col != 1 || keys[2].Col != 0 {
		t.Fatalf("unexpected cols: %d %d %d", keys[0].Col, keys[1].Col, keys[2].Col)
	}
	wide := keys[2]
	if wide.W != 1.5 || wide.H != 1 || wide.R != -15 {
		t.Fatalf("fixed-point decode wrong: %+v", wide)
	}
	if wide.Pivot != (domain.Pivot{X: 0.75, Y: 1.5, Set: true}) {
		t.Fatalf("pivot decode wrong: %+v", wide.Pivot)
	}
}

func TestParseDTSWholeTextFallback(t *testing.T) {
	text := `
        // no physical-layout node at all
        &key_physical_attrs 100 100 0 0 0 0 0
        &key_physical_attrs 100 100 100 0 0 0 0
    `
	keys, err := ParseDTS(text)
	if err != nil {
		t.Fatalf("fallback parse: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

func TestParseDTSEmptyCompatibleBlockFallsBack(t *testing.T) {
	text := `
    / {
        physical_layout0: physical_layout_0 {
            compatible = "zmk,physical-layout";
        };
    };
    &key_physical_attrs 100 100 0 0 0 0 0
    `
	keys, err := ParseDTS(text)
	if err != nil {
		t.Fatalf("fallback parse: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
}

func TestParseDTSUnrecognized(t *testing.T) {
	keys, err := ParseDTS("#include <behaviors.dtsi>")
	if keys != nil {
		t.Fatalf("failure must return nil keys, got %v", keys)
	}
	if !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("expected ErrUnrecognized, got %v", err)
	}
}

func TestParseDTSScopesToDeclaringNode(t *testing.T) {
	// The declaring node owns a 1u key; a later sibling node carries a
	// 2u tuple that must not leak into the result.
	text := `
    / {
        physical_layout0: physical_layout_0 {
            compatible = "zmk,physical-layout";
            display-name = "Default Layout";
            keys = <
                &key_physical_attrs 100 100 0 0 0 0 0
            >;
        };

        alt_layout0: alt_layout_0 {
            compatible = "vendor,unrelated-layout";
            keys = <
                &key_physical_attrs 200 100 0 0 0 0 0
            >;
        };
    };
    `
	keys, err := ParseDTS(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected only the declaring node's key, got %d keys", len(keys))
	}
	if keys[0].W != 1 {
		t.Fatalf("got the sibling node's key: width %v, want 1", keys[0].W)
	}
}

func TestParseDTSBlockWithLeadingChildNode(t *testing.T) {
	// A child block precedes the compatible property; the backward
	// scan to the node-open brace must skip over it.
	text := `
    / {
        physical_layout0: physical_layout_0 {
            transform {
                rows = <2>;
            };
            compatible = "zmk,physical-layout";
            keys = <
                &key_physical_attrs 100 100 0 0 0 0 0
                &key_physical_attrs 100 100 100 0 0 0 0
            >;
        };

        trailing0: trailing_0 {
            keys = <
                &key_physical_attrs 300 100 0 0 0 0 0
            >;
        };
    };
    `
	keys, err := ParseDTS(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys from the declaring node, got %d", len(keys))
	}
	for i, k := range keys {
		if k.W != 1 {
			t.Fatalf("key %d: width %v, want 1", i, k.W)
		}
	}
}
