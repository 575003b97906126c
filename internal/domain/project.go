/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Part describes one physical section of a keyboard, for example the left
// half of a split board. Part indices are referenced by Key.Part.
type Part struct {
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
}

// Project is the on-disk root object of a keyboard layout project. It is
// serialized verbatim into the project manifest.
type Project struct {
	Name  string `json:"name"`
	Parts []Part `json:"parts,omitempty"`
	Keys  []Key  `json:"keys"`
}

// PartKeys returns the keys belonging to the given part, in manifest order.
func (p Project) PartKeys(part int) []Key {
	out := make([]Key, 0, len(p.Keys))
	for _, k := range p.Keys {
		if k.Part == part {
			out = append(out, k)
		}
	}
	return out
}

// CloneProject returns a deep copy of p.
func CloneProject(p Project) Project {
	cp := p
	cp.Parts = append([]Part(nil), p.Parts...)
	cp.Keys = Clone(p.Keys)
	return cp
}
