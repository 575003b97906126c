/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot represents a reversible state blob for one physical part of
// the keyboard. Blob content is opaque to the manager (the editor
// stores the serialized key collection); size is estimated as
// len(Blob). TS is when the snapshot was captured.
type Snapshot struct {
	Part int
	Blob []byte
	TS   time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; older entries are pruned when exceeded.
	MaxBytes int
	// MaxPerPart limits number of snapshots per part kept in memory (0 means unlimited).
	MaxPerPart int
	// MinInterval coalesces snapshots captured within the interval for the same part,
	// replacing the previous one instead of pushing a new entry. Drag
	// gestures commit on every release; the window folds a rapid series
	// of nudges into one undo step.
	MinInterval time.Duration
}

// Manager provides an in-memory undo/redo stack per part with
// performance safeguards. It is safe for concurrent use.
type Manager struct {
	cfg Config
	mu  sync.Mutex
	// per-part stacks
	undo map[int][]Snapshot
	redo map[int][]Snapshot
	// accounting
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	// Set conservative defaults if not provided
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[int][]Snapshot), redo: make(map[int][]Snapshot)}
}

// PushSnapshot records a snapshot for a part. If within MinInterval from the last
// snapshot on the same part, it replaces the last one. Clears redo stack for that part.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.Part]
	if n := len(stack); n > 0 {
		last := stack[n-1]
		if s.TS.Sub(last.TS) < m.cfg.MinInterval {
			// Coalesce: adjust accounting and replace
			m.totalBytes -= len(last.Blob)
			m.totalBytes += len(s.Blob)
			stack[n-1] = s
			m.undo[s.Part] = stack
			m.redo[s.Part] = nil
			m.enforceCapsLocked(s.Part)
			return
		}
	}
	// Push new
	stack = append(stack, s)
	m.undo[s.Part] = stack
	m.totalBytes += len(s.Blob)
	// Any new change invalidates redo for the part
	m.redo[s.Part] = nil
	m.enforceCapsLocked(s.Part)
}

// Undo pops from the part's undo stack and pushes to the redo stack, returning the snapshot.
func (m *Manager) Undo(part int) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[part]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[part] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[part] = append(m.redo[part], s)
	return s, true
}

// Redo pops from redo and pushes back to undo.
func (m *Manager) Redo(part int) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[part]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[part] = r[:len(r)-1]
	m.undo[part] = append(m.undo[part], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(part)
	return s, true
}

// ClearPart clears undo/redo stacks for a part to free memory.
func (m *Manager) ClearPart(part int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[part] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, part)
	delete(m.redo, part)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, parts int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parts = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, parts, totalSnapshots
}

func (m *Manager) enforceCapsLocked(part int) {
	// Per-part depth cap
	if m.cfg.MaxPerPart > 0 {
		stack := m.undo[part]
		if len(stack) > m.cfg.MaxPerPart {
			// drop the oldest extras
			toDrop := len(stack) - m.cfg.MaxPerPart
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[part] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global memory cap: prune oldest across all parts
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestPart := 0
		oldestIdx := -1
		var oldestTS time.Time
		for part, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldestIdx == -1 || stack[0].TS.Before(oldestTS) {
				oldestPart = part
				oldestIdx = 0
				oldestTS = stack[0].TS
			}
		}
		if oldestIdx == -1 {
			break
		}
		stack := m.undo[oldestPart]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestPart] = stack[1:]
		if len(m.undo[oldestPart]) == 0 {
			delete(m.undo, oldestPart)
		}
	}
}
