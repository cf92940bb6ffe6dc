/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"
)

// Snapshot is an opaque serialized state of one design, captured before a change.
type Snapshot struct {
	DesignID string
	Blob     []byte
	TS       time.Time

	sealed bool // never coalesced into, set on entries restored by Redo
}

// Config controls history retention.
type Config struct {
	MaxBytes     int           // global byte cap across all designs (0 = unlimited)
	MaxPerDesign int           // per-design undo depth (0 = unlimited)
	MinInterval  time.Duration // pushes closer together than this coalesce into one step
}

// DefaultConfig is what the editor uses when nothing else is configured.
func DefaultConfig() Config {
	return Config{MaxBytes: 8 << 20, MaxPerDesign: 100, MinInterval: 300 * time.Millisecond}
}

// Manager keeps per-design undo and redo stacks with coalescing and memory caps.
type Manager struct {
	mu         sync.Mutex
	cfg        Config
	undo       map[string][]Snapshot
	redo       map[string][]Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, undo: map[string][]Snapshot{}, redo: map[string][]Snapshot{}}
}

// PushSnapshot records the state a design had before an edit. The redo stack
// is discarded. A push arriving within MinInterval of the previous one only
// refreshes its timestamp so a burst of edits undoes as a single step.
func (m *Manager) PushSnapshot(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.TS.IsZero() {
		s.TS = time.Now()
	}
	m.dropRedoLocked(s.DesignID)
	stack := m.undo[s.DesignID]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		last := &stack[n-1]
		if !last.sealed && s.TS.Sub(last.TS) < m.cfg.MinInterval {
			last.TS = s.TS
			return
		}
	}
	m.undo[s.DesignID] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked()
}

// Undo swaps current for the most recent recorded state of the design.
// current goes onto the redo stack. ok is false when there is nothing to undo.
func (m *Manager) Undo(designID string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.popLocked(m.undo, designID)
	if !ok {
		return Snapshot{}, false
	}
	m.redo[designID] = append(m.redo[designID], Snapshot{DesignID: designID, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	m.enforceCapsLocked()
	return prev, true
}

// Redo is the inverse of Undo.
func (m *Manager) Redo(designID string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, ok := m.popLocked(m.redo, designID)
	if !ok {
		return Snapshot{}, false
	}
	m.undo[designID] = append(m.undo[designID], Snapshot{DesignID: designID, Blob: current, TS: time.Now(), sealed: true})
	m.totalBytes += len(current)
	m.enforceCapsLocked()
	return next, true
}

func (m *Manager) CanUndo(designID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[designID]) > 0
}

func (m *Manager) CanRedo(designID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[designID]) > 0
}

// ClearDesign drops all history for one design, e.g. after it is closed or reloaded.
func (m *Manager) ClearDesign(designID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[designID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, designID)
	m.dropRedoLocked(designID)
}

// Stats returns total bytes, number of designs with history and total snapshot count.
func (m *Manager) Stats() (bytes int, designs int, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	for id, st := range m.undo {
		if len(st) > 0 {
			seen[id] = true
		}
		total += len(st)
	}
	for id, st := range m.redo {
		if len(st) > 0 {
			seen[id] = true
		}
		total += len(st)
	}
	return m.totalBytes, len(seen), total
}

func (m *Manager) popLocked(stacks map[string][]Snapshot, id string) (Snapshot, bool) {
	st := stacks[id]
	if len(st) == 0 {
		return Snapshot{}, false
	}
	s := st[len(st)-1]
	if len(st) == 1 {
		delete(stacks, id)
	} else {
		stacks[id] = st[:len(st)-1]
	}
	m.totalBytes -= len(s.Blob)
	return s, true
}

func (m *Manager) dropRedoLocked(id string) {
	for _, s := range m.redo[id] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, id)
}

func (m *Manager) enforceCapsLocked() {
	if m.cfg.MaxPerDesign > 0 {
		for id, st := range m.undo {
			if extra := len(st) - m.cfg.MaxPerDesign; extra > 0 {
				for _, s := range st[:extra] {
					m.totalBytes -= len(s.Blob)
				}
				m.undo[id] = append([]Snapshot(nil), st[extra:]...)
			}
		}
	}
	if m.cfg.MaxBytes <= 0 {
		return
	}
	// Prune the oldest undo entry across designs until under the cap.
	// Redo entries are never pruned so an undone step can always be redone.
	for m.totalBytes > m.cfg.MaxBytes {
		oldestID := ""
		var oldest time.Time
		found := false
		for id, st := range m.undo {
			if len(st) == 0 {
				continue
			}
			if !found || st[0].TS.Before(oldest) {
				oldestID, oldest, found = id, st[0].TS, true
			}
		}
		if !found {
			return
		}
		st := m.undo[oldestID]
		m.totalBytes -= len(st[0].Blob)
		if len(st) == 1 {
			delete(m.undo, oldestID)
		} else {
			m.undo[oldestID] = st[1:]
		}
	}
}
