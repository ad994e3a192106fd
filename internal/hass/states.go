package hass

import "sync"

// EntityState is one entity's live state snapshot.
type EntityState struct {
	EntityID   string         `json:"entity_id"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// StateStore holds the live state of every known entity. It is written by
// the websocket listener and read by the page renderer.
type StateStore struct {
	mu      sync.RWMutex
	entries map[string]EntityState
}

func NewStateStore() *StateStore {
	return &StateStore{entries: map[string]EntityState{}}
}

// ReplaceAll swaps in a full snapshot (initial get_states).
func (s *StateStore) ReplaceAll(states []EntityState) {
	entries := make(map[string]EntityState, len(states))
	for _, state := range states {
		entries[state.EntityID] = state
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Update applies one state_changed event.
func (s *StateStore) Update(state EntityState) {
	if state.EntityID == "" {
		return
	}
	s.mu.Lock()
	s.entries[state.EntityID] = state
	s.mu.Unlock()
}

// State implements the renderer's StateSource boundary.
func (s *StateStore) State(entityID string) (string, map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[entityID]
	if !ok {
		return "", nil, false
	}
	return entry.State, entry.Attributes, true
}

// Len returns the number of known entities.
func (s *StateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
