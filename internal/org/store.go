package org

import (
	"sync"

	"github.com/mizan-erp/mizan/internal/shared"
)

// DefaultThemeColor is used when neither the entity nor its parent unit
// declares a color.
const DefaultThemeColor = "#1f6f8b"

// Store is the single source of truth for the entity set and the current
// selection. It is injected into every component that needs it; there is
// no package-level instance.
type Store struct {
	mu        sync.RWMutex
	entities  map[string]Entity
	current   string
	nextSub   int
	observers map[int]func(Entity)
}

// NewStore seeds a store with the known entity set.
func NewStore(entities []Entity) *Store {
	s := &Store{
		entities:  make(map[string]Entity, len(entities)),
		observers: make(map[int]func(Entity)),
	}
	for _, e := range entities {
		s.entities[e.ID] = e
	}
	return s
}

// Entities returns a snapshot of all known entities.
func (s *Store) Entities() []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	return out
}

// Get looks up one entity.
func (s *Store) Get(id string) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	return e, ok
}

// Upsert inserts or replaces an entity. If it is the current selection
// the selection snapshot follows automatically (same map entry).
func (s *Store) Upsert(e Entity) {
	s.mu.Lock()
	s.entities[e.ID] = e
	s.mu.Unlock()
}

// Remove drops an entity; clears the selection if it pointed at it.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.entities, id)
	if s.current == id {
		s.current = ""
	}
	s.mu.Unlock()
}

// Current returns the selected entity, if any.
func (s *Store) Current() (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return Entity{}, false
	}
	e, ok := s.entities[s.current]
	return e, ok
}

// SetCurrent replaces the active selection and notifies observers so
// dependent components can re-filter.
func (s *Store) SetCurrent(id string) error {
	s.mu.Lock()
	e, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return shared.NotFound("entity does not exist").WithEntity(id)
	}
	s.current = id
	observers := make([]func(Entity), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(e)
	}
	return nil
}

// Subscribe registers a callback fired on every selection change. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func(Entity)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.observers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// ThemeColor resolves the display color for an entity. Branches inherit
// their parent unit's color; everything else falls back to the default.
// Total: never fails, unknown ids get the default.
func (s *Store) ThemeColor(entityID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID]
	if !ok {
		return DefaultThemeColor
	}
	if e.ThemeColor != "" {
		return e.ThemeColor
	}
	if e.Kind == KindBranch && e.ParentID != nil {
		if parent, ok := s.entities[*e.ParentID]; ok && parent.ThemeColor != "" {
			return parent.ThemeColor
		}
	}
	return DefaultThemeColor
}

// UpdateLogo merges a logo into the entity record. The map entry is the
// only copy, so a selected entity never goes stale.
func (s *Store) UpdateLogo(entityID string, logo []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[entityID]
	if !ok {
		return shared.NotFound("entity does not exist").WithEntity(entityID)
	}
	e.Logo = logo
	s.entities[entityID] = e
	return nil
}

// ScopeFor builds a visibility scope for the given selection against the
// current entity snapshot.
func (s *Store) ScopeFor(current Entity) Scope {
	return NewScope(current, s.Entities())
}
