package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/inferschema/pkg/ports"
	"github.com/aretw0/inferschema/pkg/schema"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]schema.Definition
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]schema.Definition),
	}
}

// NewFromDefinitions creates a store seeded with defs.
// Each definition is checked before it is stored.
func NewFromDefinitions(defs ...schema.Definition) (*Store, error) {
	s := NewStore()
	for _, def := range defs {
		if err := def.Check(); err != nil {
			return nil, fmt.Errorf("seed definition: %w", err)
		}
		s.data[def.Name] = clone(def)
	}
	return s, nil
}

// Save persists the definition in memory.
func (s *Store) Save(ctx context.Context, def schema.Definition) error {
	// Copy so later changes to the caller's slice do not leak in
	copied := clone(def)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[def.Name] = copied
	return nil
}

// Load retrieves the definition from memory.
func (s *Store) Load(ctx context.Context, name string) (schema.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.data[name]
	if !ok {
		return schema.Definition{}, ports.ErrDefinitionNotFound
	}
	return clone(def), nil
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored record names in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func clone(def schema.Definition) schema.Definition {
	out := def
	if def.Fields != nil {
		out.Fields = make([]schema.FieldDefinition, len(def.Fields))
		copy(out.Fields, def.Fields)
	}
	return out
}
