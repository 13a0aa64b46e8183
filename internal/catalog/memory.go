package catalog

import (
	"context"
	"sort"
	"sync"

	"robosim/internal/sim"
)

type MemoryStore struct {
	mu         sync.RWMutex
	components map[string]sim.ComponentDescriptor
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{components: make(map[string]sim.ComponentDescriptor)}
}

// NewDefaultStore returns an initialised in-memory store holding Defaults().
func NewDefaultStore() *MemoryStore {
	s := NewMemoryStore()
	for _, d := range Defaults() {
		s.components[d.ID] = d
	}
	return s
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.components == nil {
		s.components = make(map[string]sim.ComponentDescriptor)
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (sim.ComponentDescriptor, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.components[id]
	return d, ok, nil
}

func (s *MemoryStore) List(_ context.Context) ([]sim.ComponentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sim.ComponentDescriptor, 0, len(s.components))
	for _, d := range s.components {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, desc sim.ComponentDescriptor) error {
	if err := validate(desc); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.components == nil {
		s.components = make(map[string]sim.ComponentDescriptor)
	}
	s.components[desc.ID] = desc
	return nil
}
