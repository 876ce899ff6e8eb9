package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mercator-hq/rulescript/pkg/policy/scope"
)

// MemoryStore is an in-memory script store for tests and embedding.
type MemoryStore struct {
	mu      sync.RWMutex
	scripts map[scope.Descriptor]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scripts: make(map[scope.Descriptor]string),
	}
}

// GetScript implements ScriptStore.
func (s *MemoryStore) GetScript(ctx context.Context, scopeType scope.Type, scopeID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	desc := scope.New(scopeType, scopeID)
	s.mu.RLock()
	text, ok := s.scripts[desc]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%s: %w", desc, ErrNotFound)
	}
	return text, nil
}

// SaveScript implements ScriptStore.
func (s *MemoryStore) SaveScript(ctx context.Context, scopeType scope.Type, scopeID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	desc := scope.New(scopeType, scopeID)
	if err := desc.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.scripts[desc] = text
	s.mu.Unlock()
	return nil
}

// DeleteScript implements Deleter.
func (s *MemoryStore) DeleteScript(ctx context.Context, scopeType scope.Type, scopeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	desc := scope.New(scopeType, scopeID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.scripts[desc]; !ok {
		return fmt.Errorf("%s: %w", desc, ErrNotFound)
	}
	delete(s.scripts, desc)
	return nil
}

// List implements Lister.
func (s *MemoryStore) List(ctx context.Context) ([]scope.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	descs := make([]scope.Descriptor, 0, len(s.scripts))
	for desc := range s.scripts {
		descs = append(descs, desc)
	}
	s.mu.RUnlock()

	sortDescriptors(descs)
	return descs, nil
}

func sortDescriptors(descs []scope.Descriptor) {
	sort.Slice(descs, func(i, j int) bool {
		si, sj := descs[i].Type.Specificity(), descs[j].Type.Specificity()
		if si != sj {
			return si < sj
		}
		return descs[i].ID < descs[j].ID
	})
}
