package memory

import (
	"context"
	"strings"
	"sync"

	"pet-health-tracker/internal/ports/kv"
)

// StateStore es el store en memoria para dev y tests. Se pierde al reiniciar.
type StateStore struct {
	mu    sync.RWMutex
	byKey map[string][]byte
}

var _ kv.Store = (*StateStore)(nil)

func NewStateStore() *StateStore {
	return &StateStore{
		byKey: make(map[string][]byte),
	}
}

func (s *StateStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.byKey[strings.TrimSpace(key)]
	if !ok {
		return nil, kv.ErrNotFound
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (s *StateStore) Save(ctx context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := make([]byte, len(payload))
	copy(b, payload)
	s.byKey[strings.TrimSpace(key)] = b
	return nil
}

func (s *StateStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byKey, strings.TrimSpace(key))
	return nil
}
