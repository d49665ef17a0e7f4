package memory

import (
	"context"
	"sync"
)

// KVStore is an in-memory app.KeyValueStore.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{entries: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}
