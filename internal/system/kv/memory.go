package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memoryStore is a mutex-guarded in-process Store, used for local development
// and as the backend for tests.
type memoryStore struct {
	mu     sync.RWMutex
	keys   map[string][]byte
	lists  map[string][][]byte
	closed bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		keys:  make(map[string][]byte),
		lists: make(map[string][][]byte),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.keys[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(value), nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = cloneBytes(value)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryStore) List(_ context.Context, prefix string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]string, 0)
	for key := range s.keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	// Deterministic order keeps prefix listings stable across calls.
	sort.Strings(matched)

	values := make([][]byte, 0, len(matched))
	for _, key := range matched {
		values = append(values, cloneBytes(s.keys[key]))
	}
	return values, nil
}

func (s *memoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]string, 0)
	for key := range s.keys {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

func (s *memoryStore) DeleteByPrefix(_ context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key := range s.keys {
		if strings.HasPrefix(key, prefix) {
			delete(s.keys, key)
			removed++
		}
	}
	return removed, nil
}

func (s *memoryStore) Push(_ context.Context, listKey string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[listKey] = append([][]byte{cloneBytes(value)}, s.lists[listKey]...)
	return nil
}

func (s *memoryStore) Range(_ context.Context, listKey string, start, stop int64) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[listKey]
	length := int64(len(list))
	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= length {
		stop = length - 1
	}
	if start >= length || start > stop {
		return nil, nil
	}

	values := make([][]byte, 0, stop-start+1)
	for _, value := range list[start : stop+1] {
		values = append(values, cloneBytes(value))
	}
	return values, nil
}

func (s *memoryStore) Trim(_ context.Context, listKey string, max int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if max <= 0 {
		delete(s.lists, listKey)
		return nil
	}
	if list := s.lists[listKey]; int64(len(list)) > max {
		s.lists[listKey] = list[:max]
	}
	return nil
}

func (s *memoryStore) Ping(_ context.Context) error {
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func cloneBytes(value []byte) []byte {
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
