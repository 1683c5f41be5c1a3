package kv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// memoryStore is the in-process Store used in memory mode and in tests. It
// mirrors the external service's contract, including the absence of any
// cross-key atomicity.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]json.RawMessage
}

func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]json.RawMessage)}
}

func (s *memoryStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, true, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = raw
	return nil
}

func (s *memoryStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0)
	for key, raw := range s.records {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		value := make(json.RawMessage, len(raw))
		copy(value, raw)
		entries = append(entries, Entry{Key: key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (s *memoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
