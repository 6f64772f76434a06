package session

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemorySession is an in-memory Session intended for tests and examples.
type MemorySession struct {
	mu      sync.RWMutex
	values  map[string]any
	old     map[string]any
	flashed map[string]any
}

// NewMemorySession returns an empty session.
func NewMemorySession() *MemorySession {
	return &MemorySession{values: map[string]any{}}
}

func (s *MemorySession) Get(_ context.Context, key string) (any, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *MemorySession) Put(_ context.Context, key string, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = map[string]any{}
	}
	s.values[key] = value
	return nil
}

func (s *MemorySession) Has(_ context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok, nil
}

func (s *MemorySession) Forget(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemorySession) OldInput(_ context.Context) (map[string]any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.old == nil {
		return nil, false, nil
	}
	return cloneInput(s.old), true, nil
}

// FlashInput stores input for the next request.
func (s *MemorySession) FlashInput(_ context.Context, input map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashed = cloneInput(input)
	if s.flashed == nil {
		s.flashed = map[string]any{}
	}
	return nil
}

// Advance ends the current request: input flashed during it becomes the old
// input of the next one.
func (s *MemorySession) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.old = s.flashed
	s.flashed = nil
}

// Keys lists stored keys, sorted.
func (s *MemorySession) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrKeyRequired
	}
	return nil
}

func cloneInput(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		if list, ok := value.([]string); ok {
			value = append([]string(nil), list...)
		}
		out[key] = value
	}
	return out
}
