package publish

import (
	"context"
	"io"
	"sort"
	"sync"
)

// Object is a stored blob of the memory store.
type Object struct {
	Data    []byte
	Options PutOptions
}

// Memory keeps objects in process memory. Intended for tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	objs map[string]Object
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory { return &Memory{objs: map[string]Object{}} }

func (s *Memory) Driver() Driver { return DriverMemory }

// Put stores a copy of r's content under key.
func (s *Memory) Put(_ context.Context, key string, r io.Reader, opts PutOptions) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objs[k] = Object{Data: b, Options: opts}
	return nil
}

// Get returns the object stored under key.
func (s *Memory) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objs[key]
	return obj, ok
}

// Keys returns every stored key in sorted order.
func (s *Memory) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objs))
	for k := range s.objs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
