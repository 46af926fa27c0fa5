// Package store provides Tint's persistence backends. Both stores speak the
// same key-value contract: Get returns only the keys that exist, Set writes
// one key, Remove deletes without erroring on absence, and OnChange reports
// changed keys to subscribers. A removed key is reported with an empty
// value; preference values are never empty, so the two cannot collide.
package store

import (
	"errors"
	"sync"
)

// ErrUnavailable is returned by a MemoryStore switched into failure mode.
var ErrUnavailable = errors.New("store unavailable")

// MemoryStore is a map-backed store. It is the default for tests and for
// deployments that do not want persistence across restarts. Changes notify
// subscribers, so two components sharing one memory store observe each
// other's writes.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]string
	failing bool

	subMu  sync.Mutex
	subs   map[int]func(map[string]string)
	nextID int
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
		subs: make(map[int]func(map[string]string)),
	}
}

// Seed preloads values without notifying subscribers. Intended for test
// setup and config-driven initial state.
func (s *MemoryStore) Seed(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.data[k] = v
	}
}

// Fail switches failure mode on or off. While failing, every operation
// returns ErrUnavailable and nothing is stored. Used to simulate an
// unavailable backend.
func (s *MemoryStore) Fail(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Get returns the stored values for the requested keys. Absent keys are
// omitted from the result.
func (s *MemoryStore) Get(keys []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, ErrUnavailable
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Set writes one key and notifies subscribers.
func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	if s.failing {
		s.mu.Unlock()
		return ErrUnavailable
	}
	unchanged := s.data[key] == value
	s.data[key] = value
	s.mu.Unlock()

	if !unchanged {
		s.notify(map[string]string{key: value})
	}
	return nil
}

// Remove deletes the given keys and notifies subscribers about the ones
// that existed. Removing absent keys is not an error.
func (s *MemoryStore) Remove(keys []string) error {
	changed := make(map[string]string)

	s.mu.Lock()
	if s.failing {
		s.mu.Unlock()
		return ErrUnavailable
	}
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			changed[k] = ""
		}
	}
	s.mu.Unlock()

	if len(changed) > 0 {
		s.notify(changed)
	}
	return nil
}

// OnChange registers a callback invoked with the changed keys after every
// mutation. The returned function unregisters the callback.
func (s *MemoryStore) OnChange(fn func(changed map[string]string)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) notify(changed map[string]string) {
	s.subMu.Lock()
	fns := make([]func(map[string]string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(changed)
	}
}
