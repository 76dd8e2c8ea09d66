// Package sync keeps the client's local copy of server state and
// coordinates optimistic mutations against the API: apply locally first,
// submit, then either overwrite with the server's answer or roll back.
package sync

import (
	"sort"
	"sync"
)

// Store is an in-memory collection of one entity type keyed by id.
// Reads are snapshots; mutations normally flow through a Coordinator.
type Store[T any] struct {
	mu    sync.RWMutex
	items map[int64]T
	id    func(T) int64
}

func NewStore[T any](id func(T) int64) *Store[T] {
	return &Store[T]{items: make(map[int64]T), id: id}
}

// ReplaceAll installs a fetched result set, discarding everything held
// before. Fetches replace, they never merge.
func (s *Store[T]) ReplaceAll(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int64]T, len(items))
	for _, it := range items {
		s.items[s.id(it)] = it
	}
}

func (s *Store[T]) Get(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

// List returns a snapshot ordered by id, so repeated calls over the same
// contents are identical.
func (s *Store[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return s.id(out[i]) < s.id(out[j]) })
	return out
}

func (s *Store[T]) Put(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[s.id(item)] = item
}

// PutWithID stores an item under an explicit key. Used for provisional
// creates, whose items do not carry their temporary id themselves.
func (s *Store[T]) PutWithID(id int64, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = item
}

func (s *Store[T]) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
