// Package memory is an in-process Store used for development and as the
// reference adapter in tests. It deliberately does not implement
// store.Summer, so aggregation over it exercises the scan-and-sum path.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"saishi/internal/core"
	"saishi/internal/store"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Tournament
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{items: make(map[string]core.Tournament)}
}

// Insert assigns a fresh id, ignoring any id already set on t.
func (s *Store) Insert(_ context.Context, t core.Tournament) (string, error) {
	t.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[t.ID] = t
	return t.ID, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return core.Tournament{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) Query(_ context.Context, q store.Query) ([]core.Tournament, error) {
	return store.Select(s.snapshot(), q), nil
}

func (s *Store) Count(_ context.Context, f store.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.items {
		if f.Match(t) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Update(_ context.Context, id string, p store.Patch) (core.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok {
		return core.Tournament{}, core.ErrNotFound
	}
	t = p.Apply(t)
	s.items[id] = t
	return t, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) snapshot() []core.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Tournament, 0, len(s.items))
	for _, t := range s.items {
		out = append(out, t)
	}
	return out
}
