package store

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]Snapshot)}
}

func (m *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	prepare(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	c.SVG = append([]byte(nil), s.SVG...)
	m.snaps[s.ID] = c
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snaps[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) List(ctx context.Context, opts ListOptions) ([]Snapshot, error) {
	m.mu.RLock()
	all := make([]Snapshot, 0, len(m.snaps))
	for _, s := range m.snaps {
		all = append(all, s)
	}
	m.mu.RUnlock()

	newestFirst(all)
	return filter(all, opts), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snaps[id]; !ok {
		return ErrNotFound
	}
	delete(m.snaps, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
