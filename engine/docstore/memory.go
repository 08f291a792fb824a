package docstore

import (
	"context"
	"slices"
	"sync"

	"github.com/WessleyAI/installbom/pkg/repo"
)

// memObjects is an in-process objects backend.
type memObjects struct {
	mu   sync.RWMutex
	byID map[string]Object
}

func (m *memObjects) Get(_ context.Context, id string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.byID[id]
	if !ok {
		return Object{}, repo.ErrNotFound
	}
	return o, nil
}

func (m *memObjects) List(_ context.Context, opts repo.ListOpts) ([]Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	var out []Object
	for _, id := range ids[min(opts.Offset, len(ids)):min(opts.Offset+limit, len(ids))] {
		out = append(out, m.byID[id])
	}
	return out, nil
}

func (m *memObjects) Upsert(_ context.Context, o Object) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[o.ID] = o
	return o, nil
}

// NewMemory returns a Store kept in process memory, used by tests and by
// binaries started without NEO4J_URL.
func NewMemory(seed ...Object) *Store {
	m := &memObjects{byID: make(map[string]Object)}
	for _, o := range seed {
		m.byID[o.ID] = o
	}
	return &Store{objects: m, now: nowUTC}
}
