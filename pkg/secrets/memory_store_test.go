package secrets

import (
	"context"
	"sync"

	iface "github.com/goliatone/go-hatool/pkg/interfaces/secrets"
)

// memoryStore mirrors the sqlite store in memory: the latest record is the
// one inserted last, and rewriting a version keeps its position.
type memoryStore struct {
	mu    sync.RWMutex
	seq   int
	items map[string]memoryEntry
}

type memoryEntry struct {
	seq int
	rec iface.Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]memoryEntry)}
}

func (m *memoryStore) Put(_ context.Context, rec iface.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := rec.Schema + "|" + rec.Host + "|" + rec.Port + "|" + rec.User + "|" + rec.Version
	entry, ok := m.items[k]
	if !ok {
		m.seq++
		entry.seq = m.seq
	}
	entry.rec = rec
	m.items[k] = entry
	return nil
}

func (m *memoryStore) GetLatest(_ context.Context, id iface.Identity) (iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest memoryEntry
	for _, entry := range m.items {
		if entry.rec.Identity == id && entry.seq > latest.seq {
			latest = entry
		}
	}
	if latest.seq == 0 {
		return iface.Record{}, ErrNotFound
	}
	return latest.rec, nil
}

func (m *memoryStore) Delete(_ context.Context, id iface.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, entry := range m.items {
		if entry.rec.Identity == id {
			delete(m.items, k)
		}
	}
	return nil
}
