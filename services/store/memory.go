package store

import (
	"context"
	"sync"
)

// MemoryStore is the degraded fallback when the database cannot be
// opened: same contract, no durability. Using it means duplicate alerts
// are possible after a restart, which is why persistence errors are
// logged loudly at startup.
type MemoryStore struct {
	mu         sync.Mutex
	order      []string
	seen       map[string]struct{}
	stats      map[string]KeywordStat
	maxHistory int
}

// NewMemoryStore creates an in-memory store with the same rotation cap as
// the durable one.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		seen:       make(map[string]struct{}),
		stats:      make(map[string]KeywordStat),
		maxHistory: maxHistory,
	}
}

// Contains reports whether identifier was recorded this run
func (m *MemoryStore) Contains(_ context.Context, identifier string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[identifier]
	return ok, nil
}

// Record appends identifier, rotating out the oldest past the cap
func (m *MemoryStore) Record(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[identifier]; ok {
		return nil
	}
	m.seen[identifier] = struct{}{}
	m.order = append(m.order, identifier)
	for m.maxHistory > 0 && len(m.order) > m.maxHistory {
		delete(m.seen, m.order[0])
		m.order = m.order[1:]
	}
	return nil
}

// Stats returns the in-memory keyword statistics
func (m *MemoryStore) Stats(_ context.Context) (map[string]KeywordStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]KeywordStat, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out, nil
}

// BumpChecked adds count to each term's checked total
func (m *MemoryStore) BumpChecked(_ context.Context, terms []string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, term := range terms {
		stat := m.stats[term]
		stat.Term = term
		stat.Checked += count
		m.stats[term] = stat
	}
	return nil
}

// BumpHits increments each term's hit count
func (m *MemoryStore) BumpHits(_ context.Context, terms []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, term := range terms {
		stat := m.stats[term]
		stat.Term = term
		stat.Hits++
		m.stats[term] = stat
	}
	return nil
}
