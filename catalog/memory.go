package catalog

import (
	"context"
	"slices"
	"sync"
)

// Compile-time check.
var _ Catalog = (*Memory)(nil)

// Memory is an in-memory Catalog, primarily for tests and embedders.
// It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[int64]Record
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{records: make(map[int64]Record)}
}

// Put inserts or replaces a record.
func (m *Memory) Put(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.Vector = slices.Clone(rec.Vector)
	m.records[rec.ItemID] = rec
}

// Delete removes a record if present.
func (m *Memory) Delete(itemID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, itemID)
}

// Get returns the record for itemID.
func (m *Memory) Get(itemID int64) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[itemID]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Vector = slices.Clone(rec.Vector)
	return rec, nil
}

// ListEmbeddings implements Catalog.
func (m *Memory) ListEmbeddings(_ context.Context, excludeID int64) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.records))
	for id, rec := range m.records {
		if id == excludeID || len(rec.Vector) == 0 {
			continue
		}
		rec.Vector = slices.Clone(rec.Vector)
		records = append(records, rec)
	}

	slices.SortFunc(records, func(a, b Record) int {
		switch {
		case a.ItemID < b.ItemID:
			return -1
		case a.ItemID > b.ItemID:
			return 1
		default:
			return 0
		}
	})
	return records, nil
}

// CountEmbeddings implements Catalog.
func (m *Memory) CountEmbeddings(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if len(rec.Vector) > 0 {
			count++
		}
	}
	return count, nil
}
