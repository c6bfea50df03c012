package record

import (
	"context"
	"sync"
)

// Memory is a map-backed store for dev and tests. Contents do not survive a
// restart; production clients use the redis or postgres backends.
type Memory struct {
	mu   sync.RWMutex
	days map[string][]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{days: make(map[string][]Record)}
}

// RecordsFor returns a copy of the records for date, oldest first.
func (m *Memory) RecordsFor(ctx context.Context, date string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.days[date]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Append files rec under date.
func (m *Memory) Append(ctx context.Context, date string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[date] = append(m.days[date], rec)
	return nil
}
