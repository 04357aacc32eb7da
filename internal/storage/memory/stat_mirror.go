package memory

import (
	"context"
	"sync"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// StatMirror is an in-memory implementation of storage.StatMirror.
type StatMirror struct {
	mu      sync.RWMutex
	records []domain.StatRecord
}

// NewStatMirror creates an empty in-memory stat mirror.
func NewStatMirror() *StatMirror {
	return &StatMirror{}
}

// OverwriteAll replaces the stored records with the given set.
func (m *StatMirror) OverwriteAll(_ context.Context, records []domain.StatRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make([]domain.StatRecord, len(records))
	copy(m.records, records)
	return nil
}

// LoadAll returns every stored record.
func (m *StatMirror) LoadAll(_ context.Context) ([]domain.StatRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.StatRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

// Verify interface compliance at compile time.
var _ storage.StatMirror = (*StatMirror)(nil)
