package memory

import (
	"context"
	"sort"
	"sync"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// QuoteArchive is an in-memory implementation of storage.QuoteArchive.
type QuoteArchive struct {
	mu   sync.RWMutex
	data map[archiveKey]*domain.Quote
}

type archiveKey struct {
	dt     string
	symbol string
}

// NewQuoteArchive creates an empty in-memory quote archive.
func NewQuoteArchive() *QuoteArchive {
	return &QuoteArchive{
		data: make(map[archiveKey]*domain.Quote),
	}
}

// InsertBulk adds multiple quotes. Fails the entire batch on a duplicate
// (dt, symbol) key, leaving the archive unchanged.
func (a *QuoteArchive) InsertBulk(_ context.Context, quotes []*domain.Quote) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[archiveKey]struct{}, len(quotes))
	for _, q := range quotes {
		if q == nil || q.DT == "" || q.Symbol == "" {
			return storage.ErrInvalidInput
		}
		k := archiveKey{q.DT, q.Symbol}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := a.data[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, q := range quotes {
		quoteCopy := *q
		a.data[archiveKey{q.DT, q.Symbol}] = &quoteCopy
	}
	return nil
}

// GetBySymbolDate retrieves all quotes for symbol on a calendar date,
// ordered by timestamp ASC.
func (a *QuoteArchive) GetBySymbolDate(_ context.Context, symbol, date string) ([]*domain.Quote, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []*domain.Quote
	for _, q := range a.data {
		if q.Symbol == symbol && q.Date() == date {
			quoteCopy := *q
			result = append(result, &quoteCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DT < result[j].DT
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.QuoteArchive = (*QuoteArchive)(nil)
