package memory

import (
	"context"
	"sort"
	"sync"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// FillLog is an in-memory implementation of storage.FillLog.
type FillLog struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Fill
	order []string // insertion order, close-date ties resolve by arrival
}

// NewFillLog creates an empty in-memory fill log.
func NewFillLog() *FillLog {
	return &FillLog{
		byID: make(map[string]*domain.Fill),
	}
}

// Insert adds a fill. Returns ErrDuplicateKey if fill_id exists.
func (l *FillLog) Insert(_ context.Context, f *domain.Fill) error {
	if f == nil || f.FillID == "" {
		return storage.ErrInvalidInput
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[f.FillID]; exists {
		return storage.ErrDuplicateKey
	}

	fillCopy := *f
	l.byID[f.FillID] = &fillCopy
	l.order = append(l.order, f.FillID)
	return nil
}

// GetByID retrieves a fill by its ID. Returns ErrNotFound if not exists.
func (l *FillLog) GetByID(_ context.Context, fillID string) (*domain.Fill, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, exists := l.byID[fillID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	fillCopy := *f
	return &fillCopy, nil
}

// GetBySymbol retrieves all fills for a symbol, ordered by close date ASC.
func (l *FillLog) GetBySymbol(_ context.Context, symbol string) ([]*domain.Fill, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*domain.Fill
	for _, id := range l.order {
		if f := l.byID[id]; f.Symbol == symbol {
			fillCopy := *f
			result = append(result, &fillCopy)
		}
	}
	sortFills(result)
	return result, nil
}

// GetAll retrieves every fill, ordered by close date ASC.
func (l *FillLog) GetAll(_ context.Context) ([]*domain.Fill, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]*domain.Fill, 0, len(l.order))
	for _, id := range l.order {
		fillCopy := *l.byID[id]
		result = append(result, &fillCopy)
	}
	sortFills(result)
	return result, nil
}

func sortFills(fills []*domain.Fill) {
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].CloseDate < fills[j].CloseDate
	})
}

// Verify interface compliance at compile time.
var _ storage.FillLog = (*FillLog)(nil)
