package storage

import (
	"context"

	"divcap-lab/internal/domain"
)

// StatMirror is the durable mirror behind the daily statistics table.
// Semantics are overwrite-by-key, not append: OverwriteAll replaces the
// whole stored set, and on LoadAll the last value per key wins.
type StatMirror interface {
	// OverwriteAll replaces the stored records with the given set.
	OverwriteAll(ctx context.Context, records []domain.StatRecord) error

	// LoadAll returns every stored record.
	LoadAll(ctx context.Context) ([]domain.StatRecord, error)
}

// QuoteArchive stores raw quote ticks, one row per (timestamp, symbol).
type QuoteArchive interface {
	// InsertBulk adds multiple quotes. Fails the entire batch on a
	// duplicate (dt, symbol) key.
	InsertBulk(ctx context.Context, quotes []*domain.Quote) error

	// GetBySymbolDate retrieves all quotes for symbol on a calendar date,
	// ordered by timestamp ASC.
	GetBySymbolDate(ctx context.Context, symbol, date string) ([]*domain.Quote, error)
}

// FillLog stores closed-position records. Append-only.
type FillLog interface {
	// Insert adds a fill. Returns ErrDuplicateKey if fill_id exists.
	Insert(ctx context.Context, f *domain.Fill) error

	// GetByID retrieves a fill by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, fillID string) (*domain.Fill, error)

	// GetBySymbol retrieves all fills for a symbol, ordered by close date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Fill, error)

	// GetAll retrieves every fill, ordered by close date ASC.
	GetAll(ctx context.Context) ([]*domain.Fill, error)
}
