// Package clickhouse stores the raw quote stream. MergeTree does not
// enforce uniqueness, so the archive checks for duplicate (dt, symbol)
// keys explicitly before sending a batch.
package clickhouse

import (
	"context"
	"fmt"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// QuoteArchive implements storage.QuoteArchive using ClickHouse.
type QuoteArchive struct {
	conn *Conn
}

// NewQuoteArchive creates a new QuoteArchive.
func NewQuoteArchive(conn *Conn) *QuoteArchive {
	return &QuoteArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteArchive = (*QuoteArchive)(nil)

// InsertBulk adds multiple quotes. Fails the entire batch on a duplicate
// (dt, symbol) key.
func (s *QuoteArchive) InsertBulk(ctx context.Context, quotes []*domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		dt     string
		symbol string
	}
	seen := make(map[key]struct{}, len(quotes))
	for _, q := range quotes {
		if q == nil || q.DT == "" || q.Symbol == "" {
			return storage.ErrInvalidInput
		}
		k := key{q.DT, q.Symbol}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, q := range quotes {
		exists, err := s.exists(ctx, q.DT, q.Symbol)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO quotes (
			dt, symbol, instrument_type, price, source, volume,
			bid, ask, bid_size, ask_size, high, low, open
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, q := range quotes {
		err = batch.Append(
			q.DT, q.Symbol, q.Type, q.Price, q.Source, uint64(q.Volume),
			q.Bid, q.Ask, uint32(q.BidSize), uint32(q.AskSize),
			q.High, q.Low, q.Open,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetBySymbolDate retrieves all quotes for symbol on a calendar date,
// ordered by timestamp ASC. The dt column encodes the date as its prefix,
// so a prefix match selects the session.
func (s *QuoteArchive) GetBySymbolDate(ctx context.Context, symbol, date string) ([]*domain.Quote, error) {
	query := `
		SELECT dt, symbol, instrument_type, price, source, volume,
		       bid, ask, bid_size, ask_size, high, low, open
		FROM quotes
		WHERE symbol = ? AND startsWith(dt, ?)
		ORDER BY dt ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, date)
	if err != nil {
		return nil, fmt.Errorf("query quotes by symbol/date: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		var q domain.Quote
		var volume uint64
		var bidSize, askSize uint32
		err := rows.Scan(
			&q.DT, &q.Symbol, &q.Type, &q.Price, &q.Source, &volume,
			&q.Bid, &q.Ask, &bidSize, &askSize, &q.High, &q.Low, &q.Open,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quote row: %w", err)
		}
		q.Volume = int64(volume)
		q.BidSize = int(bidSize)
		q.AskSize = int(askSize)
		quotes = append(quotes, &q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote rows: %w", err)
	}

	return quotes, nil
}

// exists checks if a quote with the given key exists.
func (s *QuoteArchive) exists(ctx context.Context, dt, symbol string) (bool, error) {
	query := `SELECT count(*) FROM quotes WHERE dt = ? AND symbol = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, dt, symbol).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
