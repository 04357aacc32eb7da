package quotes

import (
	"context"
	"fmt"

	"divcap-lab/internal/calendar"
	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// ArchiveSource replays quotes from the quote archive. Each session is
// loaded once and served from memory in timestamp order.
type ArchiveSource struct {
	archive storage.QuoteArchive

	// cached session
	symbol string
	date   string
	quotes []*domain.Quote
}

// NewArchiveSource creates a replay source over the given archive.
func NewArchiveSource(archive storage.QuoteArchive) *ArchiveSource {
	return &ArchiveSource{archive: archive}
}

// Compile-time interface check.
var _ Source = (*ArchiveSource)(nil)

// Next returns the first archived quote at or after clock. ErrEndOfDay
// when the session has no quote at or past that time.
func (s *ArchiveSource) Next(ctx context.Context, symbol, date, clock string) (*domain.Quote, error) {
	if s.symbol != symbol || s.date != date || s.quotes == nil {
		quotes, err := s.archive.GetBySymbolDate(ctx, symbol, date)
		if err != nil {
			return nil, fmt.Errorf("load archived session: %w", err)
		}
		s.symbol, s.date, s.quotes = symbol, date, quotes
	}

	want, err := calendar.ClockToSeconds(clock)
	if err != nil {
		return nil, fmt.Errorf("bad clock: %w", err)
	}

	for _, q := range s.quotes {
		got, err := calendar.ClockToSeconds(q.Clock())
		if err != nil {
			continue
		}
		if got >= want {
			return q, nil
		}
	}
	return nil, ErrEndOfDay
}
