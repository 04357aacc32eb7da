// Package quotes supplies the tick stream the simulation walks: a
// polling HTTP source for the original quote server, a replay source
// over the quote archive, and a live snapshot source.
package quotes

import (
	"context"
	"errors"

	"divcap-lab/internal/domain"
)

// ErrEndOfDay signals that the source has no further quotes for the
// requested session. The engine treats it as a normal day boundary.
var ErrEndOfDay = errors.New("no more quotes for session")

// Source yields the next quote for symbol on date at or after the given
// clock time. Returns ErrEndOfDay when the session is exhausted.
type Source interface {
	Next(ctx context.Context, symbol, date, clock string) (*domain.Quote, error)
}
