package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"divcap-lab/internal/domain"
)

// snapshotClient is the slice of the Alpaca market-data client the
// source needs. Satisfied by *marketdata.Client.
type snapshotClient interface {
	GetSnapshot(symbol string, req marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error)
}

// AlpacaSource adapts a live Alpaca market-data snapshot into the quote
// stream. Date and clock arguments are ignored; the source always
// reports the current snapshot stamped with exchange-local time.
type AlpacaSource struct {
	client snapshotClient
	loc    *time.Location
}

const alpacaFeedTag = "ALPACA"

// NewAlpacaSource creates a live source over the given client. A nil
// location defaults to America/New_York.
func NewAlpacaSource(client snapshotClient, loc *time.Location) *AlpacaSource {
	if loc == nil {
		loc, _ = time.LoadLocation("America/New_York")
	}
	return &AlpacaSource{client: client, loc: loc}
}

// Compile-time interface check.
var _ Source = (*AlpacaSource)(nil)

// Next fetches the current snapshot for symbol.
func (s *AlpacaSource) Next(_ context.Context, symbol, _, _ string) (*domain.Quote, error) {
	snap, err := s.client.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	if snap == nil || snap.LatestTrade == nil {
		return nil, ErrEndOfDay
	}

	q := &domain.Quote{
		DT:     snap.LatestTrade.Timestamp.In(s.loc).Format("2006-01-02.15:04:05"),
		Symbol: symbol,
		Type:   "STK",
		Price:  snap.LatestTrade.Price,
		Source: alpacaFeedTag,
		Volume: int64(snap.LatestTrade.Size),
	}
	if snap.LatestQuote != nil {
		q.Bid = snap.LatestQuote.BidPrice
		q.Ask = snap.LatestQuote.AskPrice
		q.BidSize = int(snap.LatestQuote.BidSize)
		q.AskSize = int(snap.LatestQuote.AskSize)
	}
	if snap.DailyBar != nil {
		q.High = snap.DailyBar.High
		q.Low = snap.DailyBar.Low
		q.Open = snap.DailyBar.Open
	} else {
		q.High = snap.LatestTrade.Price
		q.Low = snap.LatestTrade.Price
		q.Open = snap.LatestTrade.Price
	}

	return q, nil
}
