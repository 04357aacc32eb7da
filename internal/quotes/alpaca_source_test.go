package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnapshotClient struct {
	snap *marketdata.Snapshot
	err  error
}

func (c *stubSnapshotClient) GetSnapshot(string, marketdata.GetSnapshotRequest) (*marketdata.Snapshot, error) {
	return c.snap, c.err
}

func TestAlpacaSourceBuildsQuote(t *testing.T) {
	ts := time.Date(2023, 8, 28, 13, 30, 24, 0, time.UTC) // 09:30:24 ET
	client := &stubSnapshotClient{
		snap: &marketdata.Snapshot{
			LatestTrade: &marketdata.Trade{Price: 18.28, Size: 436, Timestamp: ts},
			LatestQuote: &marketdata.Quote{
				BidPrice: 18.27, AskPrice: 18.30, BidSize: 26, AskSize: 16,
			},
			DailyBar: &marketdata.Bar{Open: 18.20, High: 18.35, Low: 18.15},
		},
	}

	src := NewAlpacaSource(client, nil)
	q, err := src.Next(context.Background(), "PDI", "", "")
	require.NoError(t, err)

	assert.Equal(t, "2023-08-28.09:30:24", q.DT)
	assert.Equal(t, "PDI", q.Symbol)
	assert.InDelta(t, 18.28, q.Price, 1e-9)
	assert.Equal(t, int64(436), q.Volume)
	assert.InDelta(t, 18.27, q.Bid, 1e-9)
	assert.InDelta(t, 18.30, q.Ask, 1e-9)
	assert.Equal(t, 26, q.BidSize)
	assert.InDelta(t, 18.35, q.High, 1e-9)
	assert.InDelta(t, 18.15, q.Low, 1e-9)
	assert.InDelta(t, 18.20, q.Open, 1e-9)
}

func TestAlpacaSourceNoTradeIsEndOfDay(t *testing.T) {
	src := NewAlpacaSource(&stubSnapshotClient{snap: &marketdata.Snapshot{}}, nil)

	_, err := src.Next(context.Background(), "PDI", "", "")
	assert.ErrorIs(t, err, ErrEndOfDay)
}

func TestAlpacaSourceMissingDailyBarFallsBackToTrade(t *testing.T) {
	client := &stubSnapshotClient{
		snap: &marketdata.Snapshot{
			LatestTrade: &marketdata.Trade{Price: 18.28, Timestamp: time.Now()},
		},
	}

	src := NewAlpacaSource(client, time.UTC)
	q, err := src.Next(context.Background(), "PDI", "", "")
	require.NoError(t, err)
	assert.InDelta(t, 18.28, q.High, 1e-9)
	assert.InDelta(t, 18.28, q.Low, 1e-9)
	assert.InDelta(t, 18.28, q.Open, 1e-9)
}

func TestAlpacaSourcePropagatesClientError(t *testing.T) {
	src := NewAlpacaSource(&stubSnapshotClient{err: errors.New("rate limited")}, nil)

	_, err := src.Next(context.Background(), "PDI", "", "")
	assert.ErrorContains(t, err, "rate limited")
}
