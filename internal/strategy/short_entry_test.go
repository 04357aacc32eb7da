package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divcap-lab/internal/diag"
	"divcap-lab/internal/domain"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/stats"
)

func shortTick(price, high, low float64, dayIndex int, clock string) *TickInput {
	in := tick(price, high, low, dayIndex, clock)
	in.Shares = -1000
	return in
}

func TestShortEntryForcedLateDayMinusOne(t *testing.T) {
	book := ledger.New()
	r := NewShortEntry("PDI", book, stats.NewTrend(), nil)

	reason, fired := r.Evaluate(shortTick(18.45, 18.50, 18.40, -1, "15:50:00"))
	require.True(t, fired)
	assert.Equal(t, "P0", reason)
	assert.Equal(t, -1000, book.NetShares("PDI"))
}

func TestShortEntryForcedWindowIsTenMinutes(t *testing.T) {
	book := ledger.New()
	r := NewShortEntry("PDI", book, stats.NewTrend(), nil)

	// 15:45 is inside the 15-minute windows but outside this one.
	_, fired := r.Evaluate(shortTick(18.45, 18.50, 18.40, -1, "15:45:00"))
	assert.False(t, fired)
	assert.Zero(t, book.NetShares("PDI"))
}

func TestShortEntryBailOutMirror(t *testing.T) {
	// A residual cost basis puts the barely-underwater band in play even
	// though the net position is flat.
	book := ledger.New()
	book.Open("PDI", 500, 18.10, "2023-09-01")
	book.Open("PDI", -500, 18.10, "2023-09-01")

	r := NewShortEntry("PDI", book, stats.NewTrend(), nil)

	reason, fired := r.Evaluate(shortTick(18.00, 18.20, 17.95, -4, "10:00:00"))
	require.True(t, fired)
	assert.Equal(t, "P1", reason)
	assert.Equal(t, -1000, book.NetShares("PDI"))
}

func TestShortEntryNoCostBasisNoBailOut(t *testing.T) {
	// Flat book, no cost basis: only the forced case can fire.
	r := NewShortEntry("PDI", ledger.New(), stats.NewTrend(), nil)

	_, fired := r.Evaluate(shortTick(18.00, 18.20, 17.95, -4, "10:00:00"))
	assert.False(t, fired)
}

func TestShortEntryPlateauMirror(t *testing.T) {
	trend := stats.NewTrend()
	trend.Push(&domain.Quote{High: 17.50, Low: 16.50})
	trend.Push(&domain.Quote{High: 18.00, Low: 17.00})

	book := ledger.New()
	book.Open("PDI", 500, 18.10, "2023-09-01")
	book.Open("PDI", -500, 18.10, "2023-09-01")

	r := NewShortEntry("PDI", book, trend, nil)

	reason, fired := r.Evaluate(shortTick(18.00, 18.20, 17.95, -5, "10:00:00"))
	require.True(t, fired)
	assert.Equal(t, "P3", reason)
}

func TestShortEntryDiagnosticEveryTick(t *testing.T) {
	sink := diag.NewMemorySink()
	r := NewShortEntry("PDI", ledger.New(), stats.NewTrend(), sink)

	_, fired := r.Evaluate(shortTick(18.45, 18.50, 18.40, -4, "10:00:00"))
	require.False(t, fired)

	records := sink.ByChannel("peacock.txt")
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Message, "-4\t18.45")
}
