package strategy

import (
	"fmt"

	"divcap-lab/internal/diag"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/stats"
)

const shortEntryChannel = "peacock.txt"

// ShortEntry opens short lots on the run-up days. Its cases mirror the
// long-exit bail-outs, but with no position on they bet on the fall
// instead of stepping out of it:
//
//	P0: forced short during the last 10 minutes of day -1.
//	P1: barely-below-cost price with a flat or falling trend.
//	P3: plateau after a rising trend, days -7..-5.
//
// Shares must be negative.
type ShortEntry struct {
	symbol string
	book   *ledger.Ledger
	trend  *stats.Trend
	sink   diag.Sink
}

// NewShortEntry creates the rule.
func NewShortEntry(symbol string, book *ledger.Ledger, trend *stats.Trend, sink diag.Sink) *ShortEntry {
	if sink == nil {
		sink = diag.Discard
	}
	return &ShortEntry{symbol: symbol, book: book, trend: trend, sink: sink}
}

// Compile-time interface check.
var _ Rule = (*ShortEntry)(nil)

func (r *ShortEntry) Name() string { return "ShortEntry" }

// Evaluate opens a short lot when one of the entry cases fires.
func (r *ShortEntry) Evaluate(in *TickInput) (string, bool) {
	q := in.Quote
	spread := spreadPercent(q.High, q.Low)

	r.sink.Append(shortEntryChannel, q.DT,
		fmt.Sprintf("%d\t%.2f\t%.2f\t%.2f\t%.2f", in.DayIndex, q.Price, spread, q.High, q.Low))

	// Case P0: forced late-day short on day -1
	if in.DayIndex == -1 && inClosingWindow(in.Clock, in.CloseTime, 10) {
		r.book.Open(r.symbol, in.Shares, q.Price, in.Date)
		return "P0", true
	}

	// Case P1: mirror of the long bail-out, entered short instead.
	gap := costGapPercent(r.book.AverageCost(r.symbol), q.Price)
	if gap <= sellWithinPercent && gap > 0 && !r.trend.TrendingUp() {
		r.book.Open(r.symbol, in.Shares, q.Price, in.Date)
		return "P1", true
	}

	// Case P3: plateau after a rise, days -7..-5.
	if r.trend.TrendingUp() {
		if gap <= sellWithinPercent && gap > 0 {
			if r.trend.Average() >= r.trend.ProjectWithQuote(q) {
				if in.DayIndex == -7 || in.DayIndex == -6 || in.DayIndex == -5 {
					r.book.Open(r.symbol, in.Shares, q.Price, in.Date)
					return "P3", true
				}
			}
		}
	}

	return "", false
}
