package strategy

import (
	"fmt"

	"divcap-lab/internal/config"
	"divcap-lab/internal/diag"
	"divcap-lab/internal/domain"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/stats"
)

const longEntryChannel = "green.txt"

// LongEntry opens long lots on the post-event days. Three cases:
//
//	G0: forced entry during the last 15 minutes of day 4.
//	G3: three-candle contraction (descending highs and lows over the
//	    last three days) with a wide enough session spread, days 2-4.
//	G4: price undercuts the prior three days' lows, days 2-4.
type LongEntry struct {
	symbol string
	book   *ledger.Ledger
	daily  *stats.DailyStats
	sink   diag.Sink

	// Tuning for the retired near-low entry case; loaded and validated
	// so a config rollback cannot silently ship zeros.
	spreadThreshold float64
	howNearLow      float64
}

// NewLongEntry creates the rule. Errors when a tuning key is missing.
func NewLongEntry(symbol string, book *ledger.Ledger, daily *stats.DailyStats, sink diag.Sink, cfg *config.Store) (*LongEntry, error) {
	spreadThreshold, err := cfg.RequireFloat("GREEN_G1_SPREADPERCENT")
	if err != nil {
		return nil, fmt.Errorf("long entry: %w", err)
	}
	howNearLow, err := cfg.RequireFloat("GREEN_G1_HOW_NEAR_LOW")
	if err != nil {
		return nil, fmt.Errorf("long entry: %w", err)
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &LongEntry{
		symbol:          symbol,
		book:            book,
		daily:           daily,
		sink:            sink,
		spreadThreshold: spreadThreshold,
		howNearLow:      howNearLow,
	}, nil
}

// Compile-time interface check.
var _ Rule = (*LongEntry)(nil)

func (r *LongEntry) Name() string { return "LongEntry" }

// Evaluate opens a long lot when one of the entry cases fires.
func (r *LongEntry) Evaluate(in *TickInput) (string, bool) {
	q := in.Quote
	spread := spreadPercent(q.High, q.Low)

	// Case G0: forced late-day entry on day 4
	if in.DayIndex == 4 && inClosingWindow(in.Clock, in.CloseTime, 15) {
		r.book.Open(r.symbol, in.Shares, q.Price, in.Date)
		return "G0", true
	}

	r.sink.Append(longEntryChannel, q.DT,
		fmt.Sprintf("%d - Green sees %.2f, spreadPercent: %.2f", in.DayIndex, q.Price, spread))

	// Case G3: contraction pattern with a wide session spread
	if spread > 1.15 {
		if in.DayIndex == 2 || in.DayIndex == 3 || in.DayIndex == 4 {
			h1 := r.daily.Get(r.symbol, domain.StatHigh, in.DayIndex-2)
			l1 := r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-2)
			h2 := r.daily.Get(r.symbol, domain.StatHigh, in.DayIndex-1)
			l2 := r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-1)
			h3 := r.daily.Get(r.symbol, domain.StatHigh, in.DayIndex)
			l3 := r.daily.Get(r.symbol, domain.StatLow, in.DayIndex)

			if hlx3(h1, h2, h3, l1, l2, l3) {
				r.book.Open(r.symbol, in.Shares, q.Price, in.Date)
				r.sink.Append(longEntryChannel, q.DT,
					fmt.Sprintf("%d - Green buys @ %.2f, spreadPercent: %.2f", in.DayIndex, q.Price, spread))
				return "G3", true
			}
		}
	}

	// Case G4: price below the prior three days' lows
	if in.DayIndex == 2 || in.DayIndex == 3 || in.DayIndex == 4 {
		if q.Price < r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-1) &&
			q.Price < r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-2) &&
			q.Price < r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-3) {
			r.book.Open(r.symbol, in.Shares, q.Price, in.Date)
			r.sink.Append(longEntryChannel, q.DT,
				fmt.Sprintf("%d - Green buys @ %.2f", in.DayIndex, q.Price))
			return "G4", true
		}
	}

	return "", false
}
