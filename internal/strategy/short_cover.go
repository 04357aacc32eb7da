package strategy

import (
	"fmt"

	"divcap-lab/internal/diag"
	"divcap-lab/internal/domain"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/stats"
)

const (
	shortCoverChannel = "mustard.txt"
	patternChannel    = "HLx3.txt"
)

// ShortCover closes short lots on the post-event days. Two cases:
//
//	M0: forced cover during the last 15 minutes of day 4.
//	M3: three-candle contraction with a wide enough session spread,
//	    days 2-4. Same pattern the long entry buys on; a falling
//	    sequence of highs and lows is where the short gets out.
//
// Shares must be negative.
type ShortCover struct {
	symbol string
	book   *ledger.Ledger
	daily  *stats.DailyStats
	sink   diag.Sink
}

// NewShortCover creates the rule.
func NewShortCover(symbol string, book *ledger.Ledger, daily *stats.DailyStats, sink diag.Sink) *ShortCover {
	if sink == nil {
		sink = diag.Discard
	}
	return &ShortCover{symbol: symbol, book: book, daily: daily, sink: sink}
}

// Compile-time interface check.
var _ Rule = (*ShortCover)(nil)

func (r *ShortCover) Name() string { return "ShortCover" }

// Evaluate covers the short position when one of the cases fires.
func (r *ShortCover) Evaluate(in *TickInput) (string, bool) {
	q := in.Quote
	spread := spreadPercent(q.High, q.Low)

	// Case M0: forced late-day cover on day 4
	if in.DayIndex == 4 && inClosingWindow(in.Clock, in.CloseTime, 15) {
		r.book.Close(r.symbol, in.Shares, q.Price, in.Date)
		return "M0", true
	}

	low2 := r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-2)
	low1 := r.daily.Get(r.symbol, domain.StatLow, in.DayIndex-1)
	low0 := r.daily.Get(r.symbol, domain.StatLow, in.DayIndex)
	r.sink.Append(shortCoverChannel, q.DT,
		fmt.Sprintf("%d - Mustard sees %.2f, spreadPercent: %.2f  low2: %.2f  low1: %.2f  low0: %.2f",
			in.DayIndex, q.Price, spread, low2, low1, low0))

	// Case M3: contraction pattern with a wide session spread
	if spread > 1.15 {
		if in.DayIndex == 2 || in.DayIndex == 3 || in.DayIndex == 4 {
			h1 := r.daily.Get(r.symbol, domain.StatHigh, in.DayIndex-2)
			l1 := low2
			h2 := r.daily.Get(r.symbol, domain.StatHigh, in.DayIndex-1)
			l2 := low1
			h3 := r.daily.Get(r.symbol, domain.StatHigh, in.DayIndex)
			l3 := low0

			ok := hlx3(h1, h2, h3, l1, l2, l3)
			r.sink.Append(patternChannel, q.DT,
				fmt.Sprintf("spread: %.2f\tdayNum: %d\tx1: %.2f x2: %.2f x3: %.2f y1: %.2f y2: %.2f y3:%.2f ok: %t",
					spread, in.DayIndex, h1, h2, h3, l1, l2, l3, ok))
			if ok {
				r.book.Close(r.symbol, in.Shares, q.Price, in.Date)
				r.sink.Append(shortCoverChannel, q.DT,
					fmt.Sprintf("%d - Mustard covers short @ %.2f, spreadPercent: %.2f", in.DayIndex, q.Price, spread))
				return "M3", true
			}
		}
	}

	return "", false
}
