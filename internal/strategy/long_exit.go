package strategy

import (
	"fmt"

	"divcap-lab/internal/config"
	"divcap-lab/internal/diag"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/stats"
)

const longExitChannel = "scarlet.txt"

// LongExit closes long lots on the run-up days. Four cases:
//
//	S0: forced exit during the last 15 minutes of day -1.
//	SL: stop-loss band, percentage gain inside [lower, upper], days -3..-1.
//	S1: barely-profitable bail-out when the trend is not rising.
//	S3: plateau exit after a rising trend, days -7..-5.
type LongExit struct {
	symbol string
	book   *ledger.Ledger
	trend  *stats.Trend
	sink   diag.Sink

	slLower float64
	slUpper float64
}

// NewLongExit creates the rule. Errors when a stop-loss bound is missing.
func NewLongExit(symbol string, book *ledger.Ledger, trend *stats.Trend, sink diag.Sink, cfg *config.Store) (*LongExit, error) {
	slLower, err := cfg.RequireFloat("SCARLET_SL_LOWERLIMIT")
	if err != nil {
		return nil, fmt.Errorf("long exit: %w", err)
	}
	slUpper, err := cfg.RequireFloat("SCARLET_SL_UPPERLIMIT")
	if err != nil {
		return nil, fmt.Errorf("long exit: %w", err)
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &LongExit{
		symbol:  symbol,
		book:    book,
		trend:   trend,
		sink:    sink,
		slLower: slLower,
		slUpper: slUpper,
	}, nil
}

// Compile-time interface check.
var _ Rule = (*LongExit)(nil)

func (r *LongExit) Name() string { return "LongExit" }

// Evaluate closes the long position when one of the exit cases fires.
func (r *LongExit) Evaluate(in *TickInput) (string, bool) {
	q := in.Quote
	avgCost := r.book.AverageCost(r.symbol)
	profit := (q.Price - avgCost) * float64(in.Shares)
	percent := gainPercent(avgCost, q.Price)
	spread := spreadPercent(q.High, q.Low)

	r.sink.Append(longExitChannel, q.DT,
		fmt.Sprintf("%d\t%.2f\t%.2f\t%.1f\t%.2f\t%.2f\t%.2f",
			in.DayIndex, q.Price, profit, percent, spread, q.High, q.Low))

	// Case S0: forced late-day exit on day -1
	if in.DayIndex == -1 && inClosingWindow(in.Clock, in.CloseTime, 15) {
		r.book.Close(r.symbol, in.Shares, q.Price, in.Date)
		return "S0", true
	}

	// Case SL: stop-loss recovery band on the last three run-up days
	if in.DayIndex == -1 || in.DayIndex == -2 || in.DayIndex == -3 {
		if avgCost != 0 && percent >= r.slLower && percent <= r.slUpper {
			r.book.Close(r.symbol, in.Shares, q.Price, in.Date)
			return "SL", true
		}
	}

	// Case S1: early bail-out. The position is barely underwater and the
	// trend is flat or falling, so take the small loss before it widens.
	// Holding through a deeper loss is deliberate: later days may recover.
	gap := costGapPercent(avgCost, q.Price)
	if gap <= sellWithinPercent && gap > 0 && !r.trend.TrendingUp() {
		r.book.Close(r.symbol, in.Shares, q.Price, in.Date)
		return "S1", true
	}

	// Case S3: plateau after a rise. The trend has been up, the position
	// still barely underwater, and projecting today's price into the
	// window would flatten the average. Sell before it rolls over.
	if r.trend.TrendingUp() {
		if gap <= sellWithinPercent && gap > 0 {
			if r.trend.Average() >= r.trend.ProjectWithQuote(q) {
				if in.DayIndex == -7 || in.DayIndex == -6 || in.DayIndex == -5 {
					r.book.Close(r.symbol, in.Shares, q.Price, in.Date)
					return "S3", true
				}
			}
		}
	}

	return "", false
}
