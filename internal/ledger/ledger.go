package ledger

// Dividend compensation applied when covering a short over an ex-dividend
// date: the short seller owes the distribution. Hardcoded to the one symbol
// and side the simulation trades; a per-symbol schedule would replace these
// if the system ever went multi-instrument.
const (
	dividendSymbol   = "PDI"
	dividendPerShare = 0.2205
)

// Ledger owns every lot opened during a run, for any number of symbols,
// plus the synthetic closures produced by partial closes. Lots are retained
// after closing for reporting. Single-writer; not safe for concurrent use.
type Ledger struct {
	lots         []*Position
	synthetics   []*Position
	recentProfit float64
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Open appends a new open lot. Opening zero shares is a no-op.
func (l *Ledger) Open(symbol string, shares int, avgCost float64, date string) {
	if shares == 0 {
		return
	}
	l.lots = append(l.lots, newPosition(symbol, shares, avgCost, date))
}

// Close closes up to |sharesToClose| shares of symbol whose direction
// matches the sign of sharesToClose, scanning lots in insertion order.
// A lot smaller than the remainder closes fully; a larger lot is reduced
// and the closed slice becomes a synthetic closure carrying the same cost
// basis. Closing more shares than exist open is a no-op for the excess.
//
// Returns whether any matching open lot was visited. Note this flag is set
// for every sign-matching open lot seen, not only on actual share movement;
// that matches long-standing behavior downstream reporting depends on.
func (l *Ledger) Close(symbol string, sharesToClose int, price float64, date string) bool {
	remaining := abs(sharesToClose)
	closeSign := signum(sharesToClose)
	closedAny := false
	var closedSet []*Position

	for _, pos := range l.lots {
		if remaining <= 0 {
			break
		}
		if pos.symbol != symbol || !pos.open || signum(pos.shares) != closeSign {
			continue
		}
		posShares := abs(pos.shares)
		if posShares <= remaining {
			// Lot verified open above; Close cannot fail here.
			_ = pos.Close(price, date)
			closedSet = append(closedSet, pos)
			remaining -= posShares
		} else {
			_ = pos.Reduce(remaining, price, date)
			slice := newPosition(pos.symbol, remaining*closeSign, pos.avgCost, pos.openDate)
			slice.synthetic = true
			_ = slice.Close(price, date)
			l.synthetics = append(l.synthetics, slice)
			closedSet = append(closedSet, slice)
			remaining = 0
		}
		closedAny = true
	}

	if symbol == dividendSymbol && sharesToClose < 0 {
		adjustment := dividendPerShare * float64(abs(sharesToClose))
		for _, pos := range closedSet {
			if adjustment <= 0 {
				break
			}
			pos.applyDividendAdjustment(adjustment)
			adjustment = 0
		}
	}

	sessionProfit := 0.0
	for _, pos := range closedSet {
		sessionProfit += pos.Profit()
	}
	l.recentProfit = sessionProfit

	return closedAny
}

// RecentSessionProfit returns the net profit realized by the most recent
// Close call. Overwritten per call, not cumulative.
func (l *Ledger) RecentSessionProfit() float64 {
	return l.recentProfit
}

// HasOpen reports whether any open lot exists for symbol.
func (l *Ledger) HasOpen(symbol string) bool {
	for _, pos := range l.lots {
		if pos.symbol == symbol && pos.open {
			return true
		}
	}
	return false
}

// NetShares returns the sum of open lots' signed shares for symbol.
func (l *Ledger) NetShares(symbol string) int {
	total := 0
	for _, pos := range l.lots {
		if pos.open && pos.symbol == symbol {
			total += pos.shares
		}
	}
	return total
}

// AverageCost returns the share-weighted average cost across open lots for
// symbol, weighting by absolute share count. A ledger holding both a long
// and a short lot of the same symbol blends their bases by size rather than
// netting. Returns 0 when no shares are open.
func (l *Ledger) AverageCost(symbol string) float64 {
	totalShares := 0
	totalCost := 0.0
	for _, pos := range l.lots {
		if pos.open && pos.symbol == symbol {
			totalShares += abs(pos.shares)
			totalCost += float64(abs(pos.shares)) * pos.avgCost
		}
	}
	if totalShares == 0 {
		return 0
	}
	return totalCost / float64(totalShares)
}

// ProfitForSymbol sums realized profit over closed lots and all synthetic
// closures for symbol. Profit accrued by partial reductions counts through
// the synthetic slice, not the still-open remainder, so nothing is double
// counted.
func (l *Ledger) ProfitForSymbol(symbol string) float64 {
	total := 0.0
	for _, pos := range l.lots {
		if pos.symbol == symbol && !pos.open {
			total += pos.Profit()
		}
	}
	for _, pos := range l.synthetics {
		if pos.symbol == symbol {
			total += pos.Profit()
		}
	}
	return total
}

// TotalRealizedProfit sums profit over all closed lots plus all synthetic
// closures, ledger-wide.
func (l *Ledger) TotalRealizedProfit() float64 {
	total := 0.0
	for _, pos := range l.lots {
		if !pos.open {
			total += pos.Profit()
		}
	}
	for _, pos := range l.synthetics {
		total += pos.Profit()
	}
	return total
}

// Positions returns every lot followed by every synthetic closure, in
// insertion order, for reporting.
func (l *Ledger) Positions() []*Position {
	all := make([]*Position, 0, len(l.lots)+len(l.synthetics))
	all = append(all, l.lots...)
	all = append(all, l.synthetics...)
	return all
}

// ClosedProfits returns the profit of each closed lot in insertion order,
// lots first then synthetic closures. Feeds the session results block.
func (l *Ledger) ClosedProfits() []float64 {
	var profits []float64
	for _, pos := range l.lots {
		if !pos.open {
			profits = append(profits, pos.Profit())
		}
	}
	for _, pos := range l.synthetics {
		profits = append(profits, pos.Profit())
	}
	return profits
}
