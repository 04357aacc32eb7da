package ledger

import (
	"errors"
	"fmt"
)

// ErrPositionClosed is returned when a close or reduce is attempted on a lot
// that has already been closed. This is a programming-contract violation,
// not a recoverable condition.
var ErrPositionClosed = errors.New("position is already closed")

// Position is one discrete lot of shares opened together. The sign of the
// share count encodes direction (positive long, negative short) and is
// stable for the lot's lifetime: a reduction never flips sign, it closes
// the lot first.
type Position struct {
	symbol       string
	open         bool
	shares       int
	closedShares int // signed total of shares realized by Close/Reduce
	avgCost      float64
	openDate     string
	closeDate    string
	closePrice   float64
	profit       float64
	partial      float64 // profit realized by the most recent reduction
	dividendAdj  float64
	synthetic    bool
}

func newPosition(symbol string, shares int, avgCost float64, openDate string) *Position {
	return &Position{
		symbol:   symbol,
		open:     true,
		shares:   shares,
		avgCost:  avgCost,
		openDate: openDate,
	}
}

// Close realizes profit over the lot's full remaining size and zeroes it.
// A second Close of a non-synthetic lot returns ErrPositionClosed.
func (p *Position) Close(price float64, date string) error {
	if !p.open && !p.synthetic {
		return ErrPositionClosed
	}
	p.closePrice = price
	p.closeDate = date
	p.profit += lotProfit(p.shares, p.avgCost, price)
	p.closedShares += p.shares
	p.open = false
	p.shares = 0
	return nil
}

// Reduce realizes profit over a slice of the lot, capped at the remaining
// size. The lot auto-closes when the reduction consumes it entirely.
func (p *Position) Reduce(shares int, price float64, date string) error {
	if !p.open {
		return ErrPositionClosed
	}
	sign := signum(p.shares)
	absReduce := min(abs(shares), abs(p.shares))
	realized := lotProfit(absReduce*sign, p.avgCost, price)
	p.partial = realized
	p.profit += realized
	p.closedShares += absReduce * sign
	p.shares -= absReduce * sign
	if p.shares == 0 {
		p.open = false
		p.closeDate = date
		p.closePrice = price
	}
	return nil
}

// lotProfit computes realized profit for a signed share count: longs gain
// when exit exceeds entry, shorts gain when entry exceeds exit.
func lotProfit(shares int, entry, exit float64) float64 {
	if shares > 0 {
		return (exit - entry) * float64(shares)
	}
	return (entry - exit) * float64(abs(shares))
}

func (p *Position) applyDividendAdjustment(adj float64) {
	p.dividendAdj += adj
}

// Profit returns cumulative realized profit net of dividend adjustment.
func (p *Position) Profit() float64 { return p.profit - p.dividendAdj }

// RawProfit returns cumulative realized profit before dividend adjustment.
func (p *Position) RawProfit() float64 { return p.profit }

// PartialProfit returns the profit of the most recent reduction, net of
// dividend adjustment.
func (p *Position) PartialProfit() float64 { return p.partial - p.dividendAdj }

func (p *Position) Symbol() string      { return p.symbol }
func (p *Position) IsOpen() bool        { return p.open }
func (p *Position) Shares() int         { return p.shares }
func (p *Position) AvgCost() float64    { return p.avgCost }
func (p *Position) OpenDate() string    { return p.openDate }
func (p *Position) CloseDate() string   { return p.closeDate }
func (p *Position) ClosePrice() float64 { return p.closePrice }
func (p *Position) Synthetic() bool     { return p.synthetic }

// ClosedShares returns the signed share count realized so far, which
// survives the lot's Close. Feeds the fill log.
func (p *Position) ClosedShares() int { return p.closedShares }

func (p *Position) String() string {
	return fmt.Sprintf("Symbol: %s | Shares: %d | Avg Cost: %.2f | Profit: %.2f | Open: %t",
		p.symbol, p.shares, p.avgCost, p.Profit(), p.open)
}

func signum(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
