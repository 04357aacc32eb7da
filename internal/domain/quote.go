package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Quote errors.
var (
	ErrQuoteTooShort   = errors.New("quote line too short")
	ErrQuoteFieldCount = errors.New("quote line must have 14 tab-separated fields")
)

// quoteFieldCount is the number of tab-separated fields in a raw quote line.
const quoteFieldCount = 14

// Quote is a single intraday quote tick. Immutable once parsed; the core
// never mutates a Quote after it enters the pipeline.
type Quote struct {
	DT      string // "2023-08-28.09:30:24"
	Symbol  string
	Type    string // instrument type, e.g. "STK"
	Price   float64
	Source  string // feed identifier, e.g. "L7-1007"
	Volume  int64
	Bid     float64
	Ask     float64
	BidSize int
	AskSize int
	High    float64 // session high so far
	Low     float64 // session low so far
	Open    float64
}

// ParseQuote parses a raw tab-separated quote line:
//
//	2023-08-28.09:30:24  PDI  STK  18.28  L7-1007  436  18.27  18.3  26  16  18.28  18.27  18.28  18.27
//
// Field 12 is the running close and is ignored (it equals Price until the
// session ends). Malformed lines are rejected here so they never reach the
// ledger or the rules.
func ParseQuote(line string) (*Quote, error) {
	if len(line) < 50 {
		return nil, ErrQuoteTooShort
	}

	fields := strings.Split(line, "\t")
	if len(fields) != quoteFieldCount {
		return nil, fmt.Errorf("%w: got %d", ErrQuoteFieldCount, len(fields))
	}

	q := &Quote{
		DT:     fields[0],
		Symbol: fields[1],
		Type:   fields[2],
		Source: fields[4],
	}

	var err error
	if q.Price, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if q.Volume, err = strconv.ParseInt(fields[5], 10, 64); err != nil {
		return nil, fmt.Errorf("parse volume: %w", err)
	}
	if q.Bid, err = strconv.ParseFloat(fields[6], 64); err != nil {
		return nil, fmt.Errorf("parse bid: %w", err)
	}
	if q.Ask, err = strconv.ParseFloat(fields[7], 64); err != nil {
		return nil, fmt.Errorf("parse ask: %w", err)
	}
	if q.BidSize, err = strconv.Atoi(fields[8]); err != nil {
		return nil, fmt.Errorf("parse bid size: %w", err)
	}
	if q.AskSize, err = strconv.Atoi(fields[9]); err != nil {
		return nil, fmt.Errorf("parse ask size: %w", err)
	}
	if q.High, err = strconv.ParseFloat(fields[10], 64); err != nil {
		return nil, fmt.Errorf("parse high: %w", err)
	}
	if q.Low, err = strconv.ParseFloat(fields[11], 64); err != nil {
		return nil, fmt.Errorf("parse low: %w", err)
	}
	if q.Open, err = strconv.ParseFloat(fields[13], 64); err != nil {
		return nil, fmt.Errorf("parse open: %w", err)
	}

	return q, nil
}

// Date returns the calendar-date part of DT ("2023-08-28").
func (q *Quote) Date() string {
	if i := strings.IndexByte(q.DT, '.'); i >= 0 {
		return q.DT[:i]
	}
	return q.DT
}

// Clock returns the time-of-day part of DT ("09:30:24"), or "" when DT has
// no time component.
func (q *Quote) Clock() string {
	if i := strings.IndexByte(q.DT, '.'); i >= 0 {
		return q.DT[i+1:]
	}
	return ""
}

// Midpoint returns the session high/low midpoint used by the trend signal.
func (q *Quote) Midpoint() float64 {
	return (q.High + q.Low) / 2
}

func (q *Quote) String() string {
	return fmt.Sprintf("%s\t%s\t%.2f", q.DT, q.Symbol, q.Price)
}
