// Package capture turns a raw market-data websocket feed into quote rows.
// Each feed message is a JSON object keyed by numeric field IDs plus the
// contract ID it belongs to; the subscriber maps contract IDs to symbols,
// tracks per-symbol session extremes, and appends one archive row per
// message.
package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"divcap-lab/internal/diag"
	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// Feed field IDs: last price, timestamp, bid size, bid, ask, ask size,
// volume, open.
var SubscribeFields = []string{"31", "83", "85", "84", "86", "88", "89", "293"}

// Capture session bounds. The stream starts a minute before the open and
// stops once the clock leaves the window.
const (
	StartClock = "09:29:00"
	EndClock   = "16:01:00"
)

const (
	captureChannel = "capture.log"
	errorChannel   = "error.log"
)

// ErrOutsideHours reports that a message's timestamp fell outside the
// capture window; the caller should stop the stream.
var ErrOutsideHours = errors.New("outside configured trading hours")

// epochFloorMs rejects obviously bogus feed timestamps (before 2000-01-01).
const epochFloorMs = 946684800000

// symbolState is the per-symbol session tracker: open is pinned by the
// first price seen, high/low ratchet, and the last good bid/ask survive
// sparse messages.
type symbolState struct {
	open    float64
	high    float64
	low     float64
	last    float64
	bid     float64
	ask     float64
	bidSize int
	askSize int
}

// Subscriber consumes feed messages for a set of contracts.
type Subscriber struct {
	symbols map[string]string // conid -> symbol
	archive storage.QuoteArchive
	sink    diag.Sink
	logger  *log.Logger
	now     func() time.Time

	state map[string]*symbolState
}

// NewSubscriber builds a subscriber over the conid-to-symbol map. A nil
// sink discards the capture and error logs.
func NewSubscriber(symbols map[string]string, archive storage.QuoteArchive, sink diag.Sink, logger *log.Logger) *Subscriber {
	if sink == nil {
		sink = diag.Discard
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Subscriber{
		symbols: symbols,
		archive: archive,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
		state:   make(map[string]*symbolState),
	}
}

// SubscribeRequests returns the raw subscription frames to send after the
// websocket opens, one per contract.
func (s *Subscriber) SubscribeRequests() []string {
	fields, _ := json.Marshal(map[string][]string{"fields": SubscribeFields})
	reqs := make([]string, 0, len(s.symbols))
	for conid := range s.symbols {
		reqs = append(reqs, fmt.Sprintf("smd+%s+%s", conid, fields))
	}
	return reqs
}

// HandleMessage processes one raw feed frame: logs it, resolves the
// symbol, updates the session tracker, and archives a quote row. Returns
// ErrOutsideHours when the message timestamp has left the capture window;
// malformed frames and archive failures are logged and swallowed.
func (s *Subscriber) HandleMessage(ctx context.Context, raw []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		s.fail(fmt.Sprintf("Error processing message: %v", err))
		return nil
	}

	ts := s.timestamp(fields["83"])
	s.sink.Append(captureChannel, ts.Format("2006-01-02 15:04:05"), string(raw))

	conidRaw, ok := fields["conid"]
	if !ok {
		return nil
	}
	conid := asString(conidRaw)
	symbol, ok := s.symbols[conid]
	if !ok {
		symbol = "UNKNOWN-" + conid
	}

	clock := ts.Format("15:04:05")
	if clock >= EndClock || clock < StartClock {
		return fmt.Errorf("%w: %s", ErrOutsideHours, clock)
	}

	q := s.buildQuote(symbol, fields, ts)
	if err := s.archive.InsertBulk(ctx, []*domain.Quote{q}); err != nil {
		s.fail(fmt.Sprintf("Error inserting into archive: %v", err))
	}
	return nil
}

// buildQuote resolves the message's sparse fields against the symbol's
// session state. A missing last price falls back to the bid/ask midpoint,
// then to the previous price; missing bid/ask/sizes reuse the last good
// values.
func (s *Subscriber) buildQuote(symbol string, fields map[string]any, ts time.Time) *domain.Quote {
	st, ok := s.state[symbol]
	if !ok {
		st = &symbolState{}
		s.state[symbol] = st
	}

	bid := extractFloat(fields, "84", 0)
	ask := extractFloat(fields, "86", 0)

	price, hasLast := tryExtractFloat(fields, "31")
	if !hasLast {
		if bid > 0 && ask > 0 {
			price = (bid + ask) / 2
		} else {
			price = st.last
		}
	}
	price = round4(price)

	if bid <= 0 {
		bid = st.bid
	}
	if ask <= 0 {
		ask = st.ask
	}
	bidSize := extractInt(fields, "85")
	if bidSize <= 0 {
		bidSize = st.bidSize
	}
	askSize := extractInt(fields, "88")
	if askSize <= 0 {
		askSize = st.askSize
	}
	volume := extractInt(fields, "89")

	if st.open == 0 && price != 0 {
		st.open = price
		st.high = price
		st.low = price
	}
	st.last = price
	st.bid = bid
	st.ask = ask
	st.bidSize = bidSize
	st.askSize = askSize
	if price > st.high {
		st.high = price
	}
	if price != 0 && price < st.low {
		st.low = price
	}

	return &domain.Quote{
		DT:      ts.Format("2006-01-02.15:04:05"),
		Symbol:  symbol,
		Type:    "STK",
		Price:   price,
		Source:  strconv.FormatInt(ts.Unix(), 10),
		Volume:  int64(volume),
		Bid:     round4(bid),
		Ask:     round4(ask),
		BidSize: bidSize,
		AskSize: askSize,
		High:    st.high,
		Low:     st.low,
		Open:    st.open,
	}
}

// timestamp reads the feed's epoch-milliseconds field, falling back to
// the wall clock for missing or pre-2000 values.
func (s *Subscriber) timestamp(v any) time.Time {
	ms, err := strconv.ParseInt(cleanNumber(v), 10, 64)
	if err != nil || ms < epochFloorMs {
		return s.now()
	}
	return time.UnixMilli(ms)
}

func (s *Subscriber) fail(msg string) {
	s.logger.Printf("[capture] %s", msg)
	s.sink.Append(errorChannel, s.now().Format("2006-01-02 15:04:05"), msg)
}

// cleanNumber renders a feed value as a parseable number string: commas
// stripped, the feed's "M" millions suffix expanded.
func cleanNumber(v any) string {
	str := asString(v)
	str = strings.ReplaceAll(str, ",", "")
	return strings.ReplaceAll(str, "M", "000000")
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func tryExtractFloat(fields map[string]any, key string) (float64, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleanNumber(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func extractFloat(fields map[string]any, key string, def float64) float64 {
	if f, ok := tryExtractFloat(fields, key); ok {
		return f
	}
	return def
}

func extractInt(fields map[string]any, key string) int {
	f, ok := tryExtractFloat(fields, key)
	if !ok {
		return 0
	}
	return int(f)
}

// round4 normalizes a price to the archive's four decimal places.
func round4(f float64) float64 {
	return decimal.NewFromFloat(f).Round(4).InexactFloat64()
}
