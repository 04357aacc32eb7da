// Package session drives the simulation: it walks the market-date
// schedule, pulls quotes tick by tick, folds each price into the daily
// statistics, hands the tick to exactly one eligible trading rule, and
// pushes the day's final quote into the trend window. One engine runs
// one symbol over one date range.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"divcap-lab/internal/calendar"
	"divcap-lab/internal/config"
	"divcap-lab/internal/diag"
	"divcap-lab/internal/domain"
	"divcap-lab/internal/idhash"
	"divcap-lab/internal/ledger"
	"divcap-lab/internal/quotes"
	"divcap-lab/internal/stats"
	"divcap-lab/internal/storage"
	"divcap-lab/internal/strategy"
)

// sessionStartClock is where each day's tick walk begins, a few minutes
// before the open so the first real quote of the session is never missed.
const sessionStartClock = "09:25:00"

// DefaultShares is the order size used when the caller does not override it.
const DefaultShares = 1000

// Deps carries the engine's collaborators. Calendar, Source, Book, Daily
// and Trend are required; Sink, Fills and Logger are optional.
type Deps struct {
	Calendar *calendar.Calendar
	Source   quotes.Source
	Book     *ledger.Ledger
	Daily    *stats.DailyStats
	Trend    *stats.Trend
	Sink     diag.Sink       // nil discards diagnostics
	Fills    storage.FillLog // nil disables fill persistence
	Logger   *log.Logger     // nil falls back to the process default
}

// Engine sequences one simulation run. Single-writer; not safe for
// concurrent use.
type Engine struct {
	symbol    string
	numShares int
	tickDelay time.Duration

	cal    *calendar.Calendar
	source quotes.Source
	book   *ledger.Ledger
	daily  *stats.DailyStats
	trend  *stats.Trend
	sink   diag.Sink
	fills  storage.FillLog
	logger *log.Logger

	longEntry  strategy.Rule
	longExit   strategy.Rule
	shortEntry strategy.Rule
	shortCover strategy.Rule

	enableLongEntry  bool
	enableLongExit   bool
	enableShortEntry bool
	enableShortCover bool

	// statsCleared tracks whether the rolling statistics have already been
	// reset during the current observe stretch; it re-arms after day 4 so
	// each dividend cycle starts from a clean table.
	statsCleared bool

	persisted map[*ledger.Position]bool
}

// New builds an engine over the given collaborators. The four rules are
// constructed here so a missing tuning key fails the run up front, and the
// per-rule enable switches are read from the same settings file.
func New(symbol string, numShares int, deps Deps, cfg *config.Store) (*Engine, error) {
	if numShares <= 0 {
		numShares = DefaultShares
	}
	if deps.Sink == nil {
		deps.Sink = diag.Discard
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	longEntry, err := strategy.NewLongEntry(symbol, deps.Book, deps.Daily, deps.Sink, cfg)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	longExit, err := strategy.NewLongExit(symbol, deps.Book, deps.Trend, deps.Sink, cfg)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	e := &Engine{
		symbol:     symbol,
		numShares:  numShares,
		cal:        deps.Calendar,
		source:     deps.Source,
		book:       deps.Book,
		daily:      deps.Daily,
		trend:      deps.Trend,
		sink:       deps.Sink,
		fills:      deps.Fills,
		logger:     deps.Logger,
		longEntry:  longEntry,
		longExit:   longExit,
		shortEntry: strategy.NewShortEntry(symbol, deps.Book, deps.Trend, deps.Sink),
		shortCover: strategy.NewShortCover(symbol, deps.Book, deps.Daily, deps.Sink),

		enableLongEntry:  enabled(cfg, "ENABLE_LONG_ENTRY"),
		enableLongExit:   enabled(cfg, "ENABLE_LONG_EXIT"),
		enableShortEntry: enabled(cfg, "ENABLE_SHORT_ENTRY"),
		enableShortCover: enabled(cfg, "ENABLE_SHORT_COVER"),

		persisted: make(map[*ledger.Position]bool),
	}

	if raw := cfg.Get("LOOP_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("session: config key LOOP_DELAY_MS: bad int %q: %w", raw, err)
		}
		e.tickDelay = time.Duration(ms) * time.Millisecond
	}

	return e, nil
}

func enabled(cfg *config.Store, key string) bool {
	return strings.EqualFold(strings.TrimSpace(cfg.Get(key)), "YES")
}

// Run walks every scheduled market day in [startDate, endDate] inclusive;
// empty bounds leave that side open. The statistics table is cleared at
// the start of the run and again once per observe stretch. Returns only
// on context cancellation or a clock-arithmetic failure; quote-source
// trouble ends the day, not the run.
func (e *Engine) Run(ctx context.Context, startDate, endDate string) error {
	days := e.cal.Range(startDate, endDate)
	e.logger.Printf("[engine] %d day(s) over [%s to %s]", len(days), startDate, endDate)

	// Column headers for the two tick-diagnostic channels. The channel
	// names match what the strategy rules write to.
	headerTS := startDate + " " + sessionStartClock
	e.sink.Append("scarlet.txt", headerTS, "dayNum\tprice\tprofit\tpercent\tspread\thigh\tlow\t")
	e.sink.Append("green.txt", headerTS, "dayNum\tprice\tspreadPercent\tgap\tprevDayHigh\thigh\tlow\t")

	e.daily.Reset(ctx)
	e.daily.Reload(ctx)

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return err
		}
		dayIndex := e.cal.DayIndex(day.Date)
		if err := e.runDay(ctx, day, dayIndex); err != nil {
			return err
		}
		if dayIndex == 4 {
			// The cycle is over; arm the next observe-stretch reset.
			e.statsCleared = false
			e.logger.Printf("[engine] cycle complete on %s", day.Date)
		}
	}
	return nil
}

func (e *Engine) runDay(ctx context.Context, day domain.MarketDay, dayIndex int) error {
	if dayIndex < -7 || dayIndex > 4 {
		if !e.statsCleared {
			e.daily.Reset(ctx)
			e.statsCleared = true
			e.logger.Printf("[engine] %d rolling statistics cleared for the next cycle", dayIndex)
		}
	}

	// Re-sync with the mirror so a capture process writing the same file
	// is picked up between days.
	e.daily.Reload(ctx)

	clock := sessionStartClock
	e.logger.Printf("[engine] %2d [%s %s] %s shares: %d",
		dayIndex, day.Date, clock, e.symbol, e.book.NetShares(e.symbol))

	for {
		q, err := e.source.Next(ctx, e.symbol, day.Date, clock)
		if errors.Is(err, quotes.ErrEndOfDay) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.logger.Printf("[engine] WARN: quote fetch on %s at %s failed, ending day: %v", day.Date, clock, err)
			return nil
		}
		clock = q.Clock()

		if e.tickDelay > 0 {
			select {
			case <-time.After(e.tickDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		e.daily.RecordPrice(ctx, e.symbol, dayIndex, q.Price)
		e.dispatch(ctx, q, dayIndex, day, clock)

		tickSecs, err := calendar.ClockToSeconds(clock)
		if err != nil {
			return fmt.Errorf("session: quote timestamp %q on %s: %w", q.DT, day.Date, err)
		}
		closeSecs, err := calendar.ClockToSeconds(day.CloseTime)
		if err != nil {
			return fmt.Errorf("session: close time for %s: %w", day.Date, err)
		}
		hardCloseSecs, _ := calendar.ClockToSeconds(domain.DefaultCloseTime)

		if tickSecs >= closeSecs || tickSecs >= hardCloseSecs {
			e.logger.Printf("[engine] end of day - %s", day.Date)
			e.trend.Push(q)
			e.logTrend()
			return nil
		}

		clock = calendar.SecondsToClock(tickSecs + 1)
	}
}

// dispatch routes the tick to at most one rule, selected by day index and
// the current net position: entries trade a flat book, exits and covers
// unwind an existing one. Long rules work the post-event days 0..4 from a
// flat or long book; short rules mirror them on the run-up days -7..-1.
func (e *Engine) dispatch(ctx context.Context, q *domain.Quote, dayIndex int, day domain.MarketDay, clock string) {
	net := e.book.NetShares(e.symbol)
	in := &strategy.TickInput{
		Quote:     q,
		DayIndex:  dayIndex,
		Date:      day.Date,
		Clock:     clock,
		CloseTime: day.CloseTime,
	}

	switch {
	case e.enableLongEntry && dayIndex >= 0 && dayIndex <= 4 && net == 0:
		in.Shares = e.numShares
		if reason, fired := e.longEntry.Evaluate(in); fired {
			e.logger.Printf("[engine] (%3d) [%s %s] bought %4d shares of %s @%.2f long (%s)",
				dayIndex, day.Date, clock, e.numShares, e.symbol, q.Price, reason)
		}

	case e.enableLongExit && dayIndex >= -7 && dayIndex <= -1 && net > 0:
		in.Shares = e.numShares
		if reason, fired := e.longExit.Evaluate(in); fired {
			e.logger.Printf("[engine] (%3d) [%s %s] sold %4d shares of %s @%.2f long (%s)",
				dayIndex, day.Date, clock, e.numShares, e.symbol, q.Price, reason)
			e.logClose()
			e.persistFills(ctx, clock, reason)
		}

	case e.enableShortEntry && dayIndex >= -7 && dayIndex <= -1 && net == 0:
		in.Shares = -e.numShares
		if reason, fired := e.shortEntry.Evaluate(in); fired {
			e.logger.Printf("[engine] (%3d) [%s %s] sold %4d shares of %s @%.2f short (%s)",
				dayIndex, day.Date, clock, e.numShares, e.symbol, q.Price, reason)
		}

	case e.enableShortCover && dayIndex >= 0 && dayIndex <= 4 && net < 0:
		in.Shares = -e.numShares
		if reason, fired := e.shortCover.Evaluate(in); fired {
			e.logger.Printf("[engine] (%3d) [%s %s] covered %4d shares of %s @%.2f short (%s)",
				dayIndex, day.Date, clock, e.numShares, e.symbol, q.Price, reason)
			e.logClose()
			e.persistFills(ctx, clock, reason)
		}
	}
}

func (e *Engine) logClose() {
	e.logger.Printf("[engine] profit: %.2f\ttotal profit: %.2f\t%s shares: %d",
		e.book.RecentSessionProfit(), e.book.ProfitForSymbol(e.symbol),
		e.symbol, e.book.NetShares(e.symbol))
}

// persistFills writes every not-yet-archived closed lot to the fill log.
// Persistence failures are logged and skipped; the in-memory ledger stays
// authoritative for the run's reporting.
func (e *Engine) persistFills(ctx context.Context, clock, reason string) {
	if e.fills == nil {
		return
	}
	for _, pos := range e.book.Positions() {
		if pos.IsOpen() || pos.Symbol() != e.symbol || e.persisted[pos] {
			continue
		}
		e.persisted[pos] = true

		f := &domain.Fill{
			FillID:    idhash.ComputeFillID(pos.Symbol(), pos.CloseDate(), clock, pos.ClosePrice(), pos.ClosedShares()),
			Symbol:    pos.Symbol(),
			Shares:    pos.ClosedShares(),
			AvgCost:   pos.AvgCost(),
			Price:     pos.ClosePrice(),
			OpenDate:  pos.OpenDate(),
			CloseDate: pos.CloseDate(),
			Reason:    reason,
			Profit:    pos.Profit(),
			Synthetic: pos.Synthetic(),
		}
		if err := e.fills.Insert(ctx, f); err != nil {
			e.logger.Printf("[engine] WARN: fill log insert for %s failed: %v", f.FillID, err)
		}
	}
}

func (e *Engine) logTrend() {
	deltas := e.trend.GainLossHistory()
	if len(deltas) == 0 {
		e.logger.Printf("[engine] trend: not enough history yet")
		return
	}
	parts := make([]string, len(deltas))
	for i, d := range deltas {
		parts[i] = fmt.Sprintf("%.2f", d)
	}
	e.logger.Printf("[engine] trend deltas (newest first): %s, trending up: %t",
		strings.Join(parts, " "), e.trend.TrendingUp())
}

// Book exposes the ledger for reporting after a run.
func (e *Engine) Book() *ledger.Ledger { return e.book }

// Symbol returns the instrument the engine trades.
func (e *Engine) Symbol() string { return e.symbol }
