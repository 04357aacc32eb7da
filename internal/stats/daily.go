package stats

import (
	"context"
	"log"
	"sort"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

// statKey is the composite key of the daily statistics table. One flat map
// keyed by this struct replaces the symbol → variable → day nesting the
// on-disk format implies.
type statKey struct {
	symbol   string
	variable domain.StatVariable
	dayIndex int
}

// DailyStats accumulates per-symbol, per-day-index high/low extremes as
// quotes arrive. Every mutation is synchronously mirrored to durable
// storage; on mirror failure the in-memory table stays authoritative and a
// warning is logged. Single-writer; not safe for concurrent use.
type DailyStats struct {
	data   map[statKey]float64
	mirror storage.StatMirror
	logger *log.Logger
}

// NewDailyStats creates an empty table backed by the given mirror.
// A nil logger falls back to the process default.
func NewDailyStats(mirror storage.StatMirror, logger *log.Logger) *DailyStats {
	if logger == nil {
		logger = log.Default()
	}
	return &DailyStats{
		data:   make(map[statKey]float64),
		mirror: mirror,
		logger: logger,
	}
}

// Get returns the stored scalar, or the sentinel default when absent:
// −999.99 for high, 999.99 for low. Absence is never an error.
func (s *DailyStats) Get(symbol string, variable domain.StatVariable, dayIndex int) float64 {
	if v, ok := s.data[statKey{symbol, variable, dayIndex}]; ok {
		return v
	}
	switch variable {
	case domain.StatHigh:
		return domain.SentinelHigh
	case domain.StatLow:
		return domain.SentinelLow
	}
	return 0
}

// Set stores a value and mirrors the full table.
func (s *DailyStats) Set(ctx context.Context, symbol string, variable domain.StatVariable, dayIndex int, value float64) {
	s.data[statKey{symbol, variable, dayIndex}] = value
	s.save(ctx)
}

// RecordPrice folds one observed price into the day's extremes: the first
// observation for (symbol, dayIndex) seeds both high and low, later ones
// only ratchet high upward and low downward.
func (s *DailyStats) RecordPrice(ctx context.Context, symbol string, dayIndex int, price float64) {
	_, hasHigh := s.data[statKey{symbol, domain.StatHigh, dayIndex}]
	_, hasLow := s.data[statKey{symbol, domain.StatLow, dayIndex}]

	if !hasHigh || !hasLow {
		s.Set(ctx, symbol, domain.StatHigh, dayIndex, price)
		s.Set(ctx, symbol, domain.StatLow, dayIndex, price)
		return
	}

	if price > s.Get(symbol, domain.StatHigh, dayIndex) {
		s.Set(ctx, symbol, domain.StatHigh, dayIndex, price)
	}
	if price < s.Get(symbol, domain.StatLow, dayIndex) {
		s.Set(ctx, symbol, domain.StatLow, dayIndex, price)
	}
}

// Reload clears the table and replays it from the mirror. Last write per
// key wins. A mirror read failure leaves the table empty and logs a
// warning; it does not fail the run.
func (s *DailyStats) Reload(ctx context.Context) {
	s.data = make(map[statKey]float64)
	records, err := s.mirror.LoadAll(ctx)
	if err != nil {
		s.logger.Printf("[stats] WARN: reload from mirror failed, starting empty: %v", err)
		return
	}
	for _, r := range records {
		s.data[statKey{r.Symbol, r.Variable, r.DayIndex}] = r.Value
	}
}

// Reset clears the table and truncates the mirror. Run at the start of each
// capture cycle, on the first observe day seen.
func (s *DailyStats) Reset(ctx context.Context) {
	s.data = make(map[statKey]float64)
	s.save(ctx)
}

// Snapshot returns the table as records in deterministic order
// (symbol, variable, day index).
func (s *DailyStats) Snapshot() []domain.StatRecord {
	records := make([]domain.StatRecord, 0, len(s.data))
	for k, v := range s.data {
		records = append(records, domain.StatRecord{
			Symbol:   k.symbol,
			Variable: k.variable,
			DayIndex: k.dayIndex,
			Value:    v,
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		return a.DayIndex < b.DayIndex
	})
	return records
}

// Len returns the number of stored entries.
func (s *DailyStats) Len() int {
	return len(s.data)
}

func (s *DailyStats) save(ctx context.Context) {
	if err := s.mirror.OverwriteAll(ctx, s.Snapshot()); err != nil {
		s.logger.Printf("[stats] WARN: mirror write failed, in-memory state remains authoritative: %v", err)
	}
}
