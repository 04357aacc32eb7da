// Package calendar loads the market-dates schedule that drives the
// simulation: which calendar dates to walk, each date's day index
// relative to the dividend event, and the session open/close times.
package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"divcap-lab/internal/domain"
)

// Calendar holds the loaded schedule, in file order.
type Calendar struct {
	days   []domain.MarketDay
	byDate map[string]domain.MarketDay
}

// Load reads a tab-separated market-dates file:
//
//	2023-08-28	99	OBSERVE
//	2023-09-08	0	BUY	09:30:00	16:00:00
//
// The open and close columns are optional; missing columns fall back to
// the 09:30:00 / 16:00:00 defaults. Blank lines and lines starting with
// '#' are skipped.
func Load(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open market dates file: %w", err)
	}
	defer f.Close()

	cal := &Calendar{byDate: make(map[string]domain.MarketDay)}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("market dates line %d: expected at least 3 fields, got %d", lineNo, len(fields))
		}

		dayIndex, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("market dates line %d: bad day index %q: %w", lineNo, fields[1], err)
		}

		day := domain.MarketDay{
			Date:      strings.TrimSpace(fields[0]),
			DayIndex:  dayIndex,
			Action:    strings.TrimSpace(fields[2]),
			OpenTime:  domain.DefaultOpenTime,
			CloseTime: domain.DefaultCloseTime,
		}
		if len(fields) > 3 && strings.TrimSpace(fields[3]) != "" {
			day.OpenTime = strings.TrimSpace(fields[3])
		}
		if len(fields) > 4 && strings.TrimSpace(fields[4]) != "" {
			day.CloseTime = strings.TrimSpace(fields[4])
		}

		cal.days = append(cal.days, day)
		cal.byDate[day.Date] = day
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read market dates file: %w", err)
	}

	return cal, nil
}

// Days returns the schedule in file order.
func (c *Calendar) Days() []domain.MarketDay {
	out := make([]domain.MarketDay, len(c.days))
	copy(out, c.days)
	return out
}

// Range returns the schedule restricted to dates in [from, to]
// inclusive. Empty bounds leave that side open.
func (c *Calendar) Range(from, to string) []domain.MarketDay {
	var out []domain.MarketDay
	for _, d := range c.days {
		if from != "" && d.Date < from {
			continue
		}
		if to != "" && d.Date > to {
			continue
		}
		out = append(out, d)
	}
	return out
}

// DayIndex returns the day index for a date, or ObserveDayIndex (99)
// when the date is not in the schedule.
func (c *Calendar) DayIndex(date string) int {
	if d, ok := c.byDate[date]; ok {
		return d.DayIndex
	}
	return domain.ObserveDayIndex
}

// OpenTime returns the session open for a date, defaulting to 09:30:00
// for unknown dates.
func (c *Calendar) OpenTime(date string) string {
	if d, ok := c.byDate[date]; ok {
		return d.OpenTime
	}
	return domain.DefaultOpenTime
}

// CloseTime returns the session close for a date, defaulting to
// 16:00:00 for unknown dates.
func (c *Calendar) CloseTime(date string) string {
	if d, ok := c.byDate[date]; ok {
		return d.CloseTime
	}
	return domain.DefaultCloseTime
}
