package strategy

import "divcap-lab/internal/calendar"

// sellWithinPercent is the barely-profitable band shared by the early
// bail-out rules: tuned against the worst observed buy/sell gap in the
// 2022-08-10 to 2022-09-15 period, rounded up to the next ten-thousandth.
// Used as an upper bound on the cost-to-price gap.
const sellWithinPercent = 0.0113

// spreadPercent returns the session's high-low spread as a percentage of
// the low. 0 when the low is zero, so a blank session can never pass a
// spread gate.
func spreadPercent(high, low float64) float64 {
	if low == 0 {
		return 0
	}
	return (high - low) / low * 100.0
}

// costGapPercent returns the fractional gap from cost basis down to the
// current price, (avgCost - price) / avgCost. 0 when no cost basis
// exists, which keeps the strictly-positive band checks from firing.
func costGapPercent(avgCost, price float64) float64 {
	if avgCost == 0 {
		return 0
	}
	return (avgCost - price) / avgCost
}

// gainPercent returns the percentage gain from cost basis to price.
// 0 when no cost basis exists.
func gainPercent(avgCost, price float64) float64 {
	if avgCost == 0 {
		return 0
	}
	return (price - avgCost) / avgCost * 100
}

// hlx3 reports a three-candle contraction: highs strictly descending
// oldest to newest, and lows likewise.
func hlx3(h1, h2, h3, l1, l2, l3 float64) bool {
	if h1 > h2 && h1 > h3 && h2 > h3 {
		if l1 > l2 && l1 > l3 && l2 > l3 {
			return true
		}
	}
	return false
}

// inClosingWindow reports whether clock falls in [closeTime - minutes,
// closeTime). Malformed times never match.
func inClosingWindow(clock, closeTime string, minutes int) bool {
	windowStart, err := calendar.SubtractMinutes(closeTime, minutes)
	if err != nil {
		return false
	}
	now, err := calendar.ClockToSeconds(clock)
	if err != nil {
		return false
	}
	start, _ := calendar.ClockToSeconds(windowStart)
	end, _ := calendar.ClockToSeconds(closeTime)
	return now >= start && now < end
}
