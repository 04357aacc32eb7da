package stats

import "divcap-lab/internal/domain"

// trendWindow bounds the end-of-day history the trend signal looks at.
const trendWindow = 4

// Trend keeps the last few end-of-day quotes, newest first, and derives a
// rolling directional signal from day-over-day midpoint deltas. None of its
// operations fail; with insufficient history they degrade to 0/false.
type Trend struct {
	quotes []*domain.Quote // index 0 is the most recent day
}

// NewTrend creates an empty trend accumulator.
func NewTrend() *Trend {
	return &Trend{}
}

// Push front-inserts the day's final quote. It must be the last quote of
// the day so its high/low cover the whole session. Pushing beyond the
// window evicts the oldest entry.
func (t *Trend) Push(q *domain.Quote) {
	t.quotes = append([]*domain.Quote{q}, t.quotes...)
	if len(t.quotes) > trendWindow {
		t.quotes = t.quotes[:trendWindow]
	}
}

// Average returns the mean of consecutive day-midpoint deltas across the
// stored window, newest pair first. 0 when fewer than two days are stored.
func (t *Trend) Average() float64 {
	if len(t.quotes) <= 1 {
		return 0
	}
	sum := 0.0
	for i := 0; i+1 < len(t.quotes); i++ {
		sum += t.quotes[i].Midpoint() - t.quotes[i+1].Midpoint()
	}
	return sum / float64(len(t.quotes)-1)
}

// TrendingUp reports whether the average day-over-day gain is strictly
// positive.
func (t *Trend) TrendingUp() bool {
	return t.Average() > 0
}

// ProjectWithQuote computes the average as if the oldest day were evicted
// and q were pushed to the front, without mutating the stored window. The
// hypothetical newest day contributes its live price, not a high/low
// midpoint, so the projection reflects the price right now. Answers "is the
// trend still intact mid-day".
func (t *Trend) ProjectWithQuote(q *domain.Quote) float64 {
	if len(t.quotes) <= 1 {
		return 0
	}

	temp := make([]*domain.Quote, 0, len(t.quotes))
	temp = append(temp, q)
	temp = append(temp, t.quotes[:len(t.quotes)-1]...)

	sum := 0.0
	for i := 0; i+1 < len(temp); i++ {
		today := temp[i].Midpoint()
		if i == 0 {
			today = temp[i].Price
		}
		sum += today - temp[i+1].Midpoint()
	}
	return sum / float64(len(temp)-1)
}

// PriorMidpoint returns the newest stored day's high/low midpoint, 0 when
// no history exists.
func (t *Trend) PriorMidpoint() float64 {
	if len(t.quotes) == 0 {
		return 0
	}
	return t.quotes[0].Midpoint()
}

// GainLossHistory returns the consecutive midpoint deltas used by Average,
// newest pair first. Empty with fewer than two stored days. Feeds the
// end-of-day diagnostic log.
func (t *Trend) GainLossHistory() []float64 {
	if len(t.quotes) <= 1 {
		return nil
	}
	deltas := make([]float64, 0, len(t.quotes)-1)
	for i := 0; i+1 < len(t.quotes); i++ {
		deltas = append(deltas, t.quotes[i].Midpoint()-t.quotes[i+1].Midpoint())
	}
	return deltas
}

// Size returns the number of stored days.
func (t *Trend) Size() int {
	return len(t.quotes)
}
