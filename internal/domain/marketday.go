package domain

// Default session bounds used when a date is missing from the calendar.
const (
	DefaultOpenTime  = "09:30:00"
	DefaultCloseTime = "16:00:00"
)

// ObserveDayIndex is the sentinel day index for dates outside the active
// trading window of a capture cycle. Rules never fire on observe days.
const ObserveDayIndex = 99

// MarketDay is one calendar entry of the trading schedule: the signed
// distance from the anchor day plus that date's session bounds.
type MarketDay struct {
	Date      string // "2023-09-08"
	DayIndex  int    // negative = before anchor, 0 = anchor, positive = after
	Action    string // schedule annotation, e.g. "SELL", "BUY", "OBSERVE"
	OpenTime  string // "09:30:00"
	CloseTime string // "16:00:00"
}
