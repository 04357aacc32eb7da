package domain

// StatVariable identifies which per-day scalar a stat record carries.
// A closed enum instead of the free-form strings the on-disk format uses.
type StatVariable string

// Stat variable constants.
const (
	StatHigh StatVariable = "high"
	StatLow  StatVariable = "low"
)

// Sentinel defaults for absent stat entries. Chosen so that "no observation
// yet" never looks like a real breakout on either side.
const (
	SentinelHigh = -999.99
	SentinelLow  = 999.99
)

// StatRecord is one (symbol, variable, day-index) → value entry of the
// daily statistics table, the unit the durable mirror stores.
type StatRecord struct {
	Symbol   string
	Variable StatVariable
	DayIndex int
	Value    float64
}
