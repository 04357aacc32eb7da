// Package strategy holds the four trading rules the session engine
// dispatches: long entry and short cover on the post-event days, long
// exit and short entry on the run-up days. Each rule owns its ledger
// action; Evaluate both decides and executes.
package strategy

import "divcap-lab/internal/domain"

// Rule evaluates one tick and may act on the ledger.
type Rule interface {
	// Evaluate inspects the tick and executes at most one ledger action.
	// Returns the reason code of the action taken and whether one fired.
	Evaluate(in *TickInput) (reason string, fired bool)

	// Name returns the rule's name for transcripts.
	Name() string
}

// TickInput is the per-tick context handed to a rule.
type TickInput struct {
	Quote     *domain.Quote
	DayIndex  int
	Date      string // yyyy-MM-dd
	Clock     string // HH:mm:ss
	CloseTime string // session close for the date
	Shares    int    // signed order size: positive long, negative short
}
