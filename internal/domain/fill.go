package domain

// Fill is the durable record of one closed lot (or closed synthetic slice),
// written to the fill log when a close request completes.
type Fill struct {
	FillID    string // deterministic hash, see idhash
	Symbol    string
	Shares    int     // signed size of the closed lot
	AvgCost   float64 // cost basis of the lot
	Price     float64 // close price
	OpenDate  string
	CloseDate string
	Reason    string  // rule reason code that triggered the close
	Profit    float64 // realized profit net of dividend adjustment
	Synthetic bool    // true when the record is a partial-close slice
}
