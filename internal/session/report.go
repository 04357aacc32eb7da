package session

import (
	"fmt"
	"io"
)

// WriteReport prints the run's closing summary: a transcript of every lot
// and synthetic closure, the symbol's total realized profit, and the
// paired-results block (two profit columns per line, spreadsheet-ready).
func (e *Engine) WriteReport(w io.Writer) {
	fmt.Fprintln(w, "Transaction(s)")
	for _, pos := range e.book.Positions() {
		fmt.Fprintln(w, pos)
	}
	fmt.Fprintf(w, "Total Profit: %.2f\n", e.book.ProfitForSymbol(e.symbol))
	fmt.Fprintln(w)
	writePairedResults(w, e.book.ClosedProfits())
}

// writePairedResults lays closed-lot profits out two per line. The first
// line is padded with a leading 0.00 so each subsequent line pairs an odd
// index with the even one after it, preserving the layout downstream
// spreadsheets were built around.
func writePairedResults(w io.Writer, profits []float64) {
	if len(profits) == 0 {
		return
	}
	fmt.Fprintf(w, "%.2f\t%.2f\n", 0.0, profits[0])
	for i := 1; i < len(profits); i += 2 {
		second := ""
		if i+1 < len(profits) {
			second = fmt.Sprintf("%.2f", profits[i+1])
		}
		fmt.Fprintf(w, "%.2f\t%s\n", profits[i], second)
	}
}
