package portfolio

import "time"

// Position is one open holding. The ledger keeps at most one position per
// symbol; a long and a short on the same symbol never coexist.
type Position struct {
	Symbol        string
	Side          Side
	Qty           float64 // always > 0 while the position exists
	AvgEntryPrice float64
	Opened        time.Time // time of the first fill
	LastUpdate    time.Time
}

// Notional returns the quote-currency exposure at the given mark.
func (p Position) Notional(mark float64) float64 { return p.Qty * mark }

// UnrealizedPnL values the position at the given mark. Short positions gain
// when the mark falls.
func (p Position) UnrealizedPnL(mark float64) float64 {
	pl := (mark - p.AvgEntryPrice) * p.Qty
	if p.Side == Sell {
		pl = -pl
	}
	return pl
}
