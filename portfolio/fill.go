package portfolio

import (
	"fmt"
	"time"
)

// Side is the direction of a fill or of an open position.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

func (s Side) Valid() bool { return s == Buy || s == Sell }

// Sign returns +1 for BUY and -1 for SELL.
func (s Side) Sign() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Fill is a single execution event received from upstream. Fills are
// immutable: the ledger consumes them but never changes them.
type Fill struct {
	ID     string // assigned by the ledger when empty
	Symbol string
	Side   Side
	Qty    float64
	Price  float64
	Fee    float64 // quote currency, charged exactly once
	Time   time.Time
}

// Notional returns the quote-currency value of the fill.
func (f Fill) Notional() float64 { return f.Qty * f.Price }

func (f Fill) validate() error {
	if f.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidFill)
	}
	if !f.Side.Valid() {
		return fmt.Errorf("%w: side %q (want BUY or SELL)", ErrInvalidFill, f.Side)
	}
	if f.Qty <= 0 {
		return fmt.Errorf("%w: qty %v must be positive", ErrInvalidFill, f.Qty)
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: price %v must be positive", ErrInvalidFill, f.Price)
	}
	if f.Fee < 0 {
		return fmt.Errorf("%w: fee %v must not be negative", ErrInvalidFill, f.Fee)
	}
	return nil
}
