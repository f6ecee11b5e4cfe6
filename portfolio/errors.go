package portfolio

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFill reports a fill that fails validation. Ledger state is
	// untouched when it is returned.
	ErrInvalidFill = errors.New("invalid fill")

	// ErrInvalidMark reports a mark update with a missing symbol or a
	// non-positive price.
	ErrInvalidMark = errors.New("invalid mark")
)

// ExcessQtyError reports a closing fill whose quantity exceeds the held
// position. The held quantity is closed in full; the excess is not flipped
// into a reverse position and must be re-submitted as its own fill.
type ExcessQtyError struct {
	Symbol    string
	Held      float64
	Requested float64
}

func (e *ExcessQtyError) Error() string {
	return fmt.Sprintf("fill qty %v exceeds held qty %v for %s (excess %v discarded)",
		e.Requested, e.Held, e.Symbol, e.Requested-e.Held)
}
