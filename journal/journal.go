// journal/journal.go
package journal

import "time"

// TradeRecord is one realized close (full or partial) as it lands in a sink.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Side       string
	Qty        float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	GrossPnL   float64
	Fee        float64
	NetPnL     float64
}

// EquityPoint is one sample of the account equity curve.
type EquityPoint struct {
	Time          time.Time
	Equity        float64
	FreeBalance   float64
	UnrealizedPnL float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityPoint) error
	Close() error
}

// Nop discards everything. The ledger falls back to it when no journal is
// attached.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error  { return nil }
func (Nop) RecordEquity(EquityPoint) error { return nil }
func (Nop) Close() error                   { return nil }

// Multi fans every record out to several sinks, stopping at the first error.
type Multi []Journal

func (m Multi) RecordTrade(t TradeRecord) error {
	for _, j := range m {
		if err := j.RecordTrade(t); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordEquity(e EquityPoint) error {
	for _, j := range m {
		if err := j.RecordEquity(e); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns the first error seen.
func (m Multi) Close() error {
	var first error
	for _, j := range m {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
