package portfolio

import (
	"time"

	"github.com/bogdanmosica/trador/journal"
)

// Trade is the immutable record of a full or partial close.
type Trade struct {
	ID         string
	Symbol     string
	Side       Side // direction of the position that was closed
	Qty        float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	GrossPnL   float64
	Fee        float64 // fee of the closing fill
	NetPnL     float64 // GrossPnL - Fee
}

// Record converts the trade to its journal representation.
func (t Trade) Record() journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:    t.ID,
		Symbol:     t.Symbol,
		Side:       string(t.Side),
		Qty:        t.Qty,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		EntryTime:  t.EntryTime,
		ExitTime:   t.ExitTime,
		GrossPnL:   t.GrossPnL,
		Fee:        t.Fee,
		NetPnL:     t.NetPnL,
	}
}

// EquityPoint is one sample of the account equity curve.
type EquityPoint struct {
	Time          time.Time
	Equity        float64
	FreeBalance   float64
	UnrealizedPnL float64
}

// Record converts the point to its journal representation.
func (p EquityPoint) Record() journal.EquityPoint {
	return journal.EquityPoint{
		Time:          p.Time,
		Equity:        p.Equity,
		FreeBalance:   p.FreeBalance,
		UnrealizedPnL: p.UnrealizedPnL,
	}
}
