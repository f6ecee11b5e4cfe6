package portfolio

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bogdanmosica/trador/journal"
	"github.com/bogdanmosica/trador/pkg/id"
)

// Ledger owns the account state for one trading account: free balance, open
// positions, realized trade history and the equity curve.
//
// The ledger does no locking. Exactly one goroutine applies fills and marks;
// callers that fan in events from several sources must serialize in front of
// it, the way the replay runner does.
type Ledger struct {
	free    float64
	initial float64
	equity  float64
	unreal  float64
	now     time.Time // time of the latest applied event

	positions map[string]*Position
	marks     map[string]float64

	history []Trade
	curve   []EquityPoint

	journal journal.Journal
	log     *slog.Logger
}

type Option func(*Ledger)

// WithJournal mirrors closed trades and equity points into j. Journal errors
// are logged and dropped; the in-memory state is authoritative.
func WithJournal(j journal.Journal) Option {
	return func(l *Ledger) { l.journal = j }
}

func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

func NewLedger(initialEquity float64, opts ...Option) *Ledger {
	l := &Ledger{
		free:      initialEquity,
		initial:   initialEquity,
		equity:    initialEquity,
		positions: make(map[string]*Position),
		marks:     make(map[string]float64),
		journal:   journal.Nop{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ApplyFill applies one execution to the ledger and appends one equity
// point. When the fill closes part or all of a position it returns the
// realized Trade and closed=true; opening and accumulating fills return a
// zero Trade and closed=false.
//
// A closing fill larger than the held quantity closes the position in full
// and returns the Trade together with an *ExcessQtyError naming the
// discarded remainder. The excess is never flipped into a reverse position.
func (l *Ledger) ApplyFill(f Fill) (Trade, bool, error) {
	if err := f.validate(); err != nil {
		return Trade{}, false, err
	}
	if f.Time.IsZero() {
		f.Time = time.Now().UTC()
	}
	if f.ID == "" {
		f.ID = id.FromTime(f.Time)
	}

	// A fill is also the freshest price we have for the symbol.
	l.marks[f.Symbol] = f.Price

	var (
		tr     Trade
		closed bool
		excess *ExcessQtyError
	)

	pos := l.positions[f.Symbol]
	switch {
	case pos == nil:
		l.positions[f.Symbol] = &Position{
			Symbol:        f.Symbol,
			Side:          f.Side,
			Qty:           f.Qty,
			AvgEntryPrice: f.Price,
			Opened:        f.Time,
			LastUpdate:    f.Time,
		}
		l.free -= f.Fee

	case pos.Side == f.Side:
		total := pos.Qty + f.Qty
		pos.AvgEntryPrice = (pos.Qty*pos.AvgEntryPrice + f.Qty*f.Price) / total
		pos.Qty = total
		pos.LastUpdate = f.Time
		l.free -= f.Fee

	default:
		qty := f.Qty
		if qty > pos.Qty {
			excess = &ExcessQtyError{Symbol: f.Symbol, Held: pos.Qty, Requested: f.Qty}
			qty = pos.Qty
		}
		tr = l.close(pos, f, qty)
		closed = true
	}

	if f.Time.After(l.now) {
		l.now = f.Time
	}
	l.revalue()
	l.appendEquity(f.Time)

	if l.free < 0 {
		l.log.Warn("free balance below zero", "free", l.free, "fill_id", f.ID, "symbol", f.Symbol)
	}

	if excess != nil {
		return tr, closed, excess
	}
	return tr, closed, nil
}

// close realizes P&L on qty units of pos against the closing fill f. The
// fill's fee is charged here, once, against the proceeds.
func (l *Ledger) close(pos *Position, f Fill, qty float64) Trade {
	gross := (f.Price - pos.AvgEntryPrice) * qty
	if pos.Side == Sell {
		gross = -gross
	}

	tr := Trade{
		ID:         f.ID,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Qty:        qty,
		EntryPrice: pos.AvgEntryPrice,
		ExitPrice:  f.Price,
		EntryTime:  pos.Opened,
		ExitTime:   f.Time,
		GrossPnL:   gross,
		Fee:        f.Fee,
		NetPnL:     gross - f.Fee,
	}

	l.free += gross - f.Fee

	if qty == pos.Qty {
		delete(l.positions, pos.Symbol)
	} else {
		pos.Qty -= qty
		pos.LastUpdate = f.Time
	}

	l.history = append(l.history, tr)
	if err := l.journal.RecordTrade(tr.Record()); err != nil {
		l.log.Warn("journal trade", "trade_id", tr.ID, "err", err)
	}
	return tr
}

// Mark updates the mark price for one symbol and revalues the account. An
// equity point is appended only when a held position changed value; marks
// for symbols with no open position are remembered for later fills but do
// not touch the curve.
func (l *Ledger) Mark(symbol string, price float64, at time.Time) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidMark)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price %v must be positive", ErrInvalidMark, price)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	prev, had := l.marks[symbol]
	l.marks[symbol] = price

	pos, held := l.positions[symbol]
	if !held {
		return nil
	}
	if had && prev == price {
		return nil
	}

	pos.LastUpdate = at
	if at.After(l.now) {
		l.now = at
	}
	l.revalue()
	l.appendEquity(at)
	return nil
}

// MarkAll applies a batch of mark updates. Symbols are processed in sorted
// order so runs are reproducible; the first invalid mark aborts the batch.
func (l *Ledger) MarkAll(prices map[string]float64, at time.Time) error {
	symbols := make([]string, 0, len(prices))
	for sym := range prices {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		if err := l.Mark(sym, prices[sym], at); err != nil {
			return err
		}
	}
	return nil
}

// CanAfford reports whether the free balance covers the fill's notional
// plus fee. Fills that shrink or close an existing position are always
// affordable: they release funds rather than consume them.
func (l *Ledger) CanAfford(f Fill) bool {
	if pos, ok := l.positions[f.Symbol]; ok && pos.Side != f.Side {
		return true
	}
	return f.Notional()+f.Fee <= l.free
}

func (l *Ledger) revalue() {
	var unreal float64
	for sym, pos := range l.positions {
		mark, ok := l.marks[sym]
		if !ok {
			mark = pos.AvgEntryPrice
		}
		unreal += pos.UnrealizedPnL(mark)
	}
	l.unreal = unreal
	l.equity = l.free + unreal
}

// appendEquity pushes one point onto the curve. The first call seeds the
// curve with the starting equity at the same timestamp, so the curve always
// opens at the account's initial state. Timestamps are clamped so the curve
// stays non-decreasing even when events arrive with skewed clocks.
func (l *Ledger) appendEquity(at time.Time) {
	if len(l.curve) == 0 {
		seed := EquityPoint{
			Time:        at,
			Equity:      l.initial,
			FreeBalance: l.initial,
		}
		l.curve = append(l.curve, seed)
		if err := l.journal.RecordEquity(seed.Record()); err != nil {
			l.log.Warn("journal equity", "time", seed.Time, "err", err)
		}
	}

	if n := len(l.curve); at.Before(l.curve[n-1].Time) {
		at = l.curve[n-1].Time
	}

	pt := EquityPoint{
		Time:          at,
		Equity:        l.equity,
		FreeBalance:   l.free,
		UnrealizedPnL: l.unreal,
	}
	l.curve = append(l.curve, pt)

	if err := l.journal.RecordEquity(pt.Record()); err != nil {
		l.log.Warn("journal equity", "time", pt.Time, "err", err)
	}
}

// Snapshot returns a read-only copy of the current state for rule
// evaluation and reporting. Mutating the snapshot has no effect on the
// ledger.
func (l *Ledger) Snapshot() Snapshot {
	positions := make(map[string]Position, len(l.positions))
	for sym, pos := range l.positions {
		positions[sym] = *pos
	}
	return Snapshot{
		Time:          l.now,
		FreeBalance:   l.free,
		Equity:        l.equity,
		UnrealizedPnL: l.unreal,
		InitialEquity: l.initial,
		Positions:     positions,
	}
}

func (l *Ledger) FreeBalance() float64   { return l.free }
func (l *Ledger) Equity() float64        { return l.equity }
func (l *Ledger) UnrealizedPnL() float64 { return l.unreal }
func (l *Ledger) InitialEquity() float64 { return l.initial }

// Position returns a copy of the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions keyed by symbol.
func (l *Ledger) Positions() map[string]Position {
	out := make(map[string]Position, len(l.positions))
	for sym, pos := range l.positions {
		out[sym] = *pos
	}
	return out
}

// TradeHistory returns a copy of the realized trades in close order.
func (l *Ledger) TradeHistory() []Trade {
	out := make([]Trade, len(l.history))
	copy(out, l.history)
	return out
}

// EquityCurve returns a copy of the equity curve in append order.
func (l *Ledger) EquityCurve() []EquityPoint {
	out := make([]EquityPoint, len(l.curve))
	copy(out, l.curve)
	return out
}

// Snapshot is a read-only view of ledger state handed to risk rules and
// reporting.
type Snapshot struct {
	Time          time.Time
	FreeBalance   float64
	Equity        float64
	UnrealizedPnL float64
	InitialEquity float64
	Positions     map[string]Position
}
