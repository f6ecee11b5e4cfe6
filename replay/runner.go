// Package replay drives a ledger and risk engine through a scripted
// scenario of fills and mark updates.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/bogdanmosica/trador/config"
	"github.com/bogdanmosica/trador/monitor"
	"github.com/bogdanmosica/trador/portfolio"
	"github.com/bogdanmosica/trador/risk"
)

// Result summarizes one run.
type Result struct {
	Steps      int // steps processed, including the one that halted
	Applied    int // fills accepted by the ledger
	Rejected   int // fills blocked pre-trade
	Marks      int
	Closed     int // realized closes, full or partial
	Excess     int // fills whose overflow quantity was discarded
	Halted     bool
	HaltReason string
}

// Runner serializes all ledger access for one scenario. The ledger
// itself does not lock; everything goes through here.
type Runner struct {
	ledger *portfolio.Ledger
	engine *risk.Engine
	log    *slog.Logger
	peak   float64
}

type Option func(*Runner)

func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

func NewRunner(ledger *portfolio.Ledger, engine *risk.Engine, opts ...Option) *Runner {
	r := &Runner{
		ledger: ledger,
		engine: engine,
		log:    slog.Default(),
		peak:   math.Inf(-1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes the scenario steps in order. A critical post-trade
// violation halts the run; the partial result is still returned. Steps
// should have passed config validation, so a fill or mark the ledger
// rejects outright aborts with an error.
func (r *Runner) Run(ctx context.Context, scenario config.ScenarioConfig) (Result, error) {
	var res Result

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Steps++

		switch {
		case step.Fill != nil:
			halted, err := r.runFill(i, *step.Fill, &res)
			if err != nil {
				return res, err
			}
			if halted {
				return res, nil
			}

		case step.Mark != nil:
			halted, err := r.runMark(i, *step.Mark, &res)
			if err != nil {
				return res, err
			}
			if halted {
				return res, nil
			}

		default:
			return res, fmt.Errorf("step %d: neither fill nor mark", i)
		}
	}

	return res, nil
}

func (r *Runner) runFill(i int, step config.FillStep, res *Result) (bool, error) {
	at, err := step.ParseTime()
	if err != nil {
		return false, fmt.Errorf("step %d: %w", i, err)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	fill := portfolio.Fill{
		Symbol: step.Symbol,
		Side:   portfolio.Side(step.Side),
		Qty:    step.Qty,
		Price:  step.Price,
		Fee:    step.Fee,
		Time:   at,
	}

	decision := r.engine.CheckPreTrade(fill, r.ledger.Snapshot())
	for _, v := range decision.Violations {
		r.log.Warn("pre-trade violation",
			"step", i, "symbol", fill.Symbol, "rule", v.Rule, "msg", v.Msg, "critical", v.Critical)
		monitor.RecordViolation(v.Rule, decision.Phase)
	}
	if !decision.Allowed {
		res.Rejected++
		monitor.RecordFillRejected(fill.Symbol)
		return false, nil
	}

	trade, closed, err := r.ledger.ApplyFill(fill)
	if err != nil {
		var excess *portfolio.ExcessQtyError
		if !errors.As(err, &excess) {
			return false, fmt.Errorf("step %d: apply fill: %w", i, err)
		}
		res.Excess++
		r.log.Warn("fill quantity exceeded held position",
			"step", i, "symbol", excess.Symbol, "held", excess.Held, "requested", excess.Requested)
	}

	res.Applied++
	monitor.RecordFill(fill.Symbol, string(fill.Side), fill.Notional())
	if closed {
		res.Closed++
		monitor.RecordTradeClosed(trade.Symbol)
		r.log.Info("trade closed",
			"step", i, "trade", trade.ID, "symbol", trade.Symbol,
			"qty", trade.Qty, "net_pnl", trade.NetPnL)
	}

	r.observe()
	return r.postTrade(i, res), nil
}

func (r *Runner) runMark(i int, step config.MarkStep, res *Result) (bool, error) {
	at, err := step.ParseTime()
	if err != nil {
		return false, fmt.Errorf("step %d: %w", i, err)
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if err := r.ledger.Mark(step.Symbol, step.Price, at); err != nil {
		return false, fmt.Errorf("step %d: mark %s: %w", i, step.Symbol, err)
	}
	res.Marks++

	r.observe()
	return r.postTrade(i, res), nil
}

// postTrade evaluates the post-trade rules and reports whether a
// critical violation halts the run.
func (r *Runner) postTrade(i int, res *Result) bool {
	decision := r.engine.CheckPostTrade(r.ledger.Snapshot())
	for _, v := range decision.Violations {
		r.log.Warn("post-trade violation",
			"step", i, "rule", v.Rule, "msg", v.Msg, "critical", v.Critical)
		monitor.RecordViolation(v.Rule, decision.Phase)
	}

	if err := decision.Err(); err != nil {
		res.Halted = true
		res.HaltReason = err.Error()
		r.log.Error("halting scenario", "step", i, "reason", res.HaltReason)
		return true
	}
	return false
}

// observe pushes the account gauges after each applied step.
func (r *Runner) observe() {
	eq := r.ledger.Equity()
	if eq > r.peak {
		r.peak = eq
	}
	dd := 0.0
	if r.peak > 0 && eq < r.peak {
		dd = (r.peak - eq) / r.peak * 100
	}

	monitor.ObserveAccount(eq, r.ledger.FreeBalance(), r.ledger.UnrealizedPnL(), len(r.ledger.Positions()))
	monitor.ObserveDrawdown(dd)
}
