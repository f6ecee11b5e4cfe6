// Package report computes performance and risk statistics from a ledger's
// trade history and equity curve, and renders them as tables, CSV or
// spreadsheets.
package report

import (
	"math"
	"sort"

	"github.com/bogdanmosica/trador/portfolio"
)

// periodsPerYear annualizes per-sample return moments assuming one
// equity sample per trading day.
const periodsPerYear = 252

// SymbolExposure is the traded notional attributed to one symbol,
// counting both the entry and the exit side of each closed trade.
type SymbolExposure struct {
	Symbol   string
	Notional float64
	SharePct float64
}

// Summary holds the computed statistics for one run.
type Summary struct {
	InitialEquity  float64
	FinalEquity    float64
	TotalReturnPct float64

	Trades     int
	Wins       int
	Losses     int
	WinRatePct float64

	NetPnL       float64
	GrossProfit  float64
	GrossLoss    float64
	TotalFees    float64
	ProfitFactor float64

	AvgWin      float64
	AvgLoss     float64
	Expectancy  float64
	LargestWin  float64
	LargestLoss float64

	MaxDrawdownPct float64
	Sharpe         float64
	Sortino        float64
	Calmar         float64

	Exposure   []SymbolExposure
	Herfindahl float64
}

// Compute derives a Summary from closed trades and the equity curve.
// Wins and losses classify on net P&L, matching the journal aggregates,
// so a gross winner eaten by fees counts as a loss.
func Compute(initialEquity float64, trades []portfolio.Trade, curve []portfolio.EquityPoint) Summary {
	s := Summary{
		InitialEquity: initialEquity,
		FinalEquity:   initialEquity,
	}

	for _, t := range trades {
		s.Trades++
		s.NetPnL += t.NetPnL
		s.TotalFees += t.Fee
		if t.NetPnL > 0 {
			s.Wins++
			s.GrossProfit += t.NetPnL
			if t.NetPnL > s.LargestWin {
				s.LargestWin = t.NetPnL
			}
		} else {
			s.Losses++
			s.GrossLoss += -t.NetPnL
			if t.NetPnL < s.LargestLoss {
				s.LargestLoss = t.NetPnL
			}
		}
	}

	if s.Trades > 0 {
		s.WinRatePct = float64(s.Wins) / float64(s.Trades) * 100
	}
	if s.Wins > 0 {
		s.AvgWin = s.GrossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = s.GrossLoss / float64(s.Losses)
	}
	s.ProfitFactor = profitFactor(s.GrossProfit, s.GrossLoss)
	if s.Trades > 0 {
		winRate := float64(s.Wins) / float64(s.Trades)
		s.Expectancy = winRate*s.AvgWin - (1-winRate)*s.AvgLoss
	}

	if len(curve) > 0 {
		s.FinalEquity = curve[len(curve)-1].Equity
	}
	if initialEquity > 0 {
		s.TotalReturnPct = (s.FinalEquity - initialEquity) / initialEquity * 100
	}

	maxDD := maxDrawdown(curve)
	s.MaxDrawdownPct = maxDD * 100

	rets := periodReturns(curve)
	s.Sharpe = sharpe(rets)
	s.Sortino = sortino(rets)
	s.Calmar = calmar(curve, maxDD)

	s.Exposure, s.Herfindahl = exposure(trades)

	return s
}

// profitFactor is gross profit over gross loss. A run with profits and
// no losses is reported as +Inf rather than an arbitrary cap.
func profitFactor(profit, loss float64) float64 {
	if loss == 0 {
		if profit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return profit / loss
}

// maxDrawdown walks the curve against its running peak and returns the
// deepest decline as a fraction of that peak.
func maxDrawdown(curve []portfolio.EquityPoint) float64 {
	peak := math.Inf(-1)
	maxDD := 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// periodReturns converts the equity curve into per-sample fractional
// returns. Samples after a non-positive equity are skipped rather than
// dividing by it.
func periodReturns(curve []portfolio.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			continue
		}
		rets = append(rets, (curve[i].Equity-prev)/prev)
	}
	return rets
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	variance := 0.0
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

// sharpe annualizes mean return over volatility with a zero risk-free
// rate. Zero when volatility vanishes.
func sharpe(rets []float64) float64 {
	sd := stdDev(rets)
	if sd < 1e-12 {
		return 0
	}
	return mean(rets) / sd * math.Sqrt(periodsPerYear)
}

// sortino is sharpe with only downside deviation in the denominator.
// All-positive returns yield +Inf.
func sortino(rets []float64) float64 {
	if len(rets) == 0 {
		return 0
	}
	downside := 0.0
	n := 0
	for _, r := range rets {
		if r < 0 {
			downside += r * r
			n++
		}
	}
	if n == 0 || downside == 0 {
		return math.Inf(1)
	}
	sd := math.Sqrt(downside / float64(n))
	return mean(rets) / sd * math.Sqrt(periodsPerYear)
}

// calmar is compound annual growth over max drawdown. It needs a curve
// with real duration; shorter runs report 0, and a run that never drew
// down reports +Inf.
func calmar(curve []portfolio.EquityPoint, maxDD float64) float64 {
	if len(curve) < 2 {
		return 0
	}
	first, last := curve[0], curve[len(curve)-1]
	years := last.Time.Sub(first.Time).Hours() / (24 * 365.25)
	if years <= 0 || first.Equity <= 0 {
		return 0
	}
	cagr := math.Pow(last.Equity/first.Equity, 1/years) - 1
	if maxDD == 0 {
		if cagr > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return cagr / maxDD
}

// exposure attributes traded notional to each symbol, entry and exit
// legs both counted, and reports shares plus the Herfindahl index of
// the resulting weights.
func exposure(trades []portfolio.Trade) ([]SymbolExposure, float64) {
	if len(trades) == 0 {
		return nil, 0
	}

	bySymbol := make(map[string]float64)
	total := 0.0
	for _, t := range trades {
		notional := t.EntryPrice*t.Qty + t.ExitPrice*t.Qty
		bySymbol[t.Symbol] += notional
		total += notional
	}
	if total <= 0 {
		return nil, 0
	}

	out := make([]SymbolExposure, 0, len(bySymbol))
	hhi := 0.0
	for sym, notional := range bySymbol {
		share := notional / total
		hhi += share * share
		out = append(out, SymbolExposure{
			Symbol:   sym,
			Notional: notional,
			SharePct: share * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SharePct != out[j].SharePct {
			return out[i].SharePct > out[j].SharePct
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, hhi
}
