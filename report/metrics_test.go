package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bogdanmosica/trador/journal"
	"github.com/bogdanmosica/trador/portfolio"
)

func fixtureTrades() []portfolio.Trade {
	day := func(d int) time.Time {
		return time.Date(2024, 1, d, 12, 0, 0, 0, time.UTC)
	}
	return []portfolio.Trade{
		{ID: "T1", Symbol: "BTC-USD", Side: portfolio.Buy, Qty: 1, EntryPrice: 100, ExitPrice: 201,
			EntryTime: day(1), ExitTime: day(2), GrossPnL: 101, Fee: 1, NetPnL: 100},
		{ID: "T2", Symbol: "BTC-USD", Side: portfolio.Buy, Qty: 2, EntryPrice: 100, ExitPrice: 125.5,
			EntryTime: day(2), ExitTime: day(3), GrossPnL: 51, Fee: 1, NetPnL: 50},
		{ID: "T3", Symbol: "ETH-USD", Side: portfolio.Buy, Qty: 1, EntryPrice: 50, ExitPrice: 21,
			EntryTime: day(3), ExitTime: day(4), GrossPnL: -29, Fee: 1, NetPnL: -30},
		{ID: "T4", Symbol: "ETH-USD", Side: portfolio.Sell, Qty: 2, EntryPrice: 30, ExitPrice: 39,
			EntryTime: day(4), ExitTime: day(5), GrossPnL: -18, Fee: 2, NetPnL: -20},
	}
}

func fixtureCurve() []portfolio.EquityPoint {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []portfolio.EquityPoint{
		{Time: t0, Equity: 10000},
		{Time: t0.Add(1 * time.Hour), Equity: 10100},
		{Time: t0.Add(2 * time.Hour), Equity: 9900},
		// Exactly one year after t0 so CAGR equals total return.
		{Time: t0.Add(8766 * time.Hour), Equity: 10100},
	}
}

func TestComputeTradeStats(t *testing.T) {
	t.Parallel()

	s := Compute(10000, fixtureTrades(), fixtureCurve())

	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.InDelta(t, 50.0, s.WinRatePct, 1e-9)

	assert.InDelta(t, 100.0, s.NetPnL, 1e-9)
	assert.InDelta(t, 150.0, s.GrossProfit, 1e-9)
	assert.InDelta(t, 50.0, s.GrossLoss, 1e-9)
	assert.InDelta(t, 5.0, s.TotalFees, 1e-9)
	assert.InDelta(t, 3.0, s.ProfitFactor, 1e-9)

	assert.InDelta(t, 75.0, s.AvgWin, 1e-9)
	assert.InDelta(t, 25.0, s.AvgLoss, 1e-9)
	// 0.5*75 - 0.5*25
	assert.InDelta(t, 25.0, s.Expectancy, 1e-9)
	assert.InDelta(t, 100.0, s.LargestWin, 1e-9)
	assert.InDelta(t, -30.0, s.LargestLoss, 1e-9)
}

func TestComputeCurveStats(t *testing.T) {
	t.Parallel()

	s := Compute(10000, fixtureTrades(), fixtureCurve())

	assert.InDelta(t, 10100.0, s.FinalEquity, 1e-9)
	assert.InDelta(t, 1.0, s.TotalReturnPct, 1e-9)

	// Peak 10100, trough 9900: 200/10100.
	assert.InDelta(t, 1.980198, s.MaxDrawdownPct, 1e-4)

	// Per-sample returns 0.01, -0.019802, 0.020202 annualized by sqrt(252).
	assert.InDelta(t, 3.2424, s.Sharpe, 1e-2)
	assert.InDelta(t, 2.7791, s.Sortino, 1e-2)

	// One year span: CAGR 1% over a 1.9802% drawdown.
	assert.InDelta(t, 0.50500, s.Calmar, 1e-3)
}

func TestComputeExposure(t *testing.T) {
	t.Parallel()

	s := Compute(10000, fixtureTrades(), fixtureCurve())

	require.Len(t, s.Exposure, 2)

	// Entry plus exit legs: BTC 301+451=752, ETH 71+138=209.
	assert.Equal(t, "BTC-USD", s.Exposure[0].Symbol)
	assert.InDelta(t, 752.0, s.Exposure[0].Notional, 1e-9)
	assert.InDelta(t, 78.2518, s.Exposure[0].SharePct, 1e-3)

	assert.Equal(t, "ETH-USD", s.Exposure[1].Symbol)
	assert.InDelta(t, 209.0, s.Exposure[1].Notional, 1e-9)
	assert.InDelta(t, 21.7482, s.Exposure[1].SharePct, 1e-3)

	assert.InDelta(t, 0.65963, s.Herfindahl, 1e-3)
}

func TestComputeEmptyInputs(t *testing.T) {
	t.Parallel()

	s := Compute(10000, nil, nil)

	assert.Equal(t, 0, s.Trades)
	assert.Zero(t, s.WinRatePct)
	assert.Zero(t, s.ProfitFactor)
	assert.Zero(t, s.Expectancy)
	assert.InDelta(t, 10000.0, s.FinalEquity, 1e-9)
	assert.Zero(t, s.TotalReturnPct)
	assert.Zero(t, s.MaxDrawdownPct)
	assert.Zero(t, s.Sharpe)
	assert.Zero(t, s.Calmar)
	assert.Empty(t, s.Exposure)
}

func TestComputeAllWinners(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	trades := []portfolio.Trade{
		{ID: "T1", Symbol: "BTC-USD", Side: portfolio.Buy, Qty: 1, EntryPrice: 100, ExitPrice: 110,
			GrossPnL: 10, NetPnL: 10},
	}
	curve := []portfolio.EquityPoint{
		{Time: t0, Equity: 10000},
		{Time: t0.Add(24 * time.Hour), Equity: 10005},
		{Time: t0.Add(48 * time.Hour), Equity: 10010},
	}

	s := Compute(10000, trades, curve)

	assert.True(t, math.IsInf(s.ProfitFactor, 1), "profit factor should be +Inf with no losses")
	assert.True(t, math.IsInf(s.Sortino, 1), "sortino should be +Inf with no downside samples")
	assert.True(t, math.IsInf(s.Calmar, 1), "calmar should be +Inf with no drawdown")
	assert.Zero(t, s.MaxDrawdownPct)
}

func TestDrawdownTracksLatestPeak(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	curve := []portfolio.EquityPoint{
		{Time: t0, Equity: 100},
		{Time: t0.Add(1 * time.Hour), Equity: 80}, // 20% off first peak
		{Time: t0.Add(2 * time.Hour), Equity: 200},
		{Time: t0.Add(3 * time.Hour), Equity: 150}, // 25% off new peak
	}

	s := Compute(100, nil, curve)

	assert.InDelta(t, 25.0, s.MaxDrawdownPct, 1e-9)
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	trades := fixtureTrades()
	curve := fixtureCurve()

	recs := make([]journal.TradeRecord, len(trades))
	for i, tr := range trades {
		recs[i] = tr.Record()
	}
	points := make([]journal.EquityPoint, len(curve))
	for i, p := range curve {
		points[i] = p.Record()
	}

	assert.Equal(t, trades, TradesFromRecords(recs))
	assert.Equal(t, curve, CurveFromRecords(points))
}

func TestWriteSummaryRendersKeyMetrics(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteSummary(&buf, Compute(10000, fixtureTrades(), fixtureCurve()))

	out := buf.String()
	assert.Contains(t, out, "PORTFOLIO SUMMARY")
	assert.Contains(t, out, "Win Rate")
	assert.Contains(t, out, "50.00% (2/4)")
	assert.Contains(t, out, "Max Drawdown")
	assert.Contains(t, out, "Exposure BTC-USD")
}

func TestWriteSummaryCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteSummaryCSV(&buf, Compute(10000, fixtureTrades(), fixtureCurve()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "metric,value", lines[0])
	assert.Contains(t, buf.String(), "profit_factor,3.000000")
	assert.Contains(t, buf.String(), "exposure_pct:BTC-USD")
}

func TestWriteTradesRendersRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteTrades(&buf, fixtureTrades())

	out := buf.String()
	assert.Contains(t, out, "CLOSED TRADES")
	assert.Contains(t, out, "BTC-USD")
	assert.Contains(t, out, "ETH-USD")
	assert.Contains(t, out, "SELL")
}
