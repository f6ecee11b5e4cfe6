package report

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bogdanmosica/trador/journal"
	"github.com/bogdanmosica/trador/portfolio"
)

// WriteSummary renders the summary as a two column table.
func WriteSummary(w io.Writer, s Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("PORTFOLIO SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Initial Equity", money(s.InitialEquity)},
		{"Final Equity", money(s.FinalEquity)},
		{"Total Return", pct(s.TotalReturnPct)},
		{"Net P&L", money(s.NetPnL)},
		{"Total Fees", money(s.TotalFees)},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Trades", s.Trades},
		{"Win Rate", fmt.Sprintf("%s (%d/%d)", pct(s.WinRatePct), s.Wins, s.Trades)},
		{"Profit Factor", ratio(s.ProfitFactor)},
		{"Avg Win / Avg Loss", fmt.Sprintf("%s / %s", money(s.AvgWin), money(s.AvgLoss))},
		{"Expectancy", money(s.Expectancy)},
		{"Largest Win", money(s.LargestWin)},
		{"Largest Loss", money(s.LargestLoss)},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"Max Drawdown", pct(s.MaxDrawdownPct)},
		{"Sharpe", ratio(s.Sharpe)},
		{"Sortino", ratio(s.Sortino)},
		{"Calmar", ratio(s.Calmar)},
	})

	if len(s.Exposure) > 0 {
		t.AppendSeparator()
		for _, e := range s.Exposure {
			t.AppendRow(table.Row{
				"Exposure " + e.Symbol,
				fmt.Sprintf("%s (%s notional)", pct(e.SharePct), money(e.Notional)),
			})
		}
		t.AppendRow(table.Row{"Herfindahl Index", fmt.Sprintf("%.4f", s.Herfindahl)})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 24, Align: text.AlignRight},
	})

	t.Render()
}

// WriteTrades renders the closed trades as a table, most recent last.
func WriteTrades(w io.Writer, trades []portfolio.Trade) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("CLOSED TRADES")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{
		"Symbol", "Side", "Qty", "Entry", "Exit", "Exit Time", "Gross", "Fee", "Net",
	})
	for _, tr := range trades {
		t.AppendRow(table.Row{
			tr.Symbol,
			tr.Side,
			fmt.Sprintf("%.6f", tr.Qty),
			fmt.Sprintf("%.4f", tr.EntryPrice),
			fmt.Sprintf("%.4f", tr.ExitPrice),
			tr.ExitTime.Format("2006-01-02 15:04:05"),
			money(tr.GrossPnL),
			money(tr.Fee),
			money(tr.NetPnL),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})

	t.Render()
}

// TradesFromRecords rebuilds trades from their journal rows, the inverse
// of Trade.Record. The report command uses it to run analytics over a
// stored journal without replaying the scenario.
func TradesFromRecords(recs []journal.TradeRecord) []portfolio.Trade {
	trades := make([]portfolio.Trade, len(recs))
	for i, r := range recs {
		trades[i] = portfolio.Trade{
			ID:         r.TradeID,
			Symbol:     r.Symbol,
			Side:       portfolio.Side(r.Side),
			Qty:        r.Qty,
			EntryPrice: r.EntryPrice,
			ExitPrice:  r.ExitPrice,
			EntryTime:  r.EntryTime,
			ExitTime:   r.ExitTime,
			GrossPnL:   r.GrossPnL,
			Fee:        r.Fee,
			NetPnL:     r.NetPnL,
		}
	}
	return trades
}

// CurveFromRecords rebuilds the equity curve from its journal rows.
func CurveFromRecords(recs []journal.EquityPoint) []portfolio.EquityPoint {
	curve := make([]portfolio.EquityPoint, len(recs))
	for i, r := range recs {
		curve[i] = portfolio.EquityPoint{
			Time:          r.Time,
			Equity:        r.Equity,
			FreeBalance:   r.FreeBalance,
			UnrealizedPnL: r.UnrealizedPnL,
		}
	}
	return curve
}

func money(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func pct(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v)
}

func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) || math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
