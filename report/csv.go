package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/bogdanmosica/trador/journal"
	"github.com/bogdanmosica/trador/portfolio"
)

// WriteSummaryCSV writes the summary as metric,value rows.
func WriteSummaryCSV(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"metric", "value"},
		{"initial_equity", csvFloat(s.InitialEquity)},
		{"final_equity", csvFloat(s.FinalEquity)},
		{"total_return_pct", csvFloat(s.TotalReturnPct)},
		{"net_pnl", csvFloat(s.NetPnL)},
		{"total_fees", csvFloat(s.TotalFees)},
		{"trades", strconv.Itoa(s.Trades)},
		{"wins", strconv.Itoa(s.Wins)},
		{"losses", strconv.Itoa(s.Losses)},
		{"win_rate_pct", csvFloat(s.WinRatePct)},
		{"profit_factor", csvFloat(s.ProfitFactor)},
		{"avg_win", csvFloat(s.AvgWin)},
		{"avg_loss", csvFloat(s.AvgLoss)},
		{"expectancy", csvFloat(s.Expectancy)},
		{"largest_win", csvFloat(s.LargestWin)},
		{"largest_loss", csvFloat(s.LargestLoss)},
		{"max_drawdown_pct", csvFloat(s.MaxDrawdownPct)},
		{"sharpe", csvFloat(s.Sharpe)},
		{"sortino", csvFloat(s.Sortino)},
		{"calmar", csvFloat(s.Calmar)},
		{"herfindahl", csvFloat(s.Herfindahl)},
	}
	for _, e := range s.Exposure {
		rows = append(rows, []string{"exposure_pct:" + e.Symbol, csvFloat(e.SharePct)})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the trade log and equity curve to two CSV files
// through the journal's CSV sink, so exports and live journaling share
// one format.
func ExportCSV(tradesPath, equityPath string, trades []portfolio.Trade, curve []portfolio.EquityPoint) error {
	sink, err := journal.NewCSV(tradesPath, equityPath)
	if err != nil {
		return fmt.Errorf("create csv export: %w", err)
	}

	for _, t := range trades {
		if err := sink.RecordTrade(t.Record()); err != nil {
			sink.Close()
			return fmt.Errorf("export trade %q: %w", t.ID, err)
		}
	}
	for _, p := range curve {
		if err := sink.RecordEquity(p.Record()); err != nil {
			sink.Close()
			return fmt.Errorf("export equity point: %w", err)
		}
	}
	return sink.Close()
}

// csvFloat keeps non-finite ratios readable in spreadsheet imports.
func csvFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
