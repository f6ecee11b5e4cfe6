package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bogdanmosica/trador/portfolio"
)

// WriteXLSX writes the summary, trade log and equity curve to one
// workbook with a sheet per section.
func WriteXLSX(path string, s Summary, trades []portfolio.Trade, curve []portfolio.EquityPoint) error {
	fx := excelize.NewFile()
	defer fx.Close()

	const (
		summarySheet = "Summary"
		tradesSheet  = "Trades"
		equitySheet  = "Equity"
	)
	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	if _, err := fx.NewSheet(tradesSheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", tradesSheet, err)
	}
	if _, err := fx.NewSheet(equitySheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", equitySheet, err)
	}

	headStyle, err := fx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	writeRow := func(sheet string, row int, values []interface{}, style int) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if style != 0 {
				if err := fx.SetCellStyle(sheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
		return nil
	}

	summaryRows := [][]interface{}{
		{"Initial Equity", s.InitialEquity},
		{"Final Equity", s.FinalEquity},
		{"Total Return %", s.TotalReturnPct},
		{"Net P&L", s.NetPnL},
		{"Total Fees", s.TotalFees},
		{"Trades", s.Trades},
		{"Wins", s.Wins},
		{"Losses", s.Losses},
		{"Win Rate %", s.WinRatePct},
		{"Profit Factor", ratio(s.ProfitFactor)},
		{"Avg Win", s.AvgWin},
		{"Avg Loss", s.AvgLoss},
		{"Expectancy", s.Expectancy},
		{"Largest Win", s.LargestWin},
		{"Largest Loss", s.LargestLoss},
		{"Max Drawdown %", s.MaxDrawdownPct},
		{"Sharpe", ratio(s.Sharpe)},
		{"Sortino", ratio(s.Sortino)},
		{"Calmar", ratio(s.Calmar)},
		{"Herfindahl Index", s.Herfindahl},
	}
	for _, e := range s.Exposure {
		summaryRows = append(summaryRows, []interface{}{"Exposure % " + e.Symbol, e.SharePct})
	}
	if err := writeRow(summarySheet, 1, []interface{}{"Metric", "Value"}, headStyle); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for i, row := range summaryRows {
		if err := writeRow(summarySheet, i+2, row, 0); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	tradeHeader := []interface{}{
		"Trade ID", "Symbol", "Side", "Qty", "Entry Price", "Exit Price",
		"Entry Time", "Exit Time", "Gross P&L", "Fee", "Net P&L",
	}
	if err := writeRow(tradesSheet, 1, tradeHeader, headStyle); err != nil {
		return fmt.Errorf("write trades header: %w", err)
	}
	for i, t := range trades {
		row := []interface{}{
			t.ID,
			t.Symbol,
			string(t.Side),
			t.Qty,
			t.EntryPrice,
			t.ExitPrice,
			t.EntryTime.Format("2006-01-02 15:04:05"),
			t.ExitTime.Format("2006-01-02 15:04:05"),
			t.GrossPnL,
			t.Fee,
			t.NetPnL,
		}
		if err := writeRow(tradesSheet, i+2, row, 0); err != nil {
			return fmt.Errorf("write trade row %d: %w", i+1, err)
		}
	}

	equityHeader := []interface{}{"Time", "Equity", "Free Balance", "Unrealized P&L"}
	if err := writeRow(equitySheet, 1, equityHeader, headStyle); err != nil {
		return fmt.Errorf("write equity header: %w", err)
	}
	for i, p := range curve {
		row := []interface{}{
			p.Time.Format("2006-01-02 15:04:05"),
			p.Equity,
			p.FreeBalance,
			p.UnrealizedPnL,
		}
		if err := writeRow(equitySheet, i+2, row, 0); err != nil {
			return fmt.Errorf("write equity row %d: %w", i+1, err)
		}
	}

	if err := fx.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}
