package journal

import (
	"database/sql"
	"fmt"
	"time"
)

const tradeColumns = `trade_id, symbol, side, qty, entry_price, exit_price, entry_time, exit_time, gross_pnl, fee, net_pnl`

func scanTrade(row interface{ Scan(...any) error }) (TradeRecord, error) {
	var rec TradeRecord
	err := row.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Side,
		&rec.Qty,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryTime,
		&rec.ExitTime,
		&rec.GrossPnL,
		&rec.Fee,
		&rec.NetPnL,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTrades returns every trade in exit order. The report command uses
// it to rebuild analytics from a stored run.
func (j *SQLite) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT ` + tradeColumns + `
		FROM trades
		ORDER BY exit_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns the full equity curve in time order.
func (j *SQLite) ListEquity() ([]EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT time, equity, free_balance, unrealized_pnl
		FROM equity_curve
		ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var pt EquityPoint
		if err := rows.Scan(&pt.Time, &pt.Equity, &pt.FreeBalance, &pt.UnrealizedPnL); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity points with time within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT time, equity, free_balance, unrealized_pnl
		FROM equity_curve
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var pt EquityPoint
		if err := rows.Scan(&pt.Time, &pt.Equity, &pt.FreeBalance, &pt.UnrealizedPnL); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SummaryRow aggregates realized results for trades closed in a window.
type SummaryRow struct {
	Trades      int
	Wins        int
	NetPnL      float64
	GrossProfit float64
	GrossLoss   float64
}

// ProfitFactor is GrossProfit / GrossLoss; zero when there are no losses.
func (s SummaryRow) ProfitFactor() float64 {
	if s.GrossLoss == 0 {
		return 0
	}
	return s.GrossProfit / s.GrossLoss
}

// Summarize aggregates trades whose exit_time is within [start, end).
func (j *SQLite) Summarize(start, end time.Time) (SummaryRow, error) {
	var s SummaryRow
	err := j.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN net_pnl > 0 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(net_pnl), 0),
		       COALESCE(SUM(CASE WHEN net_pnl > 0 THEN net_pnl ELSE 0 END), 0),
		       COALESCE(-SUM(CASE WHEN net_pnl < 0 THEN net_pnl ELSE 0 END), 0)
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?`, start, end).
		Scan(&s.Trades, &s.Wins, &s.NetPnL, &s.GrossProfit, &s.GrossLoss)
	if err != nil {
		return SummaryRow{}, err
	}
	return s, nil
}
