package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bogdanmosica/trador/journal"
	"github.com/bogdanmosica/trador/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute performance statistics from a stored journal",
	Long: `Rebuild the trade history and equity curve from a SQLite journal and
compute performance and risk statistics over them.

Formats:
  table - summary and trade tables on stdout (default)
  csv   - summary as metric,value rows
  xlsx  - workbook with Summary, Trades and Equity sheets (requires --out)

Examples:
  trador report -d ./trador.sqlite
  trador report -d ./trador.sqlite --format csv --out summary.csv
  trador report -d ./trador.sqlite --format xlsx --out report.xlsx`,
	RunE: runReport,
}

var (
	reportDBPath  string
	reportFormat  string
	reportOut     string
	reportInitial float64
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportDBPath, "db", "d", "./trador.sqlite", "path to SQLite journal DB")
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "output format (table, csv, xlsx)")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (stdout for table and csv if empty)")
	reportCmd.Flags().Float64Var(&reportInitial, "initial-equity", 0, "starting equity (defaults to the first journaled point)")
}

func runReport(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	points, err := j.ListEquity()
	if err != nil {
		return fmt.Errorf("query equity curve: %w", err)
	}

	trades := report.TradesFromRecords(recs)
	curve := report.CurveFromRecords(points)

	initial := reportInitial
	if initial == 0 && len(curve) > 0 {
		initial = curve[0].Equity
	}

	summary := report.Compute(initial, trades, curve)

	switch reportFormat {
	case "table":
		out, closeOut, err := openOut(reportOut)
		if err != nil {
			return err
		}
		defer closeOut()
		report.WriteSummary(out, summary)
		if len(trades) > 0 {
			fmt.Fprintln(out)
			report.WriteTrades(out, trades)
		}

	case "csv":
		out, closeOut, err := openOut(reportOut)
		if err != nil {
			return err
		}
		defer closeOut()
		if err := report.WriteSummaryCSV(out, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}

	case "xlsx":
		if reportOut == "" {
			return fmt.Errorf("--out is required for xlsx output")
		}
		if err := report.WriteXLSX(reportOut, summary, trades, curve); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Printf("Report saved to: %s\n", reportOut)

	default:
		return fmt.Errorf("unknown format %q (want table, csv or xlsx)", reportFormat)
	}

	return nil
}

func openOut(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
