package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bogdanmosica/trador/internal/logx"
)

var rootCmd = &cobra.Command{
	Use:   "trador",
	Short: "A portfolio ledger and risk engine for scripted trading scenarios",
	Long: `Trador tracks positions, balances and P&L from execution fills, enforces
configurable risk rules around every trade, and journals the results.

It provides tools for:
  - Replaying scripted fill and mark scenarios against a ledger
  - Enforcing ordered pre- and post-trade risk rules from configuration
  - Journaling trades and equity curves to SQLite or CSV
  - Reporting performance and risk statistics as tables, CSV or XLSX
  - Exposing account gauges to Prometheus during a run

Complete documentation is available at https://github.com/bogdanmosica/trador`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(envFile); err != nil {
			return err
		}
		slog.SetDefault(logx.New(logLevel))
		return nil
	},
}

var (
	logLevel string
	envFile  string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment overrides from this file")
}

// loadEnv loads a dotenv file. A missing default .env is fine; a missing
// explicitly requested file is not.
func loadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err == nil {
			return godotenv.Load()
		}
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("env file %s not found", path)
	}
	return godotenv.Load(path)
}
