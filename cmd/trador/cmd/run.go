package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bogdanmosica/trador/config"
	"github.com/bogdanmosica/trador/journal"
	"github.com/bogdanmosica/trador/monitor"
	"github.com/bogdanmosica/trador/portfolio"
	"github.com/bogdanmosica/trador/replay"
	"github.com/bogdanmosica/trador/report"
	"github.com/bogdanmosica/trador/risk"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a scenario from a config file",
	Long: `Replay a scripted scenario of fills and mark prices against a fresh
ledger, with the configured risk rules checked around every step.

The config file specifies the account, the ordered risk rules, the journal
destination and the scenario steps.

Example:
  trador run -f examples/config.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	fmt.Printf("Running scenario with config: %s\n", runConfigPath)
	fmt.Printf("  Account: %s ($%.2f %s)\n", cfg.Account.ID, cfg.Account.InitialEquity, cfg.Account.Currency)
	fmt.Printf("  Rules: %d, Steps: %d, Journal: %s\n\n",
		len(cfg.Risk.Rules), len(cfg.Scenario.Steps), cfg.Journal.Type)

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	ledger := portfolio.NewLedger(cfg.Account.InitialEquity, portfolio.WithJournal(j))
	engine := risk.NewEngine(cfg.Risk.Rules)
	if skipped := engine.SkippedRules(); len(skipped) > 0 {
		for _, name := range skipped {
			monitor.RecordRuleSkipped(name)
		}
		fmt.Printf("Skipped %d misconfigured risk rule(s), see log\n\n", len(skipped))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Monitor.Enabled {
		go func() {
			if err := monitor.Serve(ctx, cfg.Monitor.Listen, slog.Default()); err != nil {
				slog.Error("monitor server failed", "err", err)
			}
		}()
	}

	runner := replay.NewRunner(ledger, engine)
	res, err := runner.Run(ctx, cfg.Scenario)
	if err != nil {
		return fmt.Errorf("run scenario: %w", err)
	}

	fmt.Printf("Scenario complete: %d steps, %d fills applied, %d rejected, %d marks\n",
		res.Steps, res.Applied, res.Rejected, res.Marks)
	if res.Excess > 0 {
		fmt.Printf("  %d fill(s) had excess quantity discarded\n", res.Excess)
	}
	if res.Halted {
		fmt.Printf("  HALTED: %s\n", res.HaltReason)
	}
	fmt.Println()

	summary := report.Compute(ledger.InitialEquity(), ledger.TradeHistory(), ledger.EquityCurve())
	report.WriteSummary(os.Stdout, summary)

	switch cfg.Journal.Type {
	case "csv":
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "multi":
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n  - %s\n",
			cfg.Journal.TradesFile, cfg.Journal.EquityFile, cfg.Journal.DBPath)
	case "none", "":
	default:
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.DBPath)
	}

	return nil
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
	case "multi":
		cj, err := journal.NewCSV(cfg.TradesFile, cfg.EquityFile)
		if err != nil {
			return nil, err
		}
		sj, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			cj.Close()
			return nil, err
		}
		return journal.Multi{cj, sj}, nil
	case "none", "":
		return journal.Nop{}, nil
	default:
		return journal.NewSQLite(cfg.DBPath)
	}
}
