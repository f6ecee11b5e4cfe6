// Package monitor exposes account and risk gauges over a Prometheus
// scrape endpoint.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Account metrics
	equityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trador_equity",
			Help: "Account equity, free balance plus unrealized P&L",
		},
	)

	freeBalanceGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trador_free_balance",
			Help: "Free balance available for new positions",
		},
	)

	unrealizedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trador_unrealized_pnl",
			Help: "Unrealized P&L across open positions",
		},
	)

	drawdownGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trador_drawdown_pct",
			Help: "Current drawdown from the equity peak in percent",
		},
	)

	openPositionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trador_open_positions",
			Help: "Number of symbols with an open position",
		},
	)

	// Flow metrics
	fillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trador_fills_total",
			Help: "Fills applied to the ledger",
		},
		[]string{"symbol", "side"},
	)

	fillsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trador_fills_rejected_total",
			Help: "Fills rejected by pre-trade risk checks",
		},
		[]string{"symbol"},
	)

	fillNotional = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trador_fill_notional",
			Help:    "Distribution of applied fill notionals",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7),
		},
		[]string{"symbol"},
	)

	tradesClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trador_trades_closed_total",
			Help: "Realized closes, full or partial",
		},
		[]string{"symbol"},
	)

	// Risk metrics
	violationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trador_risk_violations_total",
			Help: "Risk rule violations by rule and phase",
		},
		[]string{"rule", "phase"},
	)

	rulesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trador_risk_rules_skipped_total",
			Help: "Rules skipped at engine construction",
		},
		[]string{"rule"},
	)
)

func init() {
	prometheus.MustRegister(equityGauge)
	prometheus.MustRegister(freeBalanceGauge)
	prometheus.MustRegister(unrealizedGauge)
	prometheus.MustRegister(drawdownGauge)
	prometheus.MustRegister(openPositionsGauge)
	prometheus.MustRegister(fillsTotal)
	prometheus.MustRegister(fillsRejectedTotal)
	prometheus.MustRegister(fillNotional)
	prometheus.MustRegister(tradesClosedTotal)
	prometheus.MustRegister(violationsTotal)
	prometheus.MustRegister(rulesSkippedTotal)
}

// ObserveAccount updates the account gauges after a ledger operation.
func ObserveAccount(equity, freeBalance, unrealized float64, openPositions int) {
	equityGauge.Set(equity)
	freeBalanceGauge.Set(freeBalance)
	unrealizedGauge.Set(unrealized)
	openPositionsGauge.Set(float64(openPositions))
}

// ObserveDrawdown updates the drawdown gauge.
func ObserveDrawdown(pct float64) {
	drawdownGauge.Set(pct)
}

// RecordFill records an applied fill.
func RecordFill(symbol, side string, notional float64) {
	fillsTotal.WithLabelValues(symbol, side).Inc()
	fillNotional.WithLabelValues(symbol).Observe(notional)
}

// RecordFillRejected records a fill blocked before it reached the ledger.
func RecordFillRejected(symbol string) {
	fillsRejectedTotal.WithLabelValues(symbol).Inc()
}

// RecordTradeClosed records a realized close.
func RecordTradeClosed(symbol string) {
	tradesClosedTotal.WithLabelValues(symbol).Inc()
}

// RecordViolation records one rule violation.
func RecordViolation(rule, phase string) {
	violationsTotal.WithLabelValues(rule, phase).Inc()
}

// RecordRuleSkipped records a rule dropped at engine construction.
func RecordRuleSkipped(rule string) {
	rulesSkippedTotal.WithLabelValues(rule).Inc()
}
