package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bogdanmosica/trador/portfolio"
)

func snapshot(equity float64, positions map[string]portfolio.Position) portfolio.Snapshot {
	if positions == nil {
		positions = map[string]portfolio.Position{}
	}
	return portfolio.Snapshot{
		Time:        time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		FreeBalance: equity,
		Equity:      equity,
		Positions:   positions,
	}
}

func buyFill(symbol string, qty, price float64) portfolio.Fill {
	return portfolio.Fill{
		Symbol: symbol,
		Side:   portfolio.Buy,
		Qty:    qty,
		Price:  price,
		Time:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEngineSkipsUnknownRule(t *testing.T) {
	t.Parallel()

	e := NewEngine([]RuleConfig{
		{Name: "no_such_rule"},
		{Name: "max_position_size", Params: Params{"max_size_usd": 1000.0}},
	})

	assert.Equal(t, 1, e.Skipped())
	assert.Equal(t, []string{"no_such_rule"}, e.SkippedRules())
	require.Len(t, e.Rules(), 1)
	assert.Equal(t, "max_position_size", e.Rules()[0].Name)

	// The surviving rule still evaluates.
	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, nil))
	assert.False(t, d.Allowed)
}

func TestEngineSkipsBadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    RuleConfig
		wantOK bool
	}{
		{
			name:   "wrong type",
			cfg:    RuleConfig{Name: "max_position_size", Params: Params{"max_size_usd": "lots"}},
			wantOK: false,
		},
		{
			name:   "negative limit",
			cfg:    RuleConfig{Name: "max_drawdown", Params: Params{"max_drawdown_pct": -5.0}},
			wantOK: false,
		},
		{
			name:   "int accepted for float param",
			cfg:    RuleConfig{Name: "max_position_size", Params: Params{"max_size_usd": 50000}},
			wantOK: true,
		},
		{
			name:   "missing params use defaults",
			cfg:    RuleConfig{Name: "max_drawdown"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine([]RuleConfig{tt.cfg})
			if tt.wantOK {
				assert.Equal(t, 0, e.Skipped())
				assert.Len(t, e.Rules(), 1)
			} else {
				assert.Equal(t, 1, e.Skipped())
				assert.Empty(t, e.Rules())
			}
		})
	}
}

func TestEngineEvaluatesInConfigOrder(t *testing.T) {
	t.Parallel()

	cfgs := []RuleConfig{
		{Name: "max_open_positions", Params: Params{"max_positions": 1}},
		{Name: "max_position_size", Params: Params{"max_size_usd": 100.0}},
	}
	held := map[string]portfolio.Position{
		"ETH-USD": {Symbol: "ETH-USD", Side: portfolio.Buy, Qty: 1, AvgEntryPrice: 2000},
	}

	// Both rules fail for a large fill on a new symbol; violations must
	// come back in config order, and reversing the config reverses them.
	e := NewEngine(cfgs)
	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, held))
	require.Len(t, d.Violations, 2)
	assert.Equal(t, "max_open_positions", d.Violations[0].Rule)
	assert.Equal(t, "max_position_size", d.Violations[1].Rule)

	e = NewEngine([]RuleConfig{cfgs[1], cfgs[0]})
	d = e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, held))
	require.Len(t, d.Violations, 2)
	assert.Equal(t, "max_position_size", d.Violations[0].Rule)
	assert.Equal(t, "max_open_positions", d.Violations[1].Rule)
}

func TestEngineNeverShortCircuits(t *testing.T) {
	t.Parallel()

	e := NewEngine([]RuleConfig{
		{Name: "max_position_size", Params: Params{"max_size_usd": 100.0}},
		{Name: "max_open_positions", Params: Params{"max_positions": 5}},
	})

	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, nil))
	assert.False(t, d.Allowed)
	// Second rule passed, first failed; the pass still ran both.
	require.Len(t, d.Violations, 1)
	assert.Equal(t, "max_position_size", d.Violations[0].Rule)
}

func TestCriticalFollowsConfigFlag(t *testing.T) {
	t.Parallel()

	e := NewEngine([]RuleConfig{
		{Name: "max_position_size", Critical: false, Params: Params{"max_size_usd": 100.0}},
		{Name: "max_open_positions", Critical: true, Params: Params{"max_positions": 1}},
	})
	held := map[string]portfolio.Position{
		"ETH-USD": {Symbol: "ETH-USD", Side: portfolio.Buy, Qty: 1, AvgEntryPrice: 2000},
	}

	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, held))
	require.Len(t, d.Violations, 2)

	crit := d.Critical()
	require.Len(t, crit, 1)
	assert.Equal(t, "max_open_positions", crit[0].Rule)
	assert.True(t, crit[0].Critical)
}

func TestDecisionErr(t *testing.T) {
	t.Parallel()

	e := NewEngine([]RuleConfig{
		{Name: "max_position_size", Params: Params{"max_size_usd": 100.0}},
	})

	// Non-critical violation: blocked but not an error.
	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, nil))
	assert.False(t, d.Allowed)
	assert.NoError(t, d.Err())

	e = NewEngine([]RuleConfig{
		{Name: "max_position_size", Critical: true, Params: Params{"max_size_usd": 100.0}},
	})
	d = e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, nil))
	err := d.Err()
	require.Error(t, err)

	var verr *ViolationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pre_trade", verr.Phase)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "max_position_size", verr.Violations[0].Rule)
}

func TestDecisionSummaryFormat(t *testing.T) {
	t.Parallel()

	e := NewEngine([]RuleConfig{
		{Name: "max_position_size", Params: Params{"max_size_usd": 100.0}},
	})

	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 5000), snapshot(10000, nil))
	assert.Contains(t, d.Summary(), "[max_position_size]")

	d = e.CheckPostTrade(snapshot(10000, nil))
	assert.True(t, d.Allowed)
	assert.Equal(t, "all checks passed", d.Summary())
}

func TestDuplicateRulesAreIndependent(t *testing.T) {
	t.Parallel()

	e := NewEngine([]RuleConfig{
		{Name: "max_drawdown", Params: Params{"max_drawdown_pct": 5.0}},
		{Name: "max_drawdown", Params: Params{"max_drawdown_pct": 50.0}},
	})

	// Seed both peaks, then drop 20%: only the 5% instance trips.
	e.CheckPostTrade(snapshot(10000, nil))
	d := e.CheckPostTrade(snapshot(8000, nil))

	require.Len(t, d.Violations, 1)
	assert.Contains(t, d.Violations[0].Msg, "20.00%")
}

func TestEmptyEnginePasses(t *testing.T) {
	t.Parallel()

	e := NewEngine(nil)

	d := e.CheckPreTrade(buyFill("BTC-USD", 1, 100), snapshot(1000, nil))
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)

	d = e.CheckPostTrade(snapshot(1000, nil))
	assert.True(t, d.Allowed)
	assert.Empty(t, d.Violations)
}
