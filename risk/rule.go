package risk

import (
	"fmt"

	"github.com/bogdanmosica/trador/portfolio"
)

// Rule is one risk check. The engine evaluates rules in configuration order
// for both phases; a rule with no semantics for a phase returns a passing
// Result saying so.
//
// Rules may keep state across calls (peak equity, daily anchors). The engine
// constructs each rule once and reuses the instance, so state accumulates
// for the engine's lifetime.
type Rule interface {
	Name() string
	CheckPreTrade(f portfolio.Fill, s portfolio.Snapshot) Result
	CheckPostTrade(s portfolio.Snapshot) Result
}

// Result is the outcome of one rule for one phase. Violations are ordinary
// values, not errors: a failing rule never aborts the evaluation pass.
type Result struct {
	OK  bool
	Msg string
}

func Pass(msg string) Result { return Result{OK: true, Msg: msg} }

func Fail(format string, args ...any) Result {
	return Result{OK: false, Msg: fmt.Sprintf(format, args...)}
}

// Params is the free-form parameter map of one configured rule. The typed
// getters are how rules read their configuration: a missing key falls back
// to the default, a mistyped value is a construction error.
type Params map[string]any

func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("param %q: want a number, got %T", key, v)
	}
}

func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("param %q: want an integer, got %v", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("param %q: want an integer, got %T", key, v)
	}
}
