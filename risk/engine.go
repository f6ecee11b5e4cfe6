package risk

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bogdanmosica/trador/portfolio"
)

// RuleConfig is one entry of the ordered rule list. Critical marks the
// rule's violations for the critical filter; it is plain configuration, not
// a property of the rule implementation.
type RuleConfig struct {
	Name     string `json:"name" yaml:"name"`
	Critical bool   `json:"critical,omitempty" yaml:"critical,omitempty"`
	Params   Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// Violation is one failed check, tagged with the rule that produced it.
type Violation struct {
	Rule     string
	Msg      string
	Critical bool
}

func (v Violation) String() string { return fmt.Sprintf("[%s] %s", v.Rule, v.Msg) }

// Decision aggregates one evaluation pass. Every configured rule runs every
// time; violations accumulate in rule order and never stop the pass early.
type Decision struct {
	Phase      string // "pre_trade" or "post_trade"
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(v Violation) {
	d.Violations = append(d.Violations, v)
	d.Allowed = false
}

// Critical returns the violations whose rules are marked critical in
// configuration, in evaluation order.
func (d Decision) Critical() []Violation {
	var out []Violation
	for _, v := range d.Violations {
		if v.Critical {
			out = append(out, v)
		}
	}
	return out
}

// Summary renders the violations one per line in evaluation order.
func (d Decision) Summary() string {
	if d.Allowed {
		return "all checks passed"
	}
	lines := make([]string, 0, len(d.Violations))
	for _, v := range d.Violations {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}

// Err converts the decision's critical violations into an error for callers
// that treat a critical breach as one. Decisions without critical
// violations return nil.
func (d Decision) Err() error {
	crit := d.Critical()
	if len(crit) == 0 {
		return nil
	}
	return &ViolationError{Phase: d.Phase, Violations: crit}
}

// ViolationError carries the critical violations of a blocked decision.
// Inside the engine a violation is never an error; this type exists for the
// callers that escalate one.
type ViolationError struct {
	Phase      string
	Violations []Violation
}

func (e *ViolationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s risk violation: %s", e.Phase, strings.Join(msgs, "; "))
}

type boundRule struct {
	rule     Rule
	critical bool
	params   Params
}

// Engine evaluates a fixed, ordered set of rules. Construction never fails:
// an unknown rule name or a bad parameter is logged and skipped so one typo
// in a config file cannot take trading down.
type Engine struct {
	rules   []boundRule
	skipped []string
	log     *slog.Logger
}

type Option func(*Engine)

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func NewEngine(cfgs []RuleConfig, opts ...Option) *Engine {
	e := &Engine{log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	for _, cfg := range cfgs {
		r, err := New(cfg.Name, cfg.Params)
		if err != nil {
			e.skipped = append(e.skipped, cfg.Name)
			e.log.Warn("skipping risk rule", "rule", cfg.Name, "err", err)
			continue
		}
		e.rules = append(e.rules, boundRule{rule: r, critical: cfg.Critical, params: cfg.Params})
	}
	return e
}

// CheckPreTrade runs every rule against a proposed fill before it is
// applied. The snapshot reflects the state the fill would land on.
func (e *Engine) CheckPreTrade(f portfolio.Fill, s portfolio.Snapshot) Decision {
	d := Decision{Phase: "pre_trade", Allowed: true}
	for _, br := range e.rules {
		if res := br.rule.CheckPreTrade(f, s); !res.OK {
			d.add(Violation{Rule: br.rule.Name(), Msg: res.Msg, Critical: br.critical})
		}
	}
	return d
}

// CheckPostTrade runs every rule against the state after a fill or mark has
// been applied.
func (e *Engine) CheckPostTrade(s portfolio.Snapshot) Decision {
	d := Decision{Phase: "post_trade", Allowed: true}
	for _, br := range e.rules {
		if res := br.rule.CheckPostTrade(s); !res.OK {
			d.add(Violation{Rule: br.rule.Name(), Msg: res.Msg, Critical: br.critical})
		}
	}
	return d
}

// RuleInfo describes one active rule for introspection.
type RuleInfo struct {
	Name     string
	Critical bool
	Params   Params
}

// Rules reports the active rules in evaluation order.
func (e *Engine) Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(e.rules))
	for _, br := range e.rules {
		out = append(out, RuleInfo{Name: br.rule.Name(), Critical: br.critical, Params: br.params})
	}
	return out
}

// Skipped reports how many configured rules could not be constructed.
func (e *Engine) Skipped() int { return len(e.skipped) }

// SkippedRules returns the configured names of the rules that could not be
// constructed, in configuration order.
func (e *Engine) SkippedRules() []string {
	return append([]string(nil), e.skipped...)
}
