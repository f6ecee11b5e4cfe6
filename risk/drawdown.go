package risk

import (
	"fmt"
	"math"

	"github.com/bogdanmosica/trador/portfolio"
)

func init() {
	Register("max_drawdown", newMaxDrawdown)
}

// maxDrawdown trips when equity falls more than a fixed percentage below
// its running peak. The peak starts at -Inf so the first snapshot seeds it,
// and it only ever rises afterwards: recovering does not reset the
// high-water mark.
type maxDrawdown struct {
	maxPct float64
	peak   float64
}

func newMaxDrawdown(p Params) (Rule, error) {
	pct, err := p.Float("max_drawdown_pct", 10)
	if err != nil {
		return nil, err
	}
	if pct <= 0 || pct > 100 {
		return nil, fmt.Errorf("max_drawdown_pct must be in (0, 100], got %v", pct)
	}
	return &maxDrawdown{maxPct: pct, peak: math.Inf(-1)}, nil
}

func (r *maxDrawdown) Name() string { return "max_drawdown" }

func (r *maxDrawdown) CheckPreTrade(f portfolio.Fill, s portfolio.Snapshot) Result {
	return Pass("drawdown is checked post-trade")
}

func (r *maxDrawdown) CheckPostTrade(s portfolio.Snapshot) Result {
	if s.Equity > r.peak {
		r.peak = s.Equity
	}
	if r.peak <= 0 {
		return Pass("no positive peak yet")
	}

	dd := (r.peak - s.Equity) / r.peak * 100
	if dd > r.maxPct {
		return Fail("drawdown %.2f%% exceeds max %.2f%%", dd, r.maxPct)
	}
	return Pass("drawdown within limit")
}
