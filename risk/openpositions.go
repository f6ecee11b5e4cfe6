package risk

import (
	"fmt"

	"github.com/bogdanmosica/trador/portfolio"
)

func init() {
	Register("max_open_positions", newMaxOpenPositions)
}

// maxOpenPositions caps how many symbols may be held at once. Only fills
// that would open a new symbol count against the cap; adding to or closing
// an existing position is always allowed.
type maxOpenPositions struct {
	max int
}

func newMaxOpenPositions(p Params) (Rule, error) {
	max, err := p.Int("max_positions", 0)
	if err != nil {
		return nil, err
	}
	if max < 0 {
		return nil, fmt.Errorf("max_positions must not be negative, got %d", max)
	}
	return &maxOpenPositions{max: max}, nil
}

func (r *maxOpenPositions) Name() string { return "max_open_positions" }

func (r *maxOpenPositions) CheckPreTrade(f portfolio.Fill, s portfolio.Snapshot) Result {
	if r.max == 0 {
		return Pass("no position cap configured")
	}
	if _, held := s.Positions[f.Symbol]; held {
		return Pass("symbol already held")
	}
	if len(s.Positions) >= r.max {
		return Fail("open positions %d >= max %d", len(s.Positions), r.max)
	}
	return Pass("within position cap")
}

func (r *maxOpenPositions) CheckPostTrade(s portfolio.Snapshot) Result {
	return Pass("position count is enforced pre-trade")
}
