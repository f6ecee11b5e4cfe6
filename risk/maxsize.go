package risk

import (
	"fmt"
	"math"

	"github.com/bogdanmosica/trador/portfolio"
)

func init() {
	Register("max_position_size", newMaxPositionSize)
}

// maxPositionSize caps the value committed to one position: the held
// quantity at its average entry price plus the proposed fill at its own
// price. Fills that shrink or close a position always pass: reducing
// exposure must never be blocked, even when the position is already over
// the cap.
type maxPositionSize struct {
	maxUSD float64
}

func newMaxPositionSize(p Params) (Rule, error) {
	max, err := p.Float("max_size_usd", math.Inf(1))
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, fmt.Errorf("max_size_usd must be positive, got %v", max)
	}
	return &maxPositionSize{maxUSD: max}, nil
}

func (r *maxPositionSize) Name() string { return "max_position_size" }

func (r *maxPositionSize) CheckPreTrade(f portfolio.Fill, s portfolio.Snapshot) Result {
	value := f.Qty * f.Price
	if pos, ok := s.Positions[f.Symbol]; ok {
		if pos.Side != f.Side {
			return Pass("reduces exposure")
		}
		value += pos.Qty * pos.AvgEntryPrice
	}

	if value > r.maxUSD {
		return Fail("position value %.2f USD would exceed max %.2f USD", value, r.maxUSD)
	}
	return Pass("within size limit")
}

func (r *maxPositionSize) CheckPostTrade(s portfolio.Snapshot) Result {
	return Pass("position size is enforced pre-trade")
}
