package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/bogdanmosica/trador/portfolio"
)

func init() {
	Register("max_daily_loss", newMaxDailyLoss)
}

// maxDailyLoss is a daily circuit breaker: once equity has dropped the
// configured amount below the first snapshot of the current UTC day, every
// post-trade check fails until the day rolls over and re-anchors.
type maxDailyLoss struct {
	maxUSD float64
	day    time.Time // UTC midnight of the anchored day
	anchor float64   // equity at the first snapshot of that day
}

func newMaxDailyLoss(p Params) (Rule, error) {
	max, err := p.Float("max_loss_usd", math.Inf(1))
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return nil, fmt.Errorf("max_loss_usd must be positive, got %v", max)
	}
	return &maxDailyLoss{maxUSD: max}, nil
}

func (r *maxDailyLoss) Name() string { return "max_daily_loss" }

func (r *maxDailyLoss) CheckPreTrade(f portfolio.Fill, s portfolio.Snapshot) Result {
	return Pass("daily loss is checked post-trade")
}

func (r *maxDailyLoss) CheckPostTrade(s portfolio.Snapshot) Result {
	day := s.Time.UTC().Truncate(24 * time.Hour)
	if r.day.IsZero() || day.After(r.day) {
		r.day = day
		r.anchor = s.Equity
	}

	loss := r.anchor - s.Equity
	if loss >= r.maxUSD {
		return Fail("day loss %.2f USD >= limit %.2f USD", loss, r.maxUSD)
	}
	return Pass("day loss within limit")
}
