package strategy

import (
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/state"
)

// Threshold fires a buy when both the 24h price change and the traded
// volume strictly exceed their configured thresholds. Boundary equality
// does not trigger.
type Threshold struct{}

// NewThreshold constructs the threshold-crossing rule.
func NewThreshold() Threshold {
	return Threshold{}
}

// Decide returns a buy intent sized at the configured quote amount when
// both thresholds are crossed, and false otherwise.
func (Threshold) Decide(snap market.Snapshot, cfg state.Configuration) (exchange.Intent, bool) {
	if !snap.PriceChangePct.GreaterThan(cfg.PriceChangeThresholdPct) {
		return exchange.Intent{}, false
	}
	if !snap.Volume.GreaterThan(cfg.VolumeThreshold) {
		return exchange.Intent{}, false
	}

	return exchange.Intent{
		Pair:        snap.Pair,
		Side:        exchange.SideBuy,
		AmountQuote: cfg.TradeAmountQuote,
	}, true
}

var _ Strategy = Threshold{}
