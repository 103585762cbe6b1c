package strategy

import (
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/state"
)

// Strategy decides whether a snapshot warrants a trade. Implementations
// must be pure: the same snapshot and configuration always produce the
// same decision, with no side effects.
type Strategy interface {
	Decide(snap market.Snapshot, cfg state.Configuration) (exchange.Intent, bool)
}
