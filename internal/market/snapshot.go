package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one point-in-time read of market data for a pair. Snapshots
// are immutable; a new one replaces the old on every successful fetch.
type Snapshot struct {
	Pair           Pair            `json:"pair"`
	PriceUSD       decimal.Decimal `json:"price_usd"`
	Volume         decimal.Decimal `json:"volume"`
	PriceChangePct decimal.Decimal `json:"price_change_pct"`
	FetchedAt      time.Time       `json:"fetched_at"`
}

// Fetcher retrieves the current market snapshot for a pair.
type Fetcher interface {
	Fetch(ctx context.Context, pair Pair) (Snapshot, error)
}
