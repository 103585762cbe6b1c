package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"pairsniper/internal/market"
)

// Side is the direction of a market order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Credentials authenticate against the exchange API. They are passed
// through to the exchange and must never appear in logs.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Intent is a decided trade: pair, direction, and size in quote currency.
// Intents are ephemeral; one intent maps to at most one order submission.
type Intent struct {
	Pair        market.Pair
	Side        Side
	AmountQuote decimal.Decimal
}

// Result reports the outcome of a submitted order.
type Result struct {
	OrderID        int64
	FilledQuantity decimal.Decimal
	FillPrice      decimal.Decimal
}

// Executor converts an intent into a market order on the exchange.
type Executor interface {
	Execute(ctx context.Context, intent Intent, creds Credentials) (Result, error)
}
