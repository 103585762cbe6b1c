package state

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"pairsniper/internal/alerting"
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
)

// Configuration is the user-entered watch configuration. It is replaced
// atomically as a whole; a loop iteration always works against one
// consistent copy.
type Configuration struct {
	Pair                    market.Pair
	PriceChangeThresholdPct decimal.Decimal
	VolumeThreshold         decimal.Decimal
	TradeAmountQuote        decimal.Decimal
	Exchange                exchange.Credentials
	Messaging               alerting.Credentials
}

// Validate checks the semantic constraints the loop relies on. The HTTP
// layer performs field-level validation before this runs.
func (c Configuration) Validate() error {
	if c.Pair.IsZero() {
		return errors.New("trading pair is required")
	}
	if !c.TradeAmountQuote.IsPositive() {
		return errors.New("trade amount must be greater than zero")
	}
	if c.Exchange.APIKey == "" || c.Exchange.APISecret == "" {
		return errors.New("exchange api key and secret are required")
	}
	if c.Messaging.BotToken == "" || c.Messaging.ChatID == "" {
		return errors.New("telegram bot token and chat id are required")
	}
	return nil
}

// TradeOutcome is the displayed record of the most recent order attempt.
type TradeOutcome struct {
	Side           string          `json:"side"`
	Executed       bool            `json:"executed"`
	OrderID        int64           `json:"order_id,omitempty"`
	FilledQuantity decimal.Decimal `json:"filled_quantity"`
	FillPrice      decimal.Decimal `json:"fill_price"`
	Error          string          `json:"error,omitempty"`
	At             time.Time       `json:"at"`
}

// DisplayState is the consistent read handed to the presentation surface.
type DisplayState struct {
	Configured bool             `json:"configured"`
	Pair       string           `json:"pair,omitempty"`
	Snapshot   *market.Snapshot `json:"snapshot,omitempty"`
	LastTrade  *TradeOutcome    `json:"last_trade,omitempty"`
}
