package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// quantityPrecision bounds the order quantity sent to the exchange; finer
// precision is rejected by most spot symbols.
const quantityPrecision = 6

// BinanceOptions parameterise the executor.
type BinanceOptions struct {
	BaseURL string
	Timeout time.Duration
}

// Binance places spot market orders through the exchange REST API. The
// exchange's own ticker price is authoritative for sizing; the data
// service's price is never reused here.
type Binance struct {
	opts   BinanceOptions
	logger zerolog.Logger
}

// NewBinance constructs the executor.
func NewBinance(opts BinanceOptions, logger zerolog.Logger) *Binance {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &Binance{opts: opts, logger: logger.With().Str("component", "exchange_executor").Logger()}
}

// Execute sizes and submits one market order for the intent. All failure
// modes (price fetch, rejection, transport) come back as an error beside a
// zero Result; nothing escapes as a fault.
func (b *Binance) Execute(ctx context.Context, intent Intent, creds Credentials) (Result, error) {
	if creds.APIKey == "" || creds.APISecret == "" {
		return Result{}, errors.New("exchange credentials not configured")
	}
	if !intent.AmountQuote.IsPositive() {
		return Result{}, errors.New("trade amount must be greater than zero")
	}

	client := b.newClient(creds)
	symbol := intent.Pair.Symbol()

	price, err := b.symbolPrice(ctx, client, symbol)
	if err != nil {
		return Result{}, fmt.Errorf("fetch exchange price for %s: %w", symbol, err)
	}

	quantity := intent.AmountQuote.Div(price).Truncate(quantityPrecision)
	if quantity.IsZero() {
		return Result{}, fmt.Errorf("order quantity for %s %s rounds to zero at price %s",
			intent.AmountQuote, symbol, price)
	}

	svc := client.NewCreateOrderService().
		Symbol(symbol).
		Type(binance.OrderTypeMarket).
		Quantity(quantity.String())

	switch intent.Side {
	case SideBuy:
		svc.Side(binance.SideTypeBuy)
	case SideSell:
		svc.Side(binance.SideTypeSell)
	default:
		return Result{}, fmt.Errorf("unknown trade side %q", intent.Side)
	}

	order, err := svc.Do(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("submit %s order for %s: %w", intent.Side, symbol, err)
	}

	result := Result{
		OrderID:        order.OrderID,
		FilledQuantity: b.parseQuantity(order.ExecutedQuantity, "executed_qty"),
		FillPrice:      b.fillPrice(order, price),
	}

	b.logger.Info().
		Str("symbol", symbol).
		Str("side", string(intent.Side)).
		Int64("order_id", result.OrderID).
		Str("filled_quantity", result.FilledQuantity.String()).
		Str("fill_price", result.FillPrice.String()).
		Msg("order executed")

	return result, nil
}

func (b *Binance) newClient(creds Credentials) *binance.Client {
	client := binance.NewClient(creds.APIKey, creds.APISecret)
	if b.opts.BaseURL != "" {
		client.BaseURL = b.opts.BaseURL
	}
	client.HTTPClient = &http.Client{Timeout: b.opts.Timeout}
	return client
}

func (b *Binance) symbolPrice(ctx context.Context, client *binance.Client, symbol string) (decimal.Decimal, error) {
	prices, err := client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	for _, p := range prices {
		if p.Symbol != symbol {
			continue
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parse ticker price %q: %w", p.Price, err)
		}
		if !price.IsPositive() {
			return decimal.Decimal{}, fmt.Errorf("exchange returned non-positive price %s", price)
		}
		return price, nil
	}
	return decimal.Decimal{}, fmt.Errorf("no ticker price returned for %s", symbol)
}

// parseQuantity reads a numeric field from the order response. The order is
// already accepted by the time this runs, so a malformed value cannot fail
// the trade; it is logged and reported as zero.
func (b *Binance) parseQuantity(raw, field string) decimal.Decimal {
	if raw == "" {
		return decimal.Zero
	}
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		b.logger.Warn().Str("field", field).Str("value", raw).Err(err).
			Msg("unparseable quantity in order response")
		return decimal.Zero
	}
	return qty
}

// fillPrice derives the average execution price from the order response,
// falling back to the pre-trade ticker price when the exchange reports no
// fills yet.
func (b *Binance) fillPrice(order *binance.CreateOrderResponse, tickerPrice decimal.Decimal) decimal.Decimal {
	executed := b.parseQuantity(order.ExecutedQuantity, "executed_qty")
	if executed.IsPositive() {
		if quote := b.parseQuantity(order.CummulativeQuoteQuantity, "cummulative_quote_qty"); quote.IsPositive() {
			return quote.Div(executed)
		}
	}
	for _, fill := range order.Fills {
		if price := b.parseQuantity(fill.Price, "fill_price"); price.IsPositive() {
			return price
		}
	}
	return tickerPrice
}

var _ Executor = (*Binance)(nil)
