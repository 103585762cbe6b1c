package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ClientOptions parameterise the market data client.
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client fetches pair snapshots from the data-provider REST API.
type Client struct {
	opts    ClientOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs a market data client.
func NewClient(opts ClientOptions, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.dexscreener.com/latest/dex/pairs"
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "market_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// Fetch performs one request against the data service and returns a fully
// populated snapshot. Any transport failure, non-2xx status, or missing
// field in the body is an error; partial data is never returned.
func (c *Client) Fetch(ctx context.Context, pair Pair) (Snapshot, error) {
	if pair.IsZero() {
		return Snapshot{}, errors.New("trading pair not set")
	}

	endpoint := c.baseURL + "/" + pair.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "pairsniper/1.0")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch %s: %w", pair, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Snapshot{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Snapshot{}, parseHTTPError(resp.StatusCode, payload)
	}

	var body pairResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		return Snapshot{}, fmt.Errorf("decode pair response: %w", err)
	}

	if body.Data == nil {
		return Snapshot{}, errors.New("pair response missing data object")
	}
	if body.Data.PriceUSD == nil {
		return Snapshot{}, errors.New("pair response missing priceUsd")
	}
	if body.Data.Volume == nil {
		return Snapshot{}, errors.New("pair response missing volume")
	}
	if body.Data.PriceChange == nil {
		return Snapshot{}, errors.New("pair response missing priceChange")
	}

	snap := Snapshot{
		Pair:           pair,
		PriceUSD:       body.Data.PriceUSD.Decimal,
		Volume:         body.Data.Volume.Decimal,
		PriceChangePct: body.Data.PriceChange.Decimal,
		FetchedAt:      time.Now().UTC(),
	}

	c.logger.Debug().
		Str("pair", pair.String()).
		Str("price_usd", snap.PriceUSD.String()).
		Str("volume", snap.Volume.String()).
		Str("price_change_pct", snap.PriceChangePct.String()).
		Msg("snapshot fetched")

	return snap, nil
}

type pairResponse struct {
	Data *pairData `json:"data"`
}

type pairData struct {
	PriceUSD    *looseDecimal `json:"priceUsd"`
	Volume      *looseDecimal `json:"volume"`
	PriceChange *looseDecimal `json:"priceChange"`
}

// looseDecimal accepts both quoted and bare JSON numbers; the data service
// serialises prices as strings but volumes as numbers.
type looseDecimal struct {
	decimal.Decimal
}

func (d *looseDecimal) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if trimmed == "" || trimmed == "null" {
		return errors.New("empty numeric value")
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return fmt.Errorf("parse numeric value %q: %w", trimmed, err)
	}
	d.Decimal = parsed
	return nil
}

type errorResponse struct {
	ErrorType   string `json:"errorType"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Description != "" {
			return fmt.Errorf("data api error (%d): %s", status, apiErr.Description)
		}
		if apiErr.Message != "" {
			return fmt.Errorf("data api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.ErrorType != "" {
			return fmt.Errorf("data api error (%d): %s", status, apiErr.ErrorType)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("data api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("data api error (%d)", status)
}

var _ Fetcher = (*Client)(nil)
