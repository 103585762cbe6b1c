package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"pairsniper/internal/alerting"
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/state"
)

var validate = validator.New()

// ConfigRequest is the submitConfiguration payload. Thresholds accept any
// numeric value; a negative price-change threshold arms the loop on a
// smaller (or less negative) drop, which is a legitimate configuration.
type ConfigRequest struct {
	Pair                    string  `json:"pair" validate:"required"`
	PriceChangeThresholdPct float64 `json:"price_change_threshold_pct"`
	VolumeThreshold         float64 `json:"volume_threshold"`
	TradeAmountQuote        float64 `json:"trade_amount_quote" validate:"required,gt=0"`
	ExchangeAPIKey          string  `json:"exchange_api_key" validate:"required"`
	ExchangeAPISecret       string  `json:"exchange_api_secret" validate:"required"`
	TelegramBotToken        string  `json:"telegram_bot_token" validate:"required"`
	TelegramChatID          string  `json:"telegram_chat_id" validate:"required"`
}

type fieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type errorPayload struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

func (s *Server) submitConfig(c echo.Context) error {
	req := new(ConfigRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: "invalid request body"})
	}

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]fieldError, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldError{
					Field:   fe.Field(),
					Rule:    fe.Tag(),
					Message: fe.Error(),
				})
			}
			return c.JSON(http.StatusBadRequest, errorPayload{Error: "validation failed", Fields: fields})
		}
		return c.JSON(http.StatusBadRequest, errorPayload{Error: err.Error()})
	}

	pair, err := market.ParsePair(req.Pair)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: err.Error()})
	}

	cfg := state.Configuration{
		Pair:                    pair,
		PriceChangeThresholdPct: decimal.NewFromFloat(req.PriceChangeThresholdPct),
		VolumeThreshold:         decimal.NewFromFloat(req.VolumeThreshold),
		TradeAmountQuote:        decimal.NewFromFloat(req.TradeAmountQuote),
		Exchange: exchange.Credentials{
			APIKey:    req.ExchangeAPIKey,
			APISecret: req.ExchangeAPISecret,
		},
		Messaging: alerting.Credentials{
			BotToken: req.TelegramBotToken,
			ChatID:   req.TelegramChatID,
		},
	}
	if err := cfg.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorPayload{Error: err.Error()})
	}

	s.store.Replace(cfg)
	s.logger.Info().Str("pair", pair.String()).Msg("watch configuration replaced")

	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "pair": pair.String()})
}

func (s *Server) displayState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Display())
}

func (s *Server) triggerCycle(c echo.Context) error {
	if _, ok := s.store.Configuration(); !ok {
		return c.JSON(http.StatusConflict, errorPayload{Error: "no watch configuration submitted"})
	}
	s.trigger.TriggerNow()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "cycle scheduled"})
}
