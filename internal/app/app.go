package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pairsniper/internal/alerting"
	"pairsniper/internal/config"
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/scheduler"
	"pairsniper/internal/server"
	"pairsniper/internal/service"
	"pairsniper/internal/state"
	"pairsniper/internal/strategy"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newMarketClient() *market.Client {
	return market.NewClient(market.ClientOptions{
		BaseURL:   a.Config.Market.BaseURL,
		Timeout:   a.Config.Market.RequestTimeout,
		UserAgent: a.Config.Market.UserAgent,
	}, a.Logger)
}

func (a *App) newExecutor() *exchange.Binance {
	return exchange.NewBinance(exchange.BinanceOptions{
		BaseURL: a.Config.Exchange.BaseURL,
		Timeout: a.Config.Exchange.OrderTimeout,
	}, a.Logger)
}

func (a *App) newNotifier() *alerting.Telegram {
	return alerting.NewTelegram(a.Config.Telegram.APIBase, a.Config.Telegram.RequestTimeout, a.Logger)
}

// seedStore installs the optional startup watch configuration. A bad seed
// is a setup failure reported here, before the loop ever starts.
func (a *App) seedStore(store *state.Store) error {
	w := a.Config.Watch
	if w.Pair == "" {
		return nil
	}

	pair, err := market.ParsePair(w.Pair)
	if err != nil {
		return fmt.Errorf("watch.pair: %w", err)
	}

	cfg := state.Configuration{
		Pair:                    pair,
		PriceChangeThresholdPct: decimal.NewFromFloat(w.PriceChangeThresholdPct),
		VolumeThreshold:         decimal.NewFromFloat(w.VolumeThreshold),
		TradeAmountQuote:        decimal.NewFromFloat(w.TradeAmountQuote),
		Exchange: exchange.Credentials{
			APIKey:    w.ExchangeAPIKey,
			APISecret: w.ExchangeAPISecret,
		},
		Messaging: alerting.Credentials{
			BotToken: w.TelegramBotToken,
			ChatID:   w.TelegramChatID,
		},
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("watch configuration invalid: %w", err)
	}

	store.Replace(cfg)
	a.Logger.Info().Str("pair", pair.String()).Msg("watch configuration seeded from config")
	return nil
}

// Run executes the long-running trading daemon: the polling loop plus the
// HTTP presentation API, with graceful drain on SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := state.NewStore()
	if err := a.seedStore(store); err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	engine := service.New(
		sched,
		store,
		a.newMarketClient(),
		strategy.NewThreshold(),
		a.newExecutor(),
		a.newNotifier(),
		service.Options{
			OrderTimeout:  a.Config.Exchange.OrderTimeout,
			NotifyTimeout: a.Config.Telegram.RequestTimeout,
		},
		a.Logger,
	)

	srv := server.New(server.Options{
		ListenAddr:      a.Config.HTTP.ListenAddr,
		ReadTimeout:     a.Config.HTTP.ReadTimeout,
		WriteTimeout:    a.Config.HTTP.WriteTimeout,
		ShutdownTimeout: a.Config.HTTP.ShutdownTimeout,
	}, store, engine, a.Logger)
	srv.Start()

	a.Logger.Info().Msg("starting trading loop")
	err := engine.Run(ctx)

	if stopErr := srv.Stop(context.Background()); stopErr != nil {
		a.Logger.Error().Err(stopErr).Msg("http server shutdown failed")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("trading loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("trading loop stopped")
	return nil
}
