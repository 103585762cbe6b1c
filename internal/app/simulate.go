package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/service"
	"pairsniper/internal/state"
	"pairsniper/internal/strategy"
)

// SimulateCycle 用给定的价格/成交量/涨跌幅跑一次完整周期。订单走
// dry-run 执行器，不会触达真实交易所；通知照常发送。
func (a *App) SimulateCycle(ctx context.Context, price, volume, changePct decimal.Decimal) error {
	store := state.NewStore()
	if err := a.seedStore(store); err != nil {
		return err
	}
	if _, ok := store.Configuration(); !ok {
		return errors.New("simulate 需要在配置中提供 watch 段")
	}

	fetcher := &staticFetcher{price: price, volume: volume, changePct: changePct}
	executor := &dryRunExecutor{logger: a.Logger}

	engine := service.New(nil, store, fetcher, strategy.NewThreshold(), executor, a.newNotifier(), service.Options{}, a.Logger)

	if err := engine.Cycle(ctx, time.Now().UTC(), true); err != nil {
		return err
	}

	display := store.Display()
	if display.LastTrade != nil {
		a.Logger.Info().
			Str("side", display.LastTrade.Side).
			Bool("executed", display.LastTrade.Executed).
			Msg("simulated cycle fired a trade")
	} else {
		a.Logger.Info().Msg("simulated cycle fired no trade")
	}
	return nil
}

type staticFetcher struct {
	price     decimal.Decimal
	volume    decimal.Decimal
	changePct decimal.Decimal
}

func (f *staticFetcher) Fetch(ctx context.Context, pair market.Pair) (market.Snapshot, error) {
	return market.Snapshot{
		Pair:           pair,
		PriceUSD:       f.price,
		Volume:         f.volume,
		PriceChangePct: f.changePct,
		FetchedAt:      time.Now().UTC(),
	}, nil
}

type dryRunExecutor struct {
	logger zerolog.Logger
}

func (d *dryRunExecutor) Execute(ctx context.Context, intent exchange.Intent, creds exchange.Credentials) (exchange.Result, error) {
	d.logger.Info().
		Str("pair", intent.Pair.String()).
		Str("side", string(intent.Side)).
		Str("amount_quote", intent.AmountQuote.String()).
		Msg("dry-run: order not submitted")
	return exchange.Result{}, errors.New("dry-run executor: order not submitted")
}

var _ market.Fetcher = (*staticFetcher)(nil)
var _ exchange.Executor = (*dryRunExecutor)(nil)
