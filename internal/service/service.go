package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pairsniper/internal/alerting"
	"pairsniper/internal/exchange"
	"pairsniper/internal/market"
	"pairsniper/internal/scheduler"
	"pairsniper/internal/state"
	"pairsniper/internal/strategy"
)

// Options tune per-phase deadlines of the engine.
type Options struct {
	OrderTimeout  time.Duration
	NotifyTimeout time.Duration
}

// Engine orchestrates one trading cycle: fetch, evaluate, optionally
// execute, report. A failed fetch skips the rest of the cycle and leaves
// displayed state untouched; execution and notification failures are
// recorded and the loop continues.
type Engine struct {
	scheduler *scheduler.Scheduler
	store     *state.Store
	market    market.Fetcher
	strategy  strategy.Strategy
	executor  exchange.Executor
	notifier  alerting.Notifier
	logger    zerolog.Logger
	opts      Options

	// execMu serialises order submission; at most one order may be in
	// flight process-wide regardless of how a cycle was entered.
	execMu sync.Mutex
}

// New constructs the trading engine.
func New(sched *scheduler.Scheduler, store *state.Store, fetcher market.Fetcher, strat strategy.Strategy, executor exchange.Executor, notifier alerting.Notifier, opts Options, logger zerolog.Logger) *Engine {
	if opts.OrderTimeout <= 0 {
		opts.OrderTimeout = 30 * time.Second
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	return &Engine{
		scheduler: sched,
		store:     store,
		market:    fetcher,
		strategy:  strat,
		executor:  executor,
		notifier:  notifier,
		logger:    logger.With().Str("component", "engine").Logger(),
		opts:      opts,
	}
}

// Run begins the polling loop.
func (e *Engine) Run(ctx context.Context) error {
	if e.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return e.scheduler.Run(ctx, e.Cycle)
}

// TriggerNow requests one immediate out-of-band cycle.
func (e *Engine) TriggerNow() {
	if e.scheduler != nil {
		e.scheduler.TriggerNow()
	}
}

// Cycle runs one full pass. The configuration is read once at the top;
// edits landing mid-cycle apply from the next cycle on.
func (e *Engine) Cycle(ctx context.Context, firedAt time.Time, onDemand bool) error {
	cfg, ok := e.store.Configuration()
	if !ok {
		e.logger.Debug().Msg("no watch configuration submitted; skipping cycle")
		return nil
	}

	snap, err := e.market.Fetch(ctx, cfg.Pair)
	if err != nil {
		return fmt.Errorf("fetch market data: %w", err)
	}
	e.store.PublishSnapshot(snap)

	var summary *alerting.TradeSummary
	if intent, fire := e.strategy.Decide(snap, cfg); fire {
		e.logger.Info().
			Str("pair", snap.Pair.String()).
			Str("price_change_pct", snap.PriceChangePct.String()).
			Str("volume", snap.Volume.String()).
			Msg("thresholds crossed")

		outcome := e.execute(ctx, intent, cfg.Exchange)
		e.store.PublishTrade(outcome)
		summary = &alerting.TradeSummary{
			Side:           outcome.Side,
			Executed:       outcome.Executed,
			FilledQuantity: outcome.FilledQuantity,
			FillPrice:      outcome.FillPrice,
			Error:          outcome.Error,
		}
	}

	e.notify(cfg.Messaging, alerting.Notification{Snapshot: snap, Trade: summary})
	return nil
}

func (e *Engine) execute(ctx context.Context, intent exchange.Intent, creds exchange.Credentials) state.TradeOutcome {
	e.execMu.Lock()
	defer e.execMu.Unlock()

	// An order is never abandoned mid-flight: submission is detached
	// from shutdown cancellation and bounded by its own timeout.
	execCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.opts.OrderTimeout)
	defer cancel()

	outcome := state.TradeOutcome{Side: string(intent.Side), At: time.Now().UTC()}

	res, err := e.executor.Execute(execCtx, intent, creds)
	if err != nil {
		e.logger.Error().Err(err).Str("pair", intent.Pair.String()).Msg("trade execution failed")
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Executed = true
	outcome.OrderID = res.OrderID
	outcome.FilledQuantity = res.FilledQuantity
	outcome.FillPrice = res.FillPrice
	return outcome
}

// notify makes one bounded attempt; failure is logged, never escalated.
func (e *Engine) notify(creds alerting.Credentials, note alerting.Notification) {
	if e.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.NotifyTimeout)
	defer cancel()

	if err := e.notifier.Notify(ctx, creds, note); err != nil {
		e.logger.Error().Err(err).Str("pair", note.Snapshot.Pair.String()).Msg("failed to dispatch notification")
	}
}
