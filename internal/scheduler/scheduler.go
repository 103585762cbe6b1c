package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked once per cycle. onDemand marks out-of-band triggers.
type TickFunc func(ctx context.Context, firedAt time.Time, onDemand bool) error

// Options tune scheduler behaviour.
type Options struct {
	Interval     time.Duration
	StartupDelay time.Duration
}

// Scheduler drives the trading loop: a fixed interval plus an on-demand
// trigger. Both paths run the tick on the same goroutine, so cycles are
// never concurrent with each other; triggers arriving mid-cycle are
// coalesced into at most one pending run.
type Scheduler struct {
	opts    Options
	logger  zerolog.Logger
	trigger chan struct{}
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{
		opts:    opts,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		trigger: make(chan struct{}, 1),
	}
}

// TriggerNow requests one out-of-band cycle. Requests arriving while one
// is already pending are dropped.
func (s *Scheduler) TriggerNow() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run blocks, invoking the tick function until ctx is cancelled. A tick
// already running when ctx is cancelled completes before Run returns; tick
// errors are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.runTick(ctx, tick, false)
		case <-s.trigger:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.runTick(ctx, tick, true)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context, tick TickFunc, onDemand bool) {
	firedAt := time.Now().UTC()
	s.logger.Debug().Time("fired_at", firedAt).Bool("on_demand", onDemand).Msg("executing tick")

	if err := tick(ctx, firedAt, onDemand); err != nil {
		s.logger.Error().Err(err).Time("fired_at", firedAt).Bool("on_demand", onDemand).Msg("tick execution failed")
	}
}
