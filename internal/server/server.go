package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"pairsniper/internal/state"
)

// CycleTrigger requests an immediate out-of-band trading cycle.
type CycleTrigger interface {
	TriggerNow()
}

// Options configure the HTTP listener.
type Options struct {
	ListenAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes the presentation boundary over HTTP: submit a watch
// configuration, read the latest display state, trigger a cycle.
type Server struct {
	opts    Options
	echo    *echo.Echo
	store   *state.Store
	trigger CycleTrigger
	logger  zerolog.Logger
}

// New constructs the HTTP server and registers routes.
func New(opts Options, store *state.Store, trigger CycleTrigger, logger zerolog.Logger) *Server {
	if opts.ListenAddr == "" {
		opts.ListenAddr = ":8080"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if opts.ReadTimeout > 0 {
		e.Server.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		e.Server.WriteTimeout = opts.WriteTimeout
	}

	s := &Server{
		opts:    opts,
		echo:    e,
		store:   store,
		trigger: trigger,
		logger:  logger.With().Str("component", "http_server").Logger(),
	}

	api := e.Group("/api")
	api.PUT("/config", s.submitConfig)
	api.GET("/state", s.displayState)
	api.POST("/cycle", s.triggerCycle)

	return s
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.Info().Str("addr", s.opts.ListenAddr).Msg("http server listening")
		if err := s.echo.Start(s.opts.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("http server terminated")
		}
	}()
}

// Stop gracefully shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
