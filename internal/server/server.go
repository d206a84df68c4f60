// Package server serves the RaymondsIndex dashboard: HTML pages, JSON
// endpoints and rendered charts.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/bobmcallan/raymonds/internal/app"
	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
	"github.com/bobmcallan/raymonds/internal/query"
	"github.com/bobmcallan/raymonds/internal/stepper"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app        *app.App
	server     *http.Server
	logger     *common.Logger
	templates  *template.Template
	scoreRange *stepper.RangeStepper
	search     *query.Observer[models.SearchResults]
}

// Option configures a Server.
type Option func(*Server)

// WithStepperScheduler drives the score-range stepper from s instead of
// wall-clock timers.
func WithStepperScheduler(s stepper.Scheduler) Option {
	return func(srv *Server) {
		srv.scoreRange.Close()
		srv.scoreRange = newScoreRange(srv.app, stepper.WithScheduler(s))
	}
}

func newScoreRange(a *app.App, opts ...stepper.Option) *stepper.RangeStepper {
	opts = append([]stepper.Option{stepper.WithLogger(a.Logger)}, opts...)
	return stepper.New(stepper.ConfigFromCommon(a.Config.Stepper), opts...)
}

// NewServer creates the dashboard server.
func NewServer(a *app.App, opts ...Option) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		app:        a,
		logger:     a.Logger,
		templates:  tmpl,
		scoreRange: newScoreRange(a),
	}
	s.search = query.NewObserver(func(ctx context.Context, q string) query.Result[models.SearchResults] {
		return a.Hooks.Search(ctx, q, liveSearchLimit)
	})
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
		Handler:      applyMiddleware(mux, a.Logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start revalidates any persisted session, then serves (blocking).
func (s *Server) Start(ctx context.Context) error {
	s.app.RestoreSession(ctx)
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting dashboard server")
	return s.server.ListenAndServe()
}

// Shutdown stops the stepper and live search, then drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.scoreRange.Close()
	s.search.Close()
	return s.server.Shutdown(ctx)
}
