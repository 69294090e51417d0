// Package server exposes the engine to the UI over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/trendsonar/internal/domain"
	"github.com/alanyoungcy/trendsonar/internal/server/handler"
	"github.com/alanyoungcy/trendsonar/internal/server/middleware"
	"github.com/alanyoungcy/trendsonar/internal/server/ws"
)

const shutdownTimeout = 10 * time.Second

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // empty disables authentication
	RateLimit   int    // requests per RateWindow per client; 0 disables
	RateWindow  time.Duration
}

// Handlers aggregates the HTTP handlers the server registers. Events and the
// hub are optional.
type Handlers struct {
	Health      *handler.HealthHandler
	Wallet      *handler.WalletHandler
	Trends      *handler.TrendHandler
	Predictions *handler.PredictionHandler
	Submissions *handler.SubmissionHandler
	Profile     *handler.ProfileHandler
	Events      *handler.EventHandler
}

// Server is the local HTTP + WebSocket API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers every route and wraps the mux in CORS, logging, rate
// limiting and auth, outermost first.
func NewServer(cfg Config, handlers Handlers, hub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "server"))
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           newHandler(cfg, handlers, hub, limiter, logger),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

func newHandler(cfg Config, handlers Handlers, hub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/wallet", handlers.Wallet.GetBalance)
	mux.HandleFunc("GET /api/wallet/ledger", handlers.Wallet.ListLedger)

	mux.HandleFunc("GET /api/trends", handlers.Trends.ListTrends)
	mux.HandleFunc("GET /api/trends/predictable", handlers.Trends.ListPredictable)
	mux.HandleFunc("GET /api/trends/radar", handlers.Trends.ListRadar)
	mux.HandleFunc("PUT /api/trends/{id}/heat", handlers.Trends.SetHeat)

	mux.HandleFunc("GET /api/predictions", handlers.Predictions.ListPredictions)
	mux.HandleFunc("POST /api/predictions", handlers.Predictions.OpenPrediction)

	mux.HandleFunc("GET /api/submissions", handlers.Submissions.ListSubmissions)
	mux.HandleFunc("POST /api/submissions", handlers.Submissions.Submit)

	mux.HandleFunc("GET /api/score", handlers.Profile.GetScore)
	mux.HandleFunc("GET /api/profile", handlers.Profile.GetProfile)
	mux.HandleFunc("PUT /api/profile", handlers.Profile.UpdateProfile)
	mux.HandleFunc("GET /api/profile/style", handlers.Profile.GetStyle)
	mux.HandleFunc("PUT /api/profile/style", handlers.Profile.UpdateStyle)

	if handlers.Events != nil {
		mux.HandleFunc("GET /api/events", handlers.Events.ListEvents)
	}
	if hub != nil {
		mux.HandleFunc("GET /ws", hub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey, "/api/health")(h)
	h = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateWindow, logger)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)
	return h
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "server: starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server: listen: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.InfoContext(ctx, "server: shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return ctx.Err()
}
