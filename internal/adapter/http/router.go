package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/commledger/internal/adapter/http/handler"
	"github.com/iho/commledger/internal/adapter/http/middleware"
	"github.com/iho/commledger/internal/infrastructure/auth"
	"github.com/iho/commledger/internal/infrastructure/metrics"
	"github.com/iho/commledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	ContributionHandler *handler.ContributionHandler
	TransferHandler     *handler.TransferHandler
	LinkHandler         *handler.LinkHandler
	EntryHandler        *handler.EntryHandler
	IntegrityHandler    *handler.IntegrityHandler
	HealthHandler       *handler.HealthHandler
	JWTManager          *auth.JWTManager
	IdempotencyStore    usecase.IdempotencyStore
	Metrics             *metrics.Metrics
	Logger              zerolog.Logger
	RateLimit           float64
	RateBurst           int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, cfg.Metrics).Limit)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/token", cfg.AuthHandler.Token)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTManager, cfg.Metrics))

			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
			}

			r.Get("/balance", cfg.EntryHandler.GetBalance)

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", cfg.EntryHandler.ListMine)
				r.Get("/{id}", cfg.EntryHandler.Get)
			})

			r.Route("/contributions", func(r chi.Router) {
				r.Post("/", cfg.ContributionHandler.Create)
				r.Get("/", cfg.ContributionHandler.ListMine)
				r.Get("/{id}", cfg.ContributionHandler.Get)
				r.Put("/{id}", cfg.ContributionHandler.Update)
				r.Delete("/{id}", cfg.ContributionHandler.Delete)

				// Moderation
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireModerator)
					r.Get("/all", cfg.ContributionHandler.ListAll)
					r.Post("/{id}/confirm", cfg.ContributionHandler.Confirm)
					r.Post("/{id}/deny", cfg.ContributionHandler.Deny)
				})
			})

			r.Post("/transfers", cfg.TransferHandler.Create)

			r.Route("/links", func(r chi.Router) {
				r.Post("/", cfg.LinkHandler.Create)
				r.Get("/", cfg.LinkHandler.ListMine)
				r.Get("/{code}", cfg.LinkHandler.Get)
				r.Post("/{code}/redeem", cfg.LinkHandler.Redeem)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", cfg.UserHandler.Me)
				r.Get("/{id}", cfg.UserHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", cfg.UserHandler.Create)
					r.Get("/", cfg.UserHandler.List)
				})
			})

			r.With(middleware.RequireAdmin).Get("/ledger/integrity", cfg.IntegrityHandler.Verify)
		})
	})

	return r
}
