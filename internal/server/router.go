package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"stockledger/internal/commons"
	"stockledger/internal/domain"
	"stockledger/internal/infrastructure/metrics"
	"stockledger/internal/middleware"
)

const rateWindow = time.Minute

// RouteMounter is implemented by every module controller.
type RouteMounter interface {
	Routes(r chi.Router)
}

type RouterConfig struct {
	Inputs   RouteMounter
	Products RouteMounter
	Reports  RouteMounter

	Metrics        *metrics.Metrics
	JWTSecret      []byte
	RequestTimeout time.Duration
	RateLimit      int
	// Health reports whether the service can reach its database.
	Health func(ctx context.Context) error
	Logger *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "no-referrer",
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(secureMiddleware.Handler)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				logger.Error("health check failed", zap.Error(err))
				commons.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"}, logger)
				return
			}
		}
		commons.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(middleware.Authenticate(cfg.JWTSecret, logger))
		if cfg.RateLimit > 0 {
			r.Use(middleware.LimitMutations(cfg.RateLimit, rateWindow, logger))
		}

		r.With(middleware.RequireRole(logger, domain.RoleAdmin, domain.RoleEmployee)).
			Route("/inputs", cfg.Inputs.Routes)
		r.With(middleware.RequireRole(logger, domain.RoleAdmin, domain.RoleEmployee, domain.RoleManager)).
			Route("/products", cfg.Products.Routes)
		r.With(middleware.RequireRole(logger, domain.RoleAdmin, domain.RoleEmployee, domain.RoleManager)).
			Route("/reports", cfg.Reports.Routes)
	})

	return r
}
