package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"league-platform/internal/config"
	"league-platform/internal/handler"
	"league-platform/internal/metrics"
	"league-platform/internal/middleware"
	"league-platform/internal/rbac"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	JWKS  *handler.JWKSHandler
	Org   *handler.OrgHandler
	Audit *handler.AuditHandler
	// Ready backs /health/ready. Nil reports ready.
	Ready func(ctx context.Context) error
}

func New(cfg *config.Config, authenticator *middleware.Authenticator, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(metrics.Instrument)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		if h.Ready != nil {
			if err := h.Ready(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/.well-known/jwks.json", h.JWKS.Get)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/magic-link", h.Auth.RequestMagicLink)
			auth.Post("/magic-link/verify", h.Auth.VerifyMagicLink)
			auth.With(authenticator.RequireAuth).Get("/me", h.Auth.Me)
			auth.With(authenticator.RequireAuth).Post("/context", h.Auth.SwitchContext)
		})

		api.With(authenticator.RequireAuth).Get("/leagues", h.Org.ListLeagues)
		api.With(authenticator.RequireAuth).Get("/clubs/{id}", h.Org.GetClub)
		api.With(authenticator.RequireAuth, authenticator.RequireCan(rbac.ActionViewAudit)).Get("/audit", h.Audit.List)
	})

	return r
}
