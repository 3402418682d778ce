package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/briefly/internal/middleware"
	"github.com/dmitrymomot/briefly/pkg/ratelimit"
)

// RouterConfig wires the middleware chain around the handlers.
type RouterConfig struct {
	JWTSecret      string
	ConnectLimiter ratelimit.Limiter
	RefreshLimiter ratelimit.Limiter
	Log            *slog.Logger
	Probes         map[string]Probe
}

// NewRouter assembles the service's HTTP surface. The callback endpoint
// is unauthenticated: the browser arrives there from Google, and the
// state round trip is what ties it back to an owner.
func NewRouter(oauth *OAuth, cfg RouterConfig) http.Handler {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Log))
	r.Use(middleware.Recover(cfg.Log))

	r.Method(http.MethodGet, "/health", NewHealth(cfg.Probes))
	r.Get("/oauth/google/callback", oauth.Callback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.With(middleware.RateLimit(cfg.ConnectLimiter, "connect")).
			Get("/oauth/google/connect", oauth.Connect)
		r.With(middleware.RateLimit(cfg.RefreshLimiter, "refresh")).
			Post("/token/refresh", oauth.Refresh)

		r.Delete("/oauth/google", oauth.Disconnect)
		r.Get("/oauth/google/calendars", oauth.Calendars)
		r.Put("/oauth/google/calendar", oauth.SetCalendar)
	})

	return r
}
