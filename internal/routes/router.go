package routes

import (
	"net/http"

	"aerosafety/rbo/internal/api"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes builds the full HTTP surface: ops endpoints, the HTML
// dashboard and the JSON API.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	proxies, err := deps.Config.TrustedProxyPrefixes()
	if err != nil {
		logging.Warn("ignoring trusted_proxies", "error", err)
		proxies = nil
	}

	// global middleware
	r.Use(middleware.TrustedRealIP(proxies))
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	logging.Info("Router initialized with metrics and logging middleware")

	// ops
	r.Get("/healthCheck", api.HealthCheckHandler(deps))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)

	loginLimiter := middleware.NewRateLimiter(
		deps.Config.Login.RatePerSecond,
		deps.Config.Login.Burst,
		deps.Config.Login.WhitelistedIPs,
	)

	RegisterUIRoutes(r, deps, handlers, loginLimiter)
	RegisterAPIRoutes(r, deps, handlers, loginLimiter)

	return r
}
