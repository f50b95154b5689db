package routes

import (
	"aerosafety/rbo/internal/api"
	"aerosafety/rbo/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, loginLimiter *middleware.RateLimiter) {
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any of major browsers
		}))

		// public
		v1.With(loginLimiter.Middleware).Post("/auth/token", handlers.IssueToken())

		// everything else needs a bearer token or a dashboard session
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.APIAuth(deps.Services.Sessions, deps.Services.Tokens, deps.Config.Session.CookieName))

			authed.Route("/operators", func(ops chi.Router) {
				ops.Get("/", handlers.ListOperators())
				ops.Post("/", handlers.CreateOperator())
				ops.Get("/stats/average", handlers.AverageStat())
				ops.Get("/stats/top", handlers.TopStat())
				ops.Get("/stats/summary", handlers.SummaryStat())
				ops.Get("/{id}", handlers.GetOperator())
				ops.Put("/{id}", handlers.UpdateOperator())
				ops.Delete("/{id}", handlers.DeleteOperator())
			})

			authed.Get("/risk/policies", handlers.ListPolicies())
			authed.Post("/risk/classify", handlers.Classify())
			authed.Get("/export.xlsx", handlers.ExportWorkbook())
		})
	})
}
