package routes

import (
	"aerosafety/rbo/dashboard/ui"
	"aerosafety/rbo/internal/api"
	"aerosafety/rbo/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterUIRoutes registers all UI-related routes
func RegisterUIRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers, loginLimiter *middleware.RateLimiter) {
	authHandler := ui.NewAuthHandler(deps.Services.Sessions, deps.Services.Auth, deps.Config.Session, deps.Metrics)
	dashboard := ui.NewDashboardHandler(deps.Services.Operators)

	// Auth routes (public)
	r.Get("/login", authHandler.LoginPage)
	r.With(loginLimiter.Middleware).Post("/login", authHandler.LoginSubmit)
	r.Get("/logout", authHandler.Logout)

	// Dashboard routes (require a session)
	r.Group(func(private chi.Router) {
		private.Use(middleware.SessionAuth(deps.Services.Sessions, deps.Config.Session.CookieName, "/login"))

		private.Get("/", dashboard.Index)
		private.Post("/operators", dashboard.Register)
		private.Get("/operators/{id}/edit", dashboard.Edit)
		private.Post("/operators/{id}", dashboard.Update)
		private.Post("/operators/{id}/delete", dashboard.Delete)
		private.Get("/export", handlers.ExportWorkbook())
	})
}
