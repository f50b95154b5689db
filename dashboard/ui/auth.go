package ui

import (
	"errors"
	"net/http"
	"time"

	"aerosafety/rbo/internal/auth"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/config"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/metrics"
	"aerosafety/rbo/internal/services"
)

// AuthHandler manages the dashboard login and logout routes
type AuthHandler struct {
	sessionSvc *common.SessionService
	authSvc    *services.AuthService
	cookie     config.SessionConfig
	metrics    *metrics.MetricsRegistry
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	sessionSvc *common.SessionService,
	authSvc *services.AuthService,
	cookie config.SessionConfig,
	m *metrics.MetricsRegistry,
) *AuthHandler {
	return &AuthHandler{
		sessionSvc: sessionSvc,
		authSvc:    authSvc,
		cookie:     cookie,
		metrics:    m,
	}
}

// LoginPage handles GET /login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	// Already signed in
	if c, err := r.Cookie(h.cookie.CookieName); err == nil {
		if _, err := h.sessionSvc.GetSession(r.Context(), c.Value); err == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	data := map[string]interface{}{
		"PageTitle":    "Login",
		"Notice":       r.URL.Query().Get("notice"),
		"FormUsername": "",
	}
	RenderTemplate(w, http.StatusOK, "auth/login.html", data)
}

// LoginSubmit handles POST /login
func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	canonical, err := h.authSvc.Authenticate(r.Context(), username, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid username or password"
		result := "rejected"
		if !errors.Is(err, services.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
			message = "Sign-in is unavailable, try again later"
			result = "error"
		}
		h.recordLogin(result)
		logging.Warn("dashboard login failed",
			"username", username,
			"ip", common.ClientIP(r),
			"request_id", auth.GetRequestID(r.Context()),
		)

		RenderTemplate(w, status, "auth/login.html", map[string]interface{}{
			"PageTitle":    "Login",
			"Error":        message,
			"FormUsername": username,
		})
		return
	}

	session, err := h.sessionSvc.CreateSession(r.Context(), canonical)
	if err != nil {
		h.recordLogin("error")
		logging.Error("failed to create session", "username", canonical, "error", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.recordLogin("accepted")
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    session.SessionID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	logging.Info("dashboard login", "username", canonical)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(h.cookie.CookieName); err == nil {
		if err := h.sessionSvc.DeleteSession(r.Context(), c.Value); err != nil {
			logging.Warn("failed to delete session on logout", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/login?notice=Signed+out", http.StatusSeeOther)
}

func (h *AuthHandler) recordLogin(result string) {
	if h.metrics != nil {
		h.metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	}
}
