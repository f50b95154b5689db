package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"aerosafety/rbo/internal/auth"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/logging"
)

// SessionAuth gates the HTML dashboard: requests without a live session
// cookie are redirected to loginPath.
func SessionAuth(sessions *common.SessionService, cookieName, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionClaims(r, sessions, cookieName)
			if err != nil {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIAuth accepts a Bearer token or, for browser callers, the session cookie
func APIAuth(sessions *common.SessionService, tokens *common.TokenService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()
			authHeader := r.Header.Get("Authorization")

			var claims auth.UserClaims

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				tc, err := tokens.ValidateToken(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
				if err != nil {
					common.RespondError(w, initTime, err, constants.MsgUnauthorized, http.StatusUnauthorized)
					return
				}
				jc := &auth.JWTClaims{TokenID: tc.ID, UsernameVal: tc.Username}
				if tc.ExpiresAt != nil {
					jc.Expiry = tc.ExpiresAt.Time
				}
				claims = jc

			default:
				sc, err := sessionClaims(r, sessions, cookieName)
				if err != nil {
					common.RespondError(w, initTime, nil, constants.MsgUnauthorized, http.StatusUnauthorized)
					return
				}
				claims = sc
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionClaims(r *http.Request, sessions *common.SessionService, cookieName string) (*auth.SessionClaims, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, common.ErrSessionNotFound
	}

	session, err := sessions.GetSession(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, common.ErrSessionNotFound) && !errors.Is(err, common.ErrSessionExpired) {
			logging.Error("session lookup failed", "error", err, "request_id", auth.GetRequestID(r.Context()))
		}
		return nil, err
	}

	return &auth.SessionClaims{
		SessionID:   session.SessionID,
		UsernameVal: session.Username,
		Expiry:      session.ExpiresAt,
	}, nil
}
