package api

import (
	"errors"
	"net/http"
	"time"

	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/logging"
	"aerosafety/rbo/internal/models/dtos/requests"
	"aerosafety/rbo/internal/models/dtos/responses"
	"aerosafety/rbo/internal/services"
)

// IssueToken handles POST /api/v1/auth/token
func (h *Handlers) IssueToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req requests.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondServiceError(w, r, initTime, err, "decode login")
			return
		}

		username, err := h.deps.Services.Auth.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				h.recordLogin("rejected")
				logging.Warn("API login rejected", "username", req.Username, "ip", common.ClientIP(r))
				common.RespondError(w, initTime, nil, constants.MsgInvalidCredentials, http.StatusUnauthorized)
				return
			}
			h.recordLogin("error")
			respondServiceError(w, r, initTime, err, "authenticate")
			return
		}

		token, expiresAt, err := h.deps.Services.Tokens.IssueToken(username)
		if err != nil {
			h.recordLogin("error")
			respondServiceError(w, r, initTime, err, "issue token")
			return
		}

		h.recordLogin("accepted")
		common.RespondSuccess(w, initTime, "Token issued", responses.TokenResponse{
			Token:     token,
			ExpiresIn: int64(time.Until(expiresAt).Seconds()),
			ExpiresAt: expiresAt,
		})
	}
}

func (h *Handlers) recordLogin(result string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	}
}
