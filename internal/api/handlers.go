package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"aerosafety/rbo/internal/auth"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/logging"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// decodeJSON reads a single JSON object from the request body
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return repositories.NewValidationError("body", err.Error())
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return repositories.NewValidationError("body", "must contain a single JSON object")
	}
	return nil
}

// respondServiceError maps domain errors onto status codes
func respondServiceError(w http.ResponseWriter, r *http.Request, initTime time.Time, err error, action string) {
	var ve *repositories.ValidationError

	switch {
	case errors.Is(err, repositories.ErrOperatorNotFound):
		common.RespondError(w, initTime, nil, constants.MsgOperatorNotFound, http.StatusNotFound)
	case errors.As(err, &ve):
		common.RespondError(w, initTime, ve, constants.MsgInvalidBody, http.StatusBadRequest)
	default:
		logging.Error(fmt.Sprintf("failed to %s", action),
			"error", err,
			"request_id", auth.GetRequestID(r.Context()),
			"username", auth.Username(r.Context()),
		)
		common.RespondError(w, initTime, err, constants.MsgInternal, http.StatusInternalServerError)
	}
}
