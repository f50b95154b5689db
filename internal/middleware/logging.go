package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"aerosafety/rbo/internal/auth"
	"aerosafety/rbo/internal/common"
	"aerosafety/rbo/internal/constants"
	"aerosafety/rbo/internal/logging"
)

// Recoverer turns a handler panic into a 500 and an error log line
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logging.Error("panic serving request",
				"request_id", auth.GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			common.RespondError(w, time.Now(), nil, constants.MsgInternal, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
