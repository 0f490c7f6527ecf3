package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"hoarding-server/logger"
	"hoarding-server/utils/errors"
)

// ErrorMiddleware recovers panics and answers with a standardized JSON error
func ErrorMiddleware(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Errorw("panic recovered", "panic", rec, "path", r.URL.Path)
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as a JSON APIError response
func WriteError(w http.ResponseWriter, err error) {
	apiErr, ok := errors.As(err)
	if !ok {
		apiErr = errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Message, errors.ErrInternal.Status)
	}
	if apiErr.Status >= 500 {
		logger.Named("http").Errorw("server error", "error", apiErr.Error(), "details", apiErr.Details)
	}

	WriteJSON(w, apiErr.Status, apiErr)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
