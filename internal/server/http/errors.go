package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/and161185/lovary/internal/errs"
	"go.uber.org/zap"
)

// errTooLarge marks request bodies over the upload limit.
var errTooLarge = errors.New("request body too large")

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable code
	Message string `json:"message"` // human-readable text
}

// statusOf maps a service error to an HTTP status and a stable code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, errs.ErrAlreadyExpired):
		return http.StatusBadRequest, "already_expired"
	case errors.Is(err, errs.ErrDuplicateEntry):
		return http.StatusConflict, "duplicate_entry"
	case errors.Is(err, errs.ErrWindowClosed):
		return http.StatusForbidden, "window_closed"
	case errors.Is(err, errs.ErrNoPartner):
		return http.StatusBadRequest, "no_partner"
	case errors.Is(err, errs.ErrAlreadyPaired):
		return http.StatusConflict, "already_paired"
	case errors.Is(err, errs.ErrSelfPairing):
		return http.StatusBadRequest, "self_pairing"
	case errors.Is(err, errs.ErrRequestExists):
		return http.StatusConflict, "request_exists"
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// fail writes err as an ErrorResponse. Internal errors are logged and
// their text never reaches the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
