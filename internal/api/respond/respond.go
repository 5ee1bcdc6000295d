// Package respond writes JSON responses and maps application errors to statuses.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/expense-tracker-be/internal/apperrors"
	"github.com/rs/zerolog/hlog"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// Message writes a {"message": msg} body.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps err to its status and writes a {"message": ...} body. Internal
// errors are logged with their cause and reported to the client generically.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.Status(kind)

	logger := hlog.FromRequest(r)
	switch kind {
	case apperrors.KindInternal:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	case apperrors.KindForbidden, apperrors.KindUnauthenticated, apperrors.KindInvalidCredentials:
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
	}

	Message(w, status, apperrors.PublicMessage(err))
}
