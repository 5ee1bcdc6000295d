package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/expense-tracker-be/internal/apperrors"
	"github.com/isdelr/expense-tracker-be/internal/models"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst. Malformed values of the domain types
// get their own messages; anything else is reported as an invalid body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidAmount):
			return apperrors.Validation("Amount must be a positive number")
		case errors.Is(err, models.ErrInvalidDate):
			return apperrors.Validation("Date must be in YYYY-MM-DD format")
		default:
			return apperrors.Validation("Invalid request body")
		}
	}
	return nil
}
