package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agendahub/booking-backend/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrSlotTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrDuplicateWorkHour):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidRefreshToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrPastStartTime),
		errors.Is(err, domain.ErrOutsideWorkHours),
		errors.Is(err, domain.ErrInvalidStartTime),
		errors.Is(err, domain.ErrNaiveStartTime),
		errors.Is(err, domain.ErrUnknownTimezone),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrMissingProvider),
		errors.Is(err, domain.ErrMissingStartsAt),
		errors.Is(err, domain.ErrMissingTimezone),
		errors.Is(err, domain.ErrInvalidWeekday),
		errors.Is(err, domain.ErrInvalidTimeFormat),
		errors.Is(err, domain.ErrInvalidBlockSpan),
		errors.Is(err, domain.ErrInvalidDisplayName),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
