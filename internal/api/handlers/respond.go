package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avelara/keyauth-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage writes a {"message": ...} body with the given status.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps a service error onto the HTTP status and message the
// API contract promises. Anything outside the taxonomy is logged and
// reported as a generic 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid Email or Password")
	case errors.Is(err, apperr.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, apperr.ErrConflict):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, apperr.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "Unauthorized Access")
	case errors.Is(err, apperr.ErrInvalidResetToken):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
	default:
		log.Error().Err(err).Msg("Unhandled error")
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
	}
}
