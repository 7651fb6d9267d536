/**
 * @description
 * JSON response helpers and the mapping from domain errors onto HTTP status
 * codes. Validation and authorization failures surface as 4xx with a
 * human-readable message; unexpected failures collapse to a generic 500.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Hempp/gradeup-nil-sub012/internal/domain"
)

// respondWithJSON writes a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes an error body with the status derived from the
// error's domain classification.
func respondWithError(w http.ResponseWriter, err error) {
	respondWithJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

// statusForError maps domain errors to HTTP status codes. The verification
// and connect endpoints use 400 for every validation/authorization/not-found
// failure, matching the web client's contract; only missing authentication
// gets 401.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAuthorization),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrScope),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
