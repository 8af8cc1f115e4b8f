package api

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "parkease/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps domain errors to their HTTP status; anything outside the
// taxonomy is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, err error) {
	status := apperrors.StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
		message = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}
