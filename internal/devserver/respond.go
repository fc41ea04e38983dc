package devserver

import (
	"encoding/json"
	"io"
	"net/http"
)

const msgMissingJSON = "Missing JSON in request"

// jsonResponse writes a JSON response.
func jsonResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// errorResponse writes {"error": msg}.
func errorResponse(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

func messageResponse(w http.ResponseWriter, msg string) {
	jsonResponse(w, http.StatusOK, map[string]string{"message": msg})
}

// decodeJSON reads a JSON request body into v and reports whether it could.
// On failure it has already written a 400 response.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		errorResponse(w, http.StatusBadRequest, msgMissingJSON)
		return false
	}
	return true
}
