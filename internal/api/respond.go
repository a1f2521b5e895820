package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondJSONRedirect reports a precondition failure along with where the
// client should go instead.
func respondJSONRedirect(w http.ResponseWriter, message, redirect string, status int) {
	respondJSON(w, status, map[string]string{"error": message, "redirect": redirect})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
