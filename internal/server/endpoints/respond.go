package endpoints

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// ErrorResponse is the error payload every handler writes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// pathID parses the {id} route segment.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// pathName decodes the {name} route segment.
func pathName(r *http.Request) (string, error) {
	return url.PathUnescape(r.PathValue("name"))
}
