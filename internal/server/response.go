package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// errorBody is the JSON error envelope. URL or HTML echo the request input
// on render failures.
type errorBody struct {
	Error string `json:"error"`
	URL   string `json:"url,omitempty"`
	HTML  string `json:"html,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeBinary writes a rendered document with caching disabled.
func writeBinary(w http.ResponseWriter, contentType string, buf []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(buf)))
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf)
}
