package netutil

import (
	"net/http"

	"github.com/goccy/go-json"
)

type errorRes struct {
	Error string `json:"error"`
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError emits the {"error": ...} envelope clients key off of. The
// message must already be safe to expose.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, errorRes{Error: message})
}
