package respond

import (
	"encoding/json"
	"net/http"
)

// Failure is the body of an error response. State carries whatever the
// client should render next, e.g. the unchanged dashboard.
type Failure struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	State any    `json:"state,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, Failure{Error: message})
}

func Fail(w http.ResponseWriter, r *http.Request, code int, kind, message string, state any) {
	JSON(w, r, code, Failure{Error: message, Kind: kind, State: state})
}
