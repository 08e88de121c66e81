// Package respond writes the JSON envelope every API endpoint returns:
//
//	{"success": bool, "message": "...", "code": "...", "reason": "...", "field": "...", "data": ...}
package respond

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response body shape. Empty optional fields are omitted.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Field   string `json:"field,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes env with the given status.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Envelope{Success: false, Code: code, Message: message})
}

// TooManyRequests is the reject handler for rate-limited routes.
func TooManyRequests(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.")
}

// Decode reads a JSON request body (at most 1 MiB) into v.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
