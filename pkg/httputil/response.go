// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Message is the body of plain HTTP errors that carry no JSON-RPC envelope.
type Message struct {
	Message string `json:"message"`
}

// WriteMessage writes {"message": msg} with the given status code.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Message{Message: msg})
}

// WriteNotFound writes a 404 with the standard "Not Found" message.
func WriteNotFound(w http.ResponseWriter) {
	WriteMessage(w, http.StatusNotFound, "Not Found")
}

// WriteTooManyRequests writes a 429 with the standard throttle message.
func WriteTooManyRequests(w http.ResponseWriter) {
	WriteMessage(w, http.StatusTooManyRequests, "Too Many Attempts.")
}
