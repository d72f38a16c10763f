package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// APIResponse is the envelope every API response is wrapped in.
type APIResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func WriteError(w http.ResponseWriter, status int, message string, err error) {
	env := envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		env.Error = err.Error()
	}
	WriteJSON(w, status, env)
}
