package recoversdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes shared between server and client.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidIdentifier = "invalid_identifier"
	ErrorCodeSessionNotFound   = "session_not_found"
	ErrorCodeSessionExpired    = "session_expired"
	ErrorCodeSessionBlocked    = "session_blocked"
	ErrorCodeInvalidState      = "invalid_session_state"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeNotEnrolled       = "not_enrolled"
	ErrorCodeRateLimited       = "rate_limited"
	ErrorCodeServerError       = "server_error"
)

// APIError is the error envelope of every non-2xx response. The server
// writes it; the client decodes it back so callers can switch on Code.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the envelope to an HTTP response. Used by the server's
// handlers.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// NewAPIError builds an error envelope.
func NewAPIError(status int, code, description string) *APIError {
	return &APIError{StatusCode: status, Code: code, Description: description}
}
