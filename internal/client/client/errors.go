package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")

	// ErrAuthRequired is returned without contacting the server when a
	// protected request is attempted with no stored token.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTokenInvalid is returned without contacting the server when the
	// stored token cannot be used. The session has already been ended.
	ErrTokenInvalid   = errors.New("session token invalid")
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrTokenInvalid)
	ErrTokenExpired   = fmt.Errorf("%w: expired", ErrTokenInvalid)
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		return nil
	}
}

// parseError builds an APIError from a response body. The backend answers
// either {"message": "..."} or the framework's {"error": "...", "message": ...}
// shape; anything else is kept as trimmed text.
func parseError(statusCode int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			return &APIError{StatusCode: statusCode, Message: payload.Message}
		case payload.Error != "":
			return &APIError{StatusCode: statusCode, Message: payload.Error}
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}
