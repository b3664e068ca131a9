package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// NetworkError means the request never completed.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-2xx response. Payload is the raw response body.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Payload []byte
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Message returns the server supplied "error" field, if any.
func (e *HTTPError) Message() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Payload, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// IsAuthExpired reports a 401 response.
func IsAuthExpired(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusUnauthorized
}

func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// DisplayMessage prefers the server message and falls back to fallback.
func DisplayMessage(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}
