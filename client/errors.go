package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the relations API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("relations: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("relations: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// StreamError reports a server-side failure that ended a stream after
// Visited nodes had been delivered. It unwraps to the *APIError describing
// the failure, so IsUnavailable and friends apply.
type StreamError struct {
	*APIError
	Visited int
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("%s after %d streamed nodes", e.APIError.Error(), e.Visited)
}

// Unwrap returns the underlying API error.
func (e *StreamError) Unwrap() error { return e.APIError }

func statusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

// IsConflict returns true if the error is a 409 conflict (duplicate key).
func IsConflict(err error) bool { return statusOf(err) == http.StatusConflict }

// IsUnavailable returns true if the server could not reach its store.
func IsUnavailable(err error) bool { return statusOf(err) == http.StatusServiceUnavailable }

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
