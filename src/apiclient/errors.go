package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrConversationNotFound indicates the conversation doesn't exist server-side
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNoUserID indicates a request was made without an identity
	ErrNoUserID = errors.New("user id is required")

	// ErrEmptyResponse indicates the API returned an empty response
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("operation timed out")

	// ErrRateLimited indicates rate limiting
	ErrRateLimited = errors.New("rate limited")
)

// ErrorResponse is the error body returned by the backend. Both the nested
// {"error":{...}} form and the flat {"detail":"..."} form are accepted.
type ErrorResponse struct {
	Error  *APIError `json:"error,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// APIError represents an error response from the backend.
type APIError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	RequestID  string `json:"-"`
	RetryAfter string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error is retryable.
func (e *APIError) IsRetryable() bool {
	if e.StatusCode >= 500 && e.StatusCode < 600 {
		return true
	}
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	switch e.Code {
	case "timeout", "connection_error", "server_error":
		return true
	}
	return false
}

// IsRateLimit returns true if this is a rate limit error.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsNotFound returns true if the resource does not exist.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// ValidationError represents a request rejected before it was sent.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// TimeoutError represents a timeout error with context.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
	Cause     error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s timed out after %v: %v", e.Operation, e.Duration, e.Cause)
	}
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying error.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// Is implements error matching.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Timeout reports true so transport-level consumers treat it like a net.Error timeout.
func (e *TimeoutError) Timeout() bool {
	return true
}

// StreamError is returned when a chat stream could not be opened.
type StreamError struct {
	ConversationID string
	Err            error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	return fmt.Sprintf("chat stream for conversation %q: %v", e.ConversationID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) {
		return true
	}

	return false
}

// IsNotFound reports whether err means the requested resource does not exist.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrConversationNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNotFound()
}

// GetRetryDelay returns the delay before the given retry attempt.
func GetRetryDelay(err error, attempt int, base time.Duration) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsRateLimit() && apiErr.RetryAfter != "" {
		if d, perr := time.ParseDuration(apiErr.RetryAfter + "s"); perr == nil {
			return d
		}
	}

	delay := base * time.Duration(attempt)
	if delay > time.Minute {
		delay = time.Minute
	}
	return delay
}
