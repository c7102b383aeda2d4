package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the mining API could not be reached.
	ErrUnavailable = errors.New("mining api unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("mining api request timed out")

	// ErrUnauthorized indicates the token was missing or rejected.
	ErrUnauthorized = errors.New("mining api rejected credentials")

	// ErrInvalidResponse indicates the body could not be decoded.
	ErrInvalidResponse = errors.New("invalid mining api response")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("mining api retry attempts exhausted")
)

// Error is a failure reported by the server, either through a non-2xx status
// or an envelope with success=false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mining api returned status %d", e.Status)
	}
	return fmt.Sprintf("mining api returned status %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Status == 401 || e.Status == 403 {
		return ErrUnauthorized
	}
	return nil
}

// UserMessage returns the server-provided message carried by err, or fallback
// when there is none.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func errorCode(err error) string {
	var apiErr *Error
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrInvalidResponse):
		return "INVALID_RESPONSE"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("HTTP_%d", apiErr.Status)
	default:
		return "UNKNOWN"
	}
}
