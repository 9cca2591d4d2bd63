package errors

import (
	stdErrors "errors"
	"fmt"
)

// RateLimitError is returned when an upstream API refuses further requests.
type RateLimitError struct {
	Service string
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Service == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// NewRateLimitError creates a RateLimitError for the named service.
func NewRateLimitError(service, message string) *RateLimitError {
	return &RateLimitError{Service: service, Message: message}
}

// IsRateLimitError reports whether err is a RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return stdErrors.As(err, &rlErr)
}
