// Package errors provides coded errors and utilities for categorizing them.
package errors

import (
	"context"
	"errors"
	"strings"
)

// IsNetworkError determines if an error is network-related.
// This includes timeouts, connection failures, and invalid responses.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	// the network code may sit anywhere in the chain, a resolution error wraps it
	if Is(err, ErrNetworkError) || Is(err, ErrNetworkTimeout) || Is(err, ErrNetworkInvalidResponse) {
		return true
	}

	// Check for common network error strings
	errStr := strings.ToLower(err.Error())
	networkStrings := []string{
		"dial tcp",
		"no such host",
		"connection refused",
		"connection reset",
		"broken pipe",
	}

	for _, s := range networkStrings {
		if strings.Contains(errStr, s) {
			return true
		}
	}

	return false
}

// IsSetupError reports whether err was raised before any height was copied:
// a destination that already exists, a source that cannot be opened, or a
// bad configuration.
func IsSetupError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if As(err, &tErr) {
		switch tErr.Code() {
		case ERR_DESTINATION_EXISTS,
			ERR_STORAGE_UNAVAILABLE,
			ERR_CONFIGURATION,
			ERR_INVALID_ARGUMENT:
			return true
		}
	}

	return false
}

// IsContextError determines if an error is related to context cancellation or deadline.
func IsContextError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var tErr *Error
	if As(err, &tErr) {
		if tErr.Code() == ERR_CONTEXT_CANCELED || tErr.Code() == ERR_CONTEXT {
			return true
		}
	}

	return false
}

// GetErrorCategory returns a string representing the category of the error.
// This is useful for logging and metrics.
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	if IsContextError(err) {
		return "context"
	}

	if IsSetupError(err) {
		return "setup"
	}

	if IsNetworkError(err) {
		return "network"
	}

	var tErr *Error
	if As(err, &tErr) {
		code := tErr.Code()
		switch {
		case code >= 10 && code <= 19:
			return "block"
		case code >= 50 && code <= 59:
			return "service"
		case code >= 60 && code <= 69:
			return "storage"
		case code >= 120 && code <= 129:
			return "resolution"
		}
	}

	return "unknown"
}
