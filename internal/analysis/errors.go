package analysis

import (
	"errors"
	"fmt"
)

// ErrConfiguration means no credential for the text-generation service is configured.
var ErrConfiguration = errors.New("analysis: API key is missing, check your environment configuration")

const (
	CodeConfiguration = "configuration_error"
	CodeService       = "service_error"
	CodeFormat        = "format_error"
	CodeInternal      = "internal_error"
)

// ServiceError wraps a failure of the provider call itself.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("analysis: %s call failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// FormatError means the provider replied but the body is not a valid result.
// Raw keeps the offending payload for diagnostics.
type FormatError struct {
	Reason string
	Raw    string
}

func (e *FormatError) Error() string {
	return "analysis: malformed reply: " + e.Reason
}

// Code classifies err for logs and metrics.
func Code(err error) string {
	var serviceErr *ServiceError
	var formatErr *FormatError
	switch {
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.As(err, &formatErr):
		return CodeFormat
	case errors.As(err, &serviceErr):
		return CodeService
	default:
		return CodeInternal
	}
}
