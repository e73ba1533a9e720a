package model

import (
	"fmt"
	"strings"
	"time"
)

// HTTPError wraps an HTTP status code so retry logic can inspect it.
type HTTPError struct {
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NetworkError is returned by the API client for transport failures, non-2xx
// statuses, and bodies that are not JSON. Message is safe to show to the user.
type NetworkError struct {
	Path    string
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError means an AI text response did not contain an extractable JSON
// object. Raw is the original text, unchanged.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse AI response: %v", e.Err)
	}
	return "could not parse AI response: no JSON object found"
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError is one failed form precondition, shown next to its field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError stops a submission before any network call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the message for field, or "" if the field passed.
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// ServerRejection is a well-formed response with success:false.
type ServerRejection struct {
	Path    string
	Message string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Path, e.Message)
}
