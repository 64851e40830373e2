package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that carry their own HTTP status.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors, matched with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrUpstream           = errors.New("upstream service error")
)

// Conflict reasons reported to clients.
const (
	ReasonDuplicateName          = "duplicate_name"
	ReasonCycleDetected          = "cycle_detected"
	ReasonConcurrentModification = "concurrent_modification"
)

// ValidationError is returned before any store access when input is malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError carries a machine-readable Reason next to the message.
type ConflictError struct {
	Message      string
	Reason       string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// UnavailableError reports that a backing service cannot be used right now.
// Callers may retry. Err, when set, is the transport failure behind it.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrServiceUnavailable }

// UpstreamError wraps a failed embedding or chat-completion call.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) StatusCode() int { return http.StatusBadGateway }

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// StatusCode resolves the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
