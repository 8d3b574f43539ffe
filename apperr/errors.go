// Package apperr defines the error taxonomy shared by all services. Handlers
// map these types to HTTP statuses so no raw upstream error leaks past the
// orchestration boundary.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is a missing or malformed input from the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError is a typed "no results": zero candidates, zero providers,
// an unmatched title. Distinct from an upstream failure.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError is a non-2xx reply from an external collaborator.
type UpstreamError struct {
	Service string
	Status  int
	Msg     string
}

func (e *UpstreamError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
}

func Upstream(service string, status int) error {
	return &UpstreamError{Service: service, Status: status}
}

// UpstreamBody carries a snippet of the reply body for diagnostics.
func UpstreamBody(service string, status int, body []byte) error {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return &UpstreamError{Service: service, Status: status, Msg: string(body)}
}

// TimeoutError is a deadline hit on an outbound call.
type TimeoutError struct {
	Service string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out", e.Service)
}

// SessionStep identifies where the download-client submission chain failed.
type SessionStep string

const (
	StepAuth    SessionStep = "auth"
	StepConnect SessionStep = "connect"
	StepFetch   SessionStep = "fetch"
	StepSubmit  SessionStep = "submit"
)

// SessionError is a failed step of the download-client session workflow. The
// chain aborts on the first failure; there is no rollback.
type SessionError struct {
	Step SessionStep
	Err  error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("download client %s failed: %v", e.Step, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

func Session(step SessionStep, err error) error {
	return &SessionError{Step: step, Err: err}
}

// FromRequestError classifies a transport-level error from an outbound call.
// Context deadline hits become TimeoutError, anything else stays wrapped.
func FromRequestError(service string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Service: service}
	}
	return fmt.Errorf("%s request failed: %w", service, err)
}

// HTTPStatus maps an error to the status code the API replies with.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		timeout    *TimeoutError
		upstream   *UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
