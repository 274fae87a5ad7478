package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindTransport covers network failures, undecodable responses,
	// unexpected statuses and an open circuit breaker.
	KindTransport Kind = iota
	// KindAuthRequired is a 401: no session or the session expired.
	KindAuthRequired
	// KindValidation is a 400, 413 or 422 with optional per-field messages.
	KindValidation
	// KindNotFound is a 404.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "auth_required"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "transport"
	}
}

var (
	ErrAuthRequired = errors.New("authentication required")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrTransport    = errors.New("transport failure")
)

// Error is returned by Client.Do for every failed request.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	// Fields holds server-side validation messages keyed by json field name.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.Message != "":
		return fmt.Sprintf("api %s %s returned status %d: %s", e.Method, e.Path, e.Status, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Status)
	case e.Message != "":
		return fmt.Sprintf("api %s %s: %s", e.Method, e.Path, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("api %s %s: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("api %s %s: %s", e.Method, e.Path, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindAuthRequired:
		return ErrAuthRequired
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrTransport
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindAuthRequired
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindTransport
	}
}

// KindOf reports the kind of err, or KindTransport for errors that did not
// come from this package.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// FieldErrors returns the server-side field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var apiErr *Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		out := make(map[string]string, len(apiErr.Fields))
		for k, v := range apiErr.Fields {
			out[k] = v
		}
		return out
	}
	return nil
}

func IsAuthRequired(err error) bool { return errors.Is(err, ErrAuthRequired) }
func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }

// IsTransport reports whether err is a transport-kind API error. Plain
// errors that never reached the API (nil client, bad path) are not.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }
