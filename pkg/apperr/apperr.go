// Package apperr defines the error taxonomy shared by every service. Domain
// code returns these values; only the HTTP boundary turns a Kind into a status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable error code exposed to clients.
type Kind string

const (
	KindEmailTaken            Kind = "EMAIL_TAKEN"
	KindInvalidCredentials    Kind = "INVALID_CREDENTIALS"
	KindInvalidOrExpiredToken Kind = "INVALID_OR_EXPIRED_TOKEN"
	KindMissingCredential     Kind = "MISSING_CREDENTIAL"
	KindUpstreamUnavailable   Kind = "UPSTREAM_UNAVAILABLE"
	KindNotFound              Kind = "NOT_FOUND"
	KindForbidden             Kind = "FORBIDDEN"
	KindValidation            Kind = "VALIDATION_ERROR"
	KindConflict              Kind = "CONFLICT"
	KindMethodNotAllowed      Kind = "METHOD_NOT_ALLOWED"
	KindInternal              Kind = "INTERNAL_ERROR"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindEmailTaken:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindInvalidOrExpiredToken, KindMissingCredential:
		return http.StatusUnauthorized
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

// New returns a sentinel-style error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err under kind while keeping it in the chain.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation wraps a payload validation failure; its text becomes the details.
func Validation(err error) *Error {
	e := &Error{Kind: KindValidation, Message: "Validation error", Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindInternal
}
