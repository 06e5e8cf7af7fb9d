// Package apperr defines the application error taxonomy and how each kind of
// failure is reported over HTTP.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure independently of the transport.
type Kind int

const (
	Internal Kind = iota
	AuthenticationRequired
	InvalidCredential
	ValidationFailed
	NotFound
	PayloadTooLarge
	UnsupportedMediaType
	RateLimited
	StorageFailure
)

func (k Kind) String() string {
	switch k {
	case AuthenticationRequired:
		return "authentication_required"
	case InvalidCredential:
		return "invalid_credential"
	case ValidationFailed:
		return "validation_failed"
	case NotFound:
		return "not_found"
	case PayloadTooLarge:
		return "payload_too_large"
	case UnsupportedMediaType:
		return "unsupported_media_type"
	case RateLimited:
		return "rate_limited"
	case StorageFailure:
		return "storage_failure"
	default:
		return "internal"
	}
}

// Violation is a single failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the concrete error type carried through the service layers.
// Message is safe to show to clients; Err is the internal cause and is only logged.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Err        error

	// StatusOverride replaces the kind's default HTTP status when non-zero.
	StatusOverride int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Storage wraps a data-store failure. The cause never reaches the client.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: StorageFailure, Message: "internal server error", Err: fmt.Errorf("%s: %w", op, err)}
}

// Validation builds a ValidationFailed error holding every violation.
func Validation(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &Error{Kind: ValidationFailed, Message: "validation failed", Violations: violations}
}

// KindOf reports the kind of err, or Internal when err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
