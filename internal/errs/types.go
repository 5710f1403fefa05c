package errs

import (
	"errors"
	"strings"
)

// FieldError represents a field-level parameter error.
// Example:
//
//	{ "field": "months_back", "error": "must be at least 0" }
type FieldError struct {
	// Field is the parameter name the error relates to (e.g. "limit").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// Kind is a string-based enum naming the category of an error.
type Kind string

const (
	// KindIntegrity marks a snapshot that violates referential or key
	// integrity. It is fatal to a load.
	KindIntegrity Kind = "integrity_error"

	// KindInvalidParameter marks a rejected query parameter. The operation
	// was not attempted.
	KindInvalidParameter Kind = "invalid_parameter"

	// KindNotFound marks a lookup of an entity the snapshot does not hold.
	KindNotFound Kind = "not_found"

	// KindInternal is everything else: driver failures, I/O, bugs.
	KindInternal Kind = "internal"
)

// Error is the main custom error type.
//
// It implements the `error` interface via Error() and is designed to be
// serialized directly into the response envelope.
// Fields:
//   - Kind: error category, see the Kind constants.
//   - Code: machine-friendly error code (e.g. "DANGLING_REFERENCE").
//   - Message: human-friendly message.
//   - Errors: list of per-field errors (parameter validation).
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// Errors holds field-level errors, typically for rejected parameters.
	Errors []FieldError `json:"errors,omitempty"`
}

// Sentinels usable as errors.Is targets. Only Kind is compared.
var (
	ErrIntegrity        = &Error{Kind: KindIntegrity}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrInternal         = &Error{Kind: KindInternal}
)

// Error makes *Error satisfy the built-in `error` interface.
func (e *Error) Error() string {
	return e.Message
}

// Is customizes how errors.Is(...) treats Error.
//
// It returns true if target is also an *Error of the same Kind, or an
// *Error with an empty Kind (which matches any *Error). Code and Message
// are not compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == "" || t.Kind == e.Kind
}

// WithMessage returns a *copy* of this Error with Message replaced.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Errors:  e.Errors,
	}
}

// KindOf returns the Kind of the first *Error found in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"dangling reference" -> "DANGLING_REFERENCE"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
