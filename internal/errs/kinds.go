package errs

import (
	"fmt"
)

// NewDanglingReferenceError creates an integrity error for a row whose
// foreign key points at a row that does not exist.
//
// Example:
//
//	NewDanglingReferenceError("order_items", 7, "product_id", "products", 42)
//	=> "order_items 7: product_id references missing products 42"
func NewDanglingReferenceError(table string, id int64, column, refTable string, refID int64) *Error {
	return &Error{
		Kind:    KindIntegrity,
		Code:    MakeUpperCaseWithUnderscores("dangling reference"),
		Message: fmt.Sprintf("%s %d: %s references missing %s %d", table, id, column, refTable, refID),
	}
}

// NewDuplicateKeyError creates an integrity error for a primary key that
// appears more than once in the same table.
func NewDuplicateKeyError(table string, id int64) *Error {
	return &Error{
		Kind:    KindIntegrity,
		Code:    MakeUpperCaseWithUnderscores("duplicate key"),
		Message: fmt.Sprintf("%s %d: duplicate primary key", table, id),
	}
}

// NewInvalidParameterError creates an error for a rejected query parameter.
//
// This supports extra payload:
//   - errors: optional slice of field errors
//
// The operation the parameters were meant for must not have been attempted.
func NewInvalidParameterError(message string, errors []FieldError) *Error {
	return &Error{
		Kind:    KindInvalidParameter,
		Code:    MakeUpperCaseWithUnderscores("invalid parameter"),
		Message: message,
		Errors:  errors,
	}
}

// NewNotFoundError creates a not-found error.
//
// Supports optional custom code override, e.g. "CUSTOMER_NOT_FOUND".
func NewNotFoundError(message string, code *string) *Error {
	formattedCode := MakeUpperCaseWithUnderscores("not found")
	if code != nil {
		formattedCode = *code
	}

	return &Error{
		Kind:    KindNotFound,
		Code:    formattedCode,
		Message: message,
	}
}

// NewInternalError creates a generic internal error.
//
// The message is intentionally generic; the underlying cause belongs in
// the logs, not in the envelope.
func NewInternalError() *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    MakeUpperCaseWithUnderscores("internal error"),
		Message: "Internal error",
	}
}

// ValidationError converts a generic validation error into an invalid
// parameter error.
func ValidationError(err error) *Error {
	return NewInvalidParameterError("Validation failed: "+err.Error(), nil)
}

// NewSourceError creates an internal error raised while reading a snapshot
// source. Unlike NewInternalError its message is safe to show: it names
// what is wrong with the source, never the driver detail.
func NewSourceError(code, message string) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    MakeUpperCaseWithUnderscores(code),
		Message: message,
	}
}
