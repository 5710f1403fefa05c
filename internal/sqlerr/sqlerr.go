// Package sqlerr handles database driver errors.
//
// It parses the SQLSTATE codes pgx reports while a snapshot is read and
// converts them into errs values with a readable message, e.g. an
// undefined table becomes "schema not migrated".
package sqlerr

import (
	"github.com/jackc/pgx/v5/pgconn"
)

// Code is a driver-independent name for a SQLSTATE class we care about.
type Code string

const (
	Other                 Code = "other"
	UndefinedTable        Code = "undefined_table"
	UndefinedColumn       Code = "undefined_column"
	InsufficientPrivilege Code = "insufficient_privilege"
	InvalidAuthorization  Code = "invalid_authorization"
	InvalidCatalogName    Code = "invalid_catalog_name"
	ConnectionException   Code = "connection_exception"
	QueryCanceled         Code = "query_canceled"
	InvalidTextValue      Code = "invalid_text_representation"
	NumericOutOfRange     Code = "numeric_value_out_of_range"
	ForeignKeyViolation   Code = "foreign_key_violation"
	UniqueViolation       Code = "unique_violation"
	NotNullViolation      Code = "not_null_violation"
	CheckViolation        Code = "check_violation"
)

var pgCodes = map[string]Code{
	"42P01": UndefinedTable,
	"42703": UndefinedColumn,
	"42501": InsufficientPrivilege,
	"28000": InvalidAuthorization,
	"28P01": InvalidAuthorization,
	"3D000": InvalidCatalogName,
	"57014": QueryCanceled,
	"22P02": InvalidTextValue,
	"22003": NumericOutOfRange,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23502": NotNullViolation,
	"23514": CheckViolation,
}

// MapCode maps a SQLSTATE to a Code. Any class 08 state is a connection
// exception.
func MapCode(sqlState string) Code {
	if c, ok := pgCodes[sqlState]; ok {
		return c
	}
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionException
	}
	return Other
}

// Severity is the level Postgres attached to an error.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityUnknown Severity = "UNKNOWN"
)

// MapSeverity normalizes the severity string of a PgError.
func MapSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityError, SeverityFatal, SeverityPanic:
		return Severity(s)
	default:
		return SeverityUnknown
	}
}

// Error is a Postgres error normalized to our enums. It keeps the driver
// error for Unwrap.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// ConvertPgError converts a raw Postgres error into an *Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}
