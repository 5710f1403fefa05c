package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

var relationRe = regexp.MustCompile(`relation "([^"]+)" does not exist`)

// tableOf prefers the table Postgres reported, then the one named in the
// message, then the "table:<name>:" prefix repositories put on errors.
func tableOf(sqlErr *Error, wrapped string) string {
	if sqlErr.TableName != "" {
		return sqlErr.TableName
	}
	if m := relationRe.FindStringSubmatch(sqlErr.Message); len(m) > 1 {
		return m[1]
	}
	const tablePrefix = "table:"
	if _, rest, ok := strings.Cut(wrapped, tablePrefix); ok {
		table, _, _ := strings.Cut(rest, ":")
		return strings.TrimSpace(table)
	}
	return ""
}

// generateErrorCode builds <DOMAIN>_<ACTION>, e.g. orders + UndefinedTable
// gives ORDER_SCHEMA_NOT_MIGRATED.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "SNAPSHOT"
	}

	domain := strings.ToUpper(tableName)
	if i := strings.LastIndex(domain, "."); i >= 0 {
		domain = domain[i+1:]
	}
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "SOURCE_ERROR"
	switch errType {
	case UndefinedTable, UndefinedColumn:
		action = "SCHEMA_NOT_MIGRATED"
	case InsufficientPrivilege, InvalidAuthorization:
		action = "ACCESS_DENIED"
	case InvalidCatalogName, ConnectionException:
		action = "SOURCE_UNAVAILABLE"
	case QueryCanceled:
		action = "LOAD_CANCELED"
	case InvalidTextValue, NumericOutOfRange, NotNullViolation, CheckViolation:
		action = "INVALID_VALUE"
	case ForeignKeyViolation, UniqueViolation:
		action = "INTEGRITY_VIOLATION"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error, table string) string {
	entityName := humanizeText(table)
	if entityName == "" {
		entityName = "Snapshot"
	}

	switch sqlErr.Code {
	case UndefinedTable:
		return fmt.Sprintf("%s table is missing: schema not migrated, run `analytics migrate`", entityName)
	case UndefinedColumn:
		return fmt.Sprintf("%s table is missing a column: schema not migrated, run `analytics migrate`", entityName)
	case InsufficientPrivilege, InvalidAuthorization:
		return fmt.Sprintf("Access to %s was denied", entityName)
	case InvalidCatalogName, ConnectionException:
		return "The snapshot database is unavailable"
	case QueryCanceled:
		return "Loading the snapshot was canceled"
	case InvalidTextValue, NumericOutOfRange:
		field := humanizeText(sqlErr.ColumnName)
		if field == "" {
			field = "value"
		}
		return fmt.Sprintf("%s holds an unreadable %s", entityName, field)
	default:
		return "An error occurred while reading the snapshot"
	}
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError translates an error from the snapshot database into an
// *errs.Error. Errors that already are *errs.Error pass through.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		table := tableOf(sqlErr, err.Error())
		return errs.NewSourceError(generateErrorCode(table, sqlErr.Code), formatUserFriendlyMessage(sqlErr, table))
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errs.NewSourceError("source unavailable", "The snapshot database is unavailable")
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.NewSourceError("load timeout", "Loading the snapshot timed out")
	case errors.Is(err, context.Canceled):
		return errs.NewSourceError("load canceled", "Loading the snapshot was canceled")
	}

	return errs.NewInternalError()
}
