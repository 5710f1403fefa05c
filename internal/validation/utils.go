package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/storefront-analytics/internal/errs"
	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by request types that know how to validate
// themselves, usually by calling Struct and then adding custom checks.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule struct tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validatorInstance names fields after their `param` tag so errors use the
// names users typed, e.g. "months_back" rather than "MonthsBack".
func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("param"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct runs the struct tag rules on v.
func Struct(v any) error {
	return validatorInstance().Struct(v)
}

// BindAndValidate fills payload with bind, when given, and validates it.
// Bind failures are expected to be *errs.Error already.
func BindAndValidate(payload Validatable, bind func() error) error {
	if bind != nil {
		if err := bind(); err != nil {
			return err
		}
	}
	return Validate(payload)
}

// Validate runs payload.Validate and converts a failure into an invalid
// parameter error.
func Validate(payload Validatable) error {
	err := payload.Validate()
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	msg, fieldErrors := extractValidationError(err)
	if fieldErrors == nil {
		return errs.ValidationError(err)
	}
	return errs.NewInvalidParameterError(msg, fieldErrors)
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", nil
	}

	for _, err := range validationErrors {
		field := err.Field()
		if field == "" {
			field = strings.ToLower(err.StructField())
		}

		var msg string
		switch err.Tag() {
		case "required":
			msg = "is required"

		case "min", "gte":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max", "lte":
			if err.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "gtefield":
			msg = fmt.Sprintf("must not be before %s", paramName(err))

		case "gt":
			msg = fmt.Sprintf("must be greater than %s", err.Param())

		case "datetime":
			msg = fmt.Sprintf("must match the layout %s", err.Param())

		case "email":
			msg = "must be a valid email address"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

// paramName turns the Go field a cross-field rule points at into its
// user-facing name.
func paramName(err validator.FieldError) string {
	return toSnake(err.Param())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
