package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/crud-api/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// failedMessage is the top-level message of every validation error response.
const failedMessage = "Validation failed"

// Validatable is implemented by input types that know how to validate themselves.
//
// Typical pattern:
//   - Define an input struct with validator tags (`validate:"required,max=120"`)
//   - Implement Validate() error that runs validation.Struct(in)
//   - Return validator.ValidationErrors, or CustomValidationErrors for rules
//     that tags cannot express
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return failedMessage
}

// Add appends a field error.
func (c *CustomValidationErrors) Add(field, message string) {
	*c = append(*c, CustomValidationError{Field: field, Message: message})
}

// Err returns c as an error, or nil when it is empty.
func (c CustomValidationErrors) Err() error {
	if len(c) == 0 {
		return nil
	}
	return c
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
//
// Field names in errors use the json tag, so they match the request body.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Struct validates s against its struct tags.
func Struct(s any) error {
	return Validator().Struct(s)
}

// Check runs v.Validate() and converts a failure into a 422 *errs.HTTPError.
// It returns nil when v is valid.
func Check(v Validatable) error {
	if err := v.Validate(); err != nil {
		return ToHTTPError(err)
	}
	return nil
}

// ToHTTPError converts a validation error into a 422 *errs.HTTPError.
// Errors of other kinds are returned unchanged.
func ToHTTPError(err error) error {
	fieldErrors, ok := extractValidationError(err)
	if !ok {
		return err
	}
	return errs.NewUnprocessableEntityError(failedMessage, fieldErrors)
}

// Bind decodes the request body into payload.
//
// Malformed or unsupported bodies become a 400 *errs.HTTPError. Path and
// query parameters are never bound.
func Bind(c echo.Context, payload any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, payload); err != nil {
		message := "Malformed request body"

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if msg, ok := echoErr.Message.(string); ok && msg != "" {
				message = fmt.Sprintf("%s: %s", message, msg)
			}
		}

		return errs.NewBadRequestError(message, false, nil, nil)
	}
	return nil
}

func extractValidationError(err error) ([]errs.FieldError, bool) {
	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		fieldErrors := make([]errs.FieldError, 0, len(customValidationErrors))
		for _, e := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Error: e.Message,
			})
		}
		return fieldErrors, true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: strings.ToLower(e.Field()),
			Error: fieldMessage(e),
		})
	}
	return fieldErrors, true
}

// fieldMessage renders a user-friendly message for one failed tag.
func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		// For strings min is a length, for numbers a value.
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "email":
		return "must be a valid email address"

	case "datetime":
		return fmt.Sprintf("must be a date in the format %s", err.Param())

	default:
		if err.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", strings.ToLower(err.Field()), err.Tag(), err.Param())
		}
		return fmt.Sprintf("%s: %s", strings.ToLower(err.Field()), err.Tag())
	}
}
