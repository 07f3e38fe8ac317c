package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single field validation failure.
type FieldError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the JSON name of the field that failed validation.
func (e FieldError) Field() string { return e.field }

// Tag returns the validation tag that failed.
func (e FieldError) Tag() string { return e.tag }

// Param returns the parameter for the validation tag (e.g., "1" for "min=1").
func (e FieldError) Param() string { return e.param }

// Error returns a human-readable error message.
func (e FieldError) Error() string { return e.message }

// RequestValidationError collects the field failures of a payload.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the individual field failures.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

// Error implements the error interface, returning a combined error message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "; ")
}

// Fail builds a [RequestValidationError] for a rule checked outside of struct tags.
func Fail(field, tag, message string) *RequestValidationError {
	return &RequestValidationError{
		errors: []FieldError{{field: field, tag: tag, message: message}},
	}
}

// IsValidationError reports whether err is, or wraps, a [RequestValidationError].
func IsValidationError(err error) bool {
	var ve *RequestValidationError
	return errors.As(err, &ve)
}

// GetValidator returns the shared validator instance.
// Field names in errors are taken from `json` tags.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})

	return validate
}

// ValidateStruct validates a struct using the shared validator.
// Returns nil if validation passes.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Fail("unknown", "unknown", err.Error())
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			message: translateError(fe),
		}
	}

	return &RequestValidationError{errors: fieldErrors}
}

var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"uuid4":    "%s must be a valid UUID",
}

var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	kind := fe.Kind()

	switch tag {
	case "min":
		if kind == reflect.Slice && param == "1" {
			return fmt.Sprintf("%s list cannot be empty", field)
		}
		if kind == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must contain at least %s items", field, param)
	case "max":
		if kind == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must contain at most %s items", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
