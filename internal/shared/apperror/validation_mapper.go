package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// start_date -> Start Date
func formatFieldName(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// FieldViolation is one entry of the details list of a validation error.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func describe(e validator.FieldError) *AppError {
	field := formatFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return RequiredField(field)
	case "datetime":
		return fieldError(field, "must use format %s", e.Param())
	case "min", "gte":
		return fieldError(field, "must be at least %s", e.Param())
	case "max", "lte":
		return fieldError(field, "must be at most %s", e.Param())
	case "uuid", "uuid4":
		return fieldError(field, "must be a UUID")
	default:
		return InvalidField(field)
	}
}

// MapValidationError turns validator failures into an INVALID_INPUT
// AppError. The message names the first failure, details list them all.
// Field names come from json/form tags (see Init).
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return New(CodeInvalidInput, "Invalid input", http.StatusBadRequest).WithCause(err)
	}

	violations := make([]FieldViolation, 0, len(errs))
	for _, e := range errs {
		violations = append(violations, FieldViolation{Field: e.Field(), Rule: e.Tag(), Param: e.Param()})
	}
	return describe(errs[0]).WithDetails(violations)
}
