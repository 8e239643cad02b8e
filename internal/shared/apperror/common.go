package apperror

import (
	"fmt"
	"net/http"
)

// Shared sentinels. Domain failures live in each module's errors package.
var (
	ErrInternal     = New(CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
	ErrUnauthorized = New(CodeUnauthorized, "Authentication is required", http.StatusUnauthorized)
	ErrNotFound     = New(CodeNotFound, "Resource not found", http.StatusNotFound)
)

func fieldError(field, format string, args ...any) *AppError {
	return New(CodeInvalidInput, field+" "+fmt.Sprintf(format, args...), http.StatusBadRequest)
}

func RequiredField(field string) *AppError {
	return fieldError(field, "is required")
}

func InvalidField(field string) *AppError {
	return fieldError(field, "is invalid")
}
