package intakeerrors

import (
	"net/http"

	"face-attendance/internal/shared/apperror"
)

var (
	ErrImageMissing = apperror.New(
		apperror.CodeInvalidInput,
		"Image attachment is required",
		http.StatusBadRequest,
	)
	ErrImageTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"Image exceeds the maximum allowed size",
		http.StatusBadRequest,
	)
	ErrImageType = apperror.New(
		apperror.CodeInvalidInput,
		"Attachment must be an image",
		http.StatusBadRequest,
	)
	ErrImageUnreadable = apperror.New(
		apperror.CodeInvalidInput,
		"Image attachment could not be read",
		http.StatusBadRequest,
	)
)
