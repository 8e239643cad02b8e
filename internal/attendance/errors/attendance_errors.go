package attendanceerrors

import (
	"face-attendance/internal/shared/apperror"
	"net/http"
)

var (
	ErrRecognitionUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"Face recognition service is unavailable",
		http.StatusServiceUnavailable,
	)
	ErrNotRecognized = apperror.New(
		apperror.CodeNotRecognized,
		"Face not recognized",
		http.StatusUnprocessableEntity,
	)
	ErrConcurrencyConflict = apperror.New(
		apperror.CodeConcurrencyConflict,
		"Another attendance event for this employee is being recorded",
		http.StatusConflict,
	)
	ErrDayComplete = apperror.New(
		apperror.CodeDayComplete,
		"Employee has already checked out today",
		http.StatusConflict,
	)
	ErrPersistenceFailure = apperror.New(
		apperror.CodePersistenceFailure,
		"Face recognized but the attendance event could not be saved",
		http.StatusInternalServerError,
	)
	ErrExportTooLarge = apperror.New(
		apperror.CodeInvalidInput,
		"Too many events to export, narrow the date range",
		http.StatusBadRequest,
	)
	ErrInvalidPolicy = apperror.New(
		apperror.CodeInvalidInput,
		"Attendance policy is invalid",
		http.StatusInternalServerError,
	)
)
