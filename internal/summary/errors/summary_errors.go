package summaryerrors

import (
	"face-attendance/internal/shared/apperror"
	"net/http"
)

var ErrInvalidEvent = apperror.New(
	apperror.CodeInvalidInput,
	"Attendance event is malformed",
	http.StatusBadRequest,
)
