package employeeerrors

import (
	"face-attendance/internal/shared/apperror"
	"net/http"
)

var (
	ErrAmbiguousIdentity = apperror.New(
		apperror.CodeAmbiguousIdentity,
		"Recognized name matches more than one employee",
		http.StatusInternalServerError,
	)
	ErrIdentityStoreUnavailable = apperror.New(
		apperror.CodeIdentityUnavailable,
		"Employee directory is unavailable",
		http.StatusServiceUnavailable,
	)
)
