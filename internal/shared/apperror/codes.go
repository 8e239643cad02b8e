package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeNotRecognized       = "NOT_RECOGNIZED"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeDayComplete         = "DAY_COMPLETE"

	// Server errors (5xx)
	CodeInternalError       = "INTERNAL_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeAmbiguousIdentity   = "AMBIGUOUS_IDENTITY"
	CodePersistenceFailure  = "PERSISTENCE_FAILURE"
	CodeIdentityUnavailable = "IDENTITY_STORE_UNAVAILABLE"
)
