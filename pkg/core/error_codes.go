package core

import "errors"

// ErrorCode represents a stable, machine-readable error identifier.
type ErrorCode string

const (
	ErrCodeNetwork     ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout     ErrorCode = "TIMEOUT"
	ErrCodeRateLimit   ErrorCode = "RATE_LIMIT"
	ErrCodeAuth        ErrorCode = "AUTH_ERROR"
	ErrCodeBadRequest  ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
	ErrCodeUpstream    ErrorCode = "UPSTREAM_ERROR"

	// Caller input errors
	ErrCodeValidation  ErrorCode = "VALIDATION_ERROR"
	ErrCodeNoAffiliate ErrorCode = "NO_AFFILIATE_ID"

	// Payload errors
	ErrCodeDecode ErrorCode = "DECODE_ERROR"

	// Circuit breaker errors
	ErrCodeCircuitBreaker ErrorCode = "CIRCUIT_BREAKER_OPEN"

	// Client state errors
	ErrCodeClientClosed ErrorCode = "CLIENT_CLOSED"
)

// IsErrorCode checks if the error carries the specified error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ErrorCode(apiErr.Code) == code
	}
	return false
}
