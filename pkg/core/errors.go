package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of a client error.
type ErrorType int

// Error type constants categorize errors for proper handling and retry logic.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates no response was received.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates a client-side or upstream rate limit was hit.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates a missing or rejected secret.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates an upstream server-side error.
	ErrorTypeServerError
	// ErrorTypeValidation indicates caller input was rejected before any network call.
	ErrorTypeValidation
	// ErrorTypeDecode indicates a successful response whose payload could not be decoded.
	ErrorTypeDecode
	// ErrorTypeCircuitOpen indicates the circuit breaker refused the call.
	ErrorTypeCircuitOpen
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"VALIDATION",
		"DECODE",
		"CIRCUIT_OPEN",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrCircuitBreakerOpen is returned when the circuit breaker is open.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrNoAffiliateID is returned when an endpoint credits an affiliate but none is configured.
	ErrNoAffiliateID = errors.New("affiliate id is required but not provided in the configuration")
	// ErrNoResponse marks transport failures where the server never answered.
	ErrNoResponse = errors.New("no response received")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

// APIError is the structured error behind every failed envelope.
// Its Error text is the envelope's error message.
type APIError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// Code is a stable machine-readable identifier.
	Code   string `json:"code,omitempty"`
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`
	// Message describes the failure without the method and path prefix.
	Message string `json:"message"`
	// Cause is the underlying error, if any.
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Error returns "<METHOD> <path> failed: <message>".
func (e *APIError) Error() string {
	if e.Method == "" && e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.Path, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// WithCode sets the error code and returns the error for chaining.
func (e *APIError) WithCode(code ErrorCode) *APIError {
	e.Code = string(code)
	return e
}

// NewAPIError creates an APIError. The timestamp is set to the current time.
func NewAPIError(errorType ErrorType, method, path string, statusCode int, message string) *APIError {
	return &APIError{
		Type:       errorType,
		StatusCode: statusCode,
		Method:     method,
		Path:       path,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// NewRateLimitError reports a client-side ceiling rejection. No request was sent.
func NewRateLimitError(method, path string, category RateCategory, limit int) *APIError {
	msg := fmt.Sprintf("rate limit exceeded for %s (max %d per minute)", category, limit)
	return NewAPIError(ErrorTypeRateLimit, method, path, 0, msg).WithCode(ErrCodeRateLimit)
}

// NewNoResponseError reports a transport failure where no response arrived.
func NewNoResponseError(method, path string, cause error, timeout bool) *APIError {
	msg := ErrNoResponse.Error()
	if cause != nil {
		msg += ": " + cause.Error()
	}
	errorType, code := ErrorTypeNetwork, ErrCodeNetwork
	if timeout {
		errorType, code = ErrorTypeTimeout, ErrCodeTimeout
	}
	e := NewAPIError(errorType, method, path, 0, msg).WithCode(code)
	e.Cause = errors.Join(ErrNoResponse, cause)
	return e
}

// NewHTTPError reports a non-2xx upstream response. statusText may be the full
// status line ("404 Not Found") or empty, in which case it is derived from the code.
func NewHTTPError(method, path string, statusCode int, statusText, detail string) *APIError {
	if statusText == "" {
		statusText = fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))
	}
	msg := statusText
	if detail != "" {
		msg += " - " + detail
	}
	errorType := ErrorTypeForStatus(statusCode)
	return NewAPIError(errorType, method, path, statusCode, msg).WithCode(codeForType(errorType))
}

// ErrorTypeForStatus maps an HTTP status code to an ErrorType.
func ErrorTypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode >= 500:
		return ErrorTypeServerError
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuthentication
	case statusCode == http.StatusBadRequest:
		return ErrorTypeBadRequest
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	default:
		return ErrorTypeUnknown
	}
}

func codeForType(t ErrorType) ErrorCode {
	switch t {
	case ErrorTypeServerError:
		return ErrCodeServerError
	case ErrorTypeRateLimit:
		return ErrCodeRateLimit
	case ErrorTypeAuthentication:
		return ErrCodeAuth
	case ErrorTypeBadRequest:
		return ErrCodeBadRequest
	case ErrorTypeNotFound:
		return ErrCodeNotFound
	default:
		return ErrCodeUpstream
	}
}

// ValidationError reports caller input rejected before dispatch.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for the named field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func errorType(err error) (ErrorType, bool) {
	var e *APIError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return ErrorTypeUnknown, false
}

// IsNetworkError returns true if the error is a transport failure without response.
// Network errors are typically retryable.
func IsNetworkError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrorTypeNetwork
}

// IsTimeoutError returns true if the error is a timeout.
func IsTimeoutError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrorTypeTimeout
}

// IsRateLimitError returns true if the error is a rate limit rejection, client-side or upstream.
// Rate limit errors should be retried after the window rolls over.
func IsRateLimitError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrorTypeRateLimit
}

// IsAuthenticationError returns true if the error is an authentication failure.
func IsAuthenticationError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrorTypeAuthentication
}

// IsValidationError returns true for caller input errors raised before dispatch.
func IsValidationError(err error) bool {
	if errors.Is(err, ErrValidation) {
		return true
	}
	t, ok := errorType(err)
	return ok && t == ErrorTypeValidation
}

// IsTerminalError returns true if retrying the same call cannot succeed.
func IsTerminalError(err error) bool {
	if errors.Is(err, ErrValidation) {
		return true
	}
	t, ok := errorType(err)
	return ok && (t == ErrorTypeNotFound ||
		t == ErrorTypeBadRequest ||
		t == ErrorTypeValidation ||
		t == ErrorTypeAuthentication)
}
