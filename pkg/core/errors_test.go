package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "NETWORK", ErrorTypeNetwork.String())
	assert.Equal(t, "RATE_LIMIT", ErrorTypeRateLimit.String())
	assert.Equal(t, "CIRCUIT_OPEN", ErrorTypeCircuitOpen.String())
}

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(ErrorTypeNotFound, "GET", "/shifts/abc", 404, "404 Not Found - not found")

	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, 404, err.StatusCode)
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, "GET /shifts/abc failed: 404 Not Found - not found", err.Error())
}

func TestAPIErrorWithoutRoute(t *testing.T) {
	err := NewAPIError(ErrorTypeValidation, "", "", 0, "no shift ids provided")
	assert.Equal(t, "no shift ids provided", err.Error())
}

func TestNewRateLimitError(t *testing.T) {
	err := NewRateLimitError("POST", "/shifts/fixed", CategoryShift, 5)

	assert.Equal(t, "POST /shifts/fixed failed: rate limit exceeded for shift (max 5 per minute)", err.Error())
	assert.Zero(t, err.StatusCode)
	assert.True(t, IsRateLimitError(err))
	assert.True(t, IsErrorCode(err, ErrCodeRateLimit))
}

func TestNewNoResponseError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewNoResponseError("GET", "/coins", cause, false)

	assert.Equal(t, "GET /coins failed: no response received: dial tcp: connection refused", err.Error())
	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, ErrNoResponse)
	assert.ErrorIs(t, err, cause)

	timeout := NewNoResponseError("GET", "/coins", context.DeadlineExceeded, true)
	assert.True(t, IsTimeoutError(timeout))
	assert.False(t, IsNetworkError(timeout))
}

func TestNewHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		statusText string
		detail     string
		wantType   ErrorType
		wantMsg    string
	}{
		{"not found", 404, "404 Not Found", "Shift not found", ErrorTypeNotFound, "GET /x failed: 404 Not Found - Shift not found"},
		{"derived status text", 400, "", "bad", ErrorTypeBadRequest, "GET /x failed: 400 Bad Request - bad"},
		{"no detail", 500, "500 Internal Server Error", "", ErrorTypeServerError, "GET /x failed: 500 Internal Server Error"},
		{"unauthorized", 401, "", "x", ErrorTypeAuthentication, "GET /x failed: 401 Unauthorized - x"},
		{"too many requests", 429, "", "slow down", ErrorTypeRateLimit, "GET /x failed: 429 Too Many Requests - slow down"},
		{"teapot", 418, "", "", ErrorTypeUnknown, "GET /x failed: 418 I'm a teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewHTTPError("GET", "/x", tt.status, tt.statusText, tt.detail)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("ids", "No shift IDs provided")

	assert.Equal(t, "No shift IDs provided", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.True(t, IsValidationError(err))
	assert.True(t, IsTerminalError(err))

	wrapped := fmt.Errorf("request quote: %w", err)
	var ve *ValidationError
	require.ErrorAs(t, wrapped, &ve)
	assert.Equal(t, "ids", ve.Field)
}

func TestErrorPredicates(t *testing.T) {
	notFound := NewHTTPError("GET", "/shifts/x", 404, "", "")
	server := NewHTTPError("GET", "/coins", 503, "", "")
	wrapped := fmt.Errorf("sync: %w", notFound)

	assert.True(t, IsTerminalError(notFound))
	assert.True(t, IsTerminalError(wrapped))
	assert.False(t, IsTerminalError(server))
	assert.False(t, IsNetworkError(server))
	assert.False(t, IsRateLimitError(errors.New("plain")))
	assert.False(t, IsAuthenticationError(nil))
}
