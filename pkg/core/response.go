package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Raw is an undecoded response body with its content type.
type Raw struct {
	ContentType string
	Body        []byte
}

// IsJSON reports whether the body was served as JSON.
func (r Raw) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "json")
}

// Response is the envelope every client operation returns. Exactly one of Data
// and Error is meaningful, selected by Success. Status is the HTTP status when
// one was received. Err carries the typed cause of a failure.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Error   string `json:"error,omitempty"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

// OK builds a successful envelope.
func OK[T any](data T, status int) *Response[T] {
	return &Response[T]{Success: true, Data: &data, Status: status}
}

// Fail builds a failed envelope from err. The status is taken from err when it
// is an *APIError carrying one.
func Fail[T any](err error) *Response[T] {
	resp := &Response[T]{Error: err.Error(), Err: err}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		resp.Status = apiErr.StatusCode
	}
	return resp
}

// FailStatus builds a failed envelope with an explicit status.
func FailStatus[T any](err error, status int) *Response[T] {
	resp := Fail[T](err)
	resp.Status = status
	return resp
}

// Unwrap returns the data or the failure as a Go error.
func (r *Response[T]) Unwrap() (T, error) {
	var zero T
	if r == nil {
		return zero, errors.New("nil response")
	}
	if !r.Success {
		if r.Err != nil {
			return zero, r.Err
		}
		return zero, errors.New(r.Error)
	}
	if r.Data == nil {
		return zero, nil
	}
	return *r.Data, nil
}

// Decode converts a raw envelope into a typed one. Failures pass through
// unchanged. A *[]byte target receives the body verbatim, a *string target
// receives it as text, and an empty body yields the zero value. Decode
// failures name the method and path of req; req may be nil.
func Decode[T any](req *Request, resp *Response[Raw]) *Response[T] {
	if resp == nil {
		return Fail[T](errors.New("nil response"))
	}
	if !resp.Success {
		return &Response[T]{Error: resp.Error, Status: resp.Status, Err: resp.Err}
	}

	var out T
	raw := Raw{}
	if resp.Data != nil {
		raw = *resp.Data
	}

	switch v := any(&out).(type) {
	case *[]byte:
		*v = raw.Body
	case *string:
		*v = string(raw.Body)
	case *Raw:
		*v = raw
	default:
		if len(strings.TrimSpace(string(raw.Body))) > 0 {
			if err := sonic.Unmarshal(raw.Body, &out); err != nil {
				var method, path string
				if req != nil {
					method, path = req.Method, req.Path
				}
				apiErr := NewAPIError(ErrorTypeDecode, method, path, resp.Status,
					fmt.Sprintf("decode %T: %v", out, err)).WithCode(ErrCodeDecode)
				apiErr.Cause = err
				return FailStatus[T](apiErr, resp.Status)
			}
		}
	}
	return OK(out, resp.Status)
}
