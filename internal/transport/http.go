// Package transport executes one dispatched request over HTTP and reports
// either the raw response or the fact that none was received.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	httpclient "sideshift/internal/http"
	"sideshift/pkg/core"
)

// Doer sends a request and returns the response. A non-nil error means no
// response was received; HTTP error statuses are returned as responses.
type Doer interface {
	Do(ctx context.Context, req *core.Request) (*Response, error)
}

// Client executes requests through a resty client.
type Client struct {
	http   *httpclient.Client
	logger zerolog.Logger
}

// Response represents an HTTP response with its status, body, and headers.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int

	// Status is the status line, e.g. "404 Not Found".
	Status string

	// Body contains the raw response body bytes.
	Body []byte

	// Headers contains the response headers as key-value pairs.
	Headers map[string]string

	ContentType string
}

// NewClient creates a client for config. The secret is never set as a default
// header; it travels only on requests that ask for it.
func NewClient(config *core.Config, logger zerolog.Logger) (*Client, error) {
	return NewClientWithTransport(config, logger, nil)
}

// NewClientWithTransport is like NewClient with a custom round tripper.
func NewClientWithTransport(config *core.Config, logger zerolog.Logger, rt http.RoundTripper) (*Client, error) {
	hc, err := httpclient.NewClient(&httpclient.Config{
		BaseURL:   strings.TrimRight(config.BaseURL, "/"),
		Timeout:   config.Timeout,
		Headers:   map[string]string{"Accept": "application/json, image/svg+xml, image/png"},
		Transport: rt,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}
	return &Client{http: hc, logger: logger}, nil
}

// Do executes an HTTP request and returns the response.
// It sets headers, query parameters, and body from the request object.
func (c *Client) Do(ctx context.Context, req *core.Request) (*Response, error) {
	r, err := c.http.Request(
		httpclient.WithHeaders(req.Headers),
		httpclient.WithQuery(req.Query),
		httpclient.WithJSONBody(req.Body),
	)
	if err != nil {
		return nil, err
	}
	r.SetContext(ctx)

	var resp *resty.Response
	switch req.Method {
	case http.MethodGet, http.MethodPost:
		resp, err = r.Execute(req.Method, req.Path)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", req.Method)
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("http request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}

	headers := make(map[string]string)
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &Response{
		StatusCode:  resp.StatusCode(),
		Status:      resp.Status(),
		Body:        resp.Bytes(),
		Headers:     headers,
		ContentType: resp.Header().Get("Content-Type"),
	}, nil
}

// Close releases idle connections. Further requests fail.
func (c *Client) Close() error {
	return c.http.Close()
}

// IsTimeout reports whether err came from a deadline rather than a refused or broken connection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorDetail extracts the human-readable detail of an error response: the
// body verbatim when it is not JSON, else error.message, else the whole body
// re-serialized.
func (r *Response) ErrorDetail() string {
	body := strings.TrimSpace(string(r.Body))
	if body == "" {
		return ""
	}

	var payload any
	if err := sonic.UnmarshalString(body, &payload); err != nil {
		return body
	}

	switch v := payload.(type) {
	case string:
		return v
	case map[string]any:
		if e, ok := v["error"].(map[string]any); ok {
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	out, err := sonic.ConfigStd.MarshalToString(payload)
	if err != nil {
		return body
	}
	return out
}
