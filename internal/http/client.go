// Package http builds the resty client shared by a session: base URL, fixed
// timeout, no retries, sonic codecs and redacted debug logging.
package http

import (
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"sideshift/internal/keyring"
)

const contentTypeJSON = "application/json"

type Client struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

type Config struct {
	BaseURL   string            `validate:"required,url"`
	Timeout   time.Duration     `validate:"min=1ms"`
	Headers   map[string]string `validate:"omitempty"`
	Transport http.RoundTripper
}

type RequestOption func(*resty.Request)

func NewClient(config *Config, logger zerolog.Logger) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(0)
	if config.Transport != nil {
		client.SetTransport(config.Transport)
	}
	client.AddContentTypeEncoder(contentTypeJSON, func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder(contentTypeJSON, func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	c := &Client{
		client: client,
		logger: logger,
	}

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Interface("headers", keyring.RedactHTTPHeader(req.Header)).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	return c, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Request returns a new request with opts applied, or an error once the client is closed.
func (c *Client) Request(opts ...RequestOption) (*resty.Request, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	req := c.client.R()
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

func WithHeaders(headers map[string]string) RequestOption {
	return func(r *resty.Request) {
		if len(headers) > 0 {
			r.SetHeaders(headers)
		}
	}
}

// WithQuery sets multi-value query parameters in their given order.
func WithQuery(values map[string][]string) RequestOption {
	return func(r *resty.Request) {
		if len(values) > 0 {
			r.SetQueryParamsFromValues(values)
		}
	}
}

// WithJSONBody sets body and marks it as JSON.
func WithJSONBody(body any) RequestOption {
	return func(r *resty.Request) {
		if body != nil {
			r.SetHeader("Content-Type", contentTypeJSON)
			r.SetBody(body)
		}
	}
}
