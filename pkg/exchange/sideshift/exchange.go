package sideshift

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
	"sideshift/pkg/session"
)

var _ exchange.Exchange = (*Client)(nil)

// Client implements exchange.Exchange for the SideShift v2 API.
type Client struct {
	session  *session.Session
	validate *validator.Validate
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds configuration options for the Client.
type Options struct {
	Logger       *zerolog.Logger
	RoundTripper http.RoundTripper
	Clock        func() time.Time
}

// WithLogger returns an option that sets the destination of verbose diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = &l
	}
}

// WithRoundTripper returns an option that installs a custom HTTP round tripper.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *Options) {
		o.RoundTripper = rt
	}
}

// WithClock returns an option that replaces time.Now for rate windows.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Clock = now
	}
}

// New creates a Client with its own session.
func New(config *core.Config, opts ...Option) (*Client, error) {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	var sessionOpts []session.Option
	if options.Logger != nil {
		sessionOpts = append(sessionOpts, session.WithLogger(*options.Logger))
	}
	if options.RoundTripper != nil {
		sessionOpts = append(sessionOpts, session.WithRoundTripper(options.RoundTripper))
	}
	if options.Clock != nil {
		sessionOpts = append(sessionOpts, session.WithClock(options.Clock))
	}

	s, err := session.New(config, sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return NewWithSession(s), nil
}

// NewWithSession creates a Client over an existing session.
func NewWithSession(s *session.Session) *Client {
	return &Client{
		session:  s,
		validate: validator.New(),
	}
}

// Session returns the underlying dispatcher.
func (c *Client) Session() *session.Session {
	return c.session
}

// Close releases the session.
func (c *Client) Close() error {
	return c.session.Close()
}

func call[T any](ctx context.Context, c *Client, req *core.Request) *core.Response[T] {
	return core.Decode[T](req, c.session.Execute(ctx, req))
}

func pathf(format string, segments ...string) string {
	escaped := make([]any, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, escaped...)
}

// joinNonEmpty trims each value and joins the non-empty ones with commas.
func joinNonEmpty(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ",")
}
