// Package session implements the request dispatcher shared by every endpoint
// wrapper: rate-limit admission, credential headers, affiliate injection, one
// HTTP call, and normalization of the outcome into a core.Response envelope.
package session

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"sideshift/internal/circuitbreaker"
	"sideshift/internal/keyring"
	"sideshift/internal/ratelimit"
	"sideshift/internal/transport"
	"sideshift/pkg/core"
)

const (
	// UserIPHeader forwards the end user's address on behalf-of calls.
	UserIPHeader = "x-user-ip"
	// AffiliateParam is the query or body field crediting the affiliate.
	AffiliateParam = "affiliateId"
)

// State represents the lifecycle state of a Session.
type State int

const (
	// StateActive indicates a session that is ready to dispatch requests.
	StateActive State = iota
	// StateClosed indicates a session that has been shut down and can no longer be used.
	StateClosed
)

// String returns the string representation of the State.
func (s State) String() string {
	return [...]string{"ACTIVE", "CLOSED"}[s]
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger       *zerolog.Logger
	transport    transport.Doer
	roundTripper http.RoundTripper
	clock        func() time.Time
}

// WithLogger sets the destination of verbose diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithTransport replaces the HTTP transport, typically with a fake in tests.
func WithTransport(t transport.Doer) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithRoundTripper installs a custom http.RoundTripper under the default transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.roundTripper = rt
	}
}

// WithClock replaces time.Now for rate windows and the circuit breaker.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// Session owns the transport, credentials and rate windows of one client.
// Configuration is fixed at construction.
type Session struct {
	mu             sync.Mutex
	config         *core.Config
	credentials    *keyring.Credentials
	transport      transport.Doer
	limiter        *ratelimit.Limiter
	circuitBreaker *circuitbreaker.Breaker
	logger         zerolog.Logger
	now            func() time.Time
	state          State
	createdAt      time.Time
	lastUsed       time.Time
}

// New creates a new Session with the provided configuration.
// The configuration is validated before the session is created.
func New(config *core.Config, opts ...Option) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := &options{clock: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	logger := diagnosticLogger(config.Verbose, o.logger)

	doer := o.transport
	if doer == nil {
		client, err := transport.NewClientWithTransport(config, logger, o.roundTripper)
		if err != nil {
			return nil, err
		}
		doer = client
	}

	var breaker *circuitbreaker.Breaker
	if config.CircuitBreakerEnabled {
		breaker = circuitbreaker.New(circuitbreaker.FromConfig(config)).WithClock(o.clock)
	}

	now := o.clock()
	return &Session{
		config:         config,
		credentials:    keyring.New(config.PrivateKey, config.AffiliateID),
		transport:      doer,
		limiter:        ratelimit.New(config.MaxRequest, ratelimit.WithClock(o.clock)),
		circuitBreaker: breaker,
		logger:         logger,
		now:            o.clock,
		state:          StateActive,
		createdAt:      now,
		lastUsed:       now,
	}, nil
}

// diagnosticLogger returns the logger for verbose output. Without Verbose all
// diagnostics are discarded; with it and no logger given, a console logger on
// stderr is used.
func diagnosticLogger(verbose bool, logger *zerolog.Logger) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	if logger != nil {
		return *logger
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Str("component", "sideshift").
		Logger()
}

// Execute dispatches req and returns the raw envelope. It never returns nil.
//
// The rate window of req.Category is checked first; a rejected call sends
// nothing. Exactly one HTTP call is made per admitted request.
func (s *Session) Execute(ctx context.Context, req *core.Request) *core.Response[core.Raw] {
	category := req.Category.Normalize()

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		err := core.NewAPIError(core.ErrorTypeUnknown, req.Method, req.Path, 0, core.ErrClientClosed.Error()).
			WithCode(core.ErrCodeClientClosed)
		err.Cause = core.ErrClientClosed
		return core.Fail[core.Raw](err)
	}
	s.lastUsed = s.now()
	decision := s.limiter.Allow(category)
	s.mu.Unlock()

	s.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("category", decision.Category.String()).
		Int("count", decision.Count).
		Int("limit", decision.Limit).
		Bool("allowed", decision.Allowed).
		Time("reset_at", decision.ResetAt).
		Msg("rate limit")

	if !decision.Allowed {
		return s.fail(req, core.NewRateLimitError(req.Method, req.Path, decision.Category, decision.Limit))
	}

	if s.circuitBreaker != nil && !s.circuitBreaker.Allow() {
		err := core.NewAPIError(core.ErrorTypeCircuitOpen, req.Method, req.Path, 0, core.ErrCircuitBreakerOpen.Error()).
			WithCode(core.ErrCodeCircuitBreaker)
		err.Cause = core.ErrCircuitBreakerOpen
		return s.fail(req, err)
	}

	out, prepErr := s.prepare(req)
	if prepErr != nil {
		return s.fail(req, prepErr)
	}

	s.logger.Debug().
		Str("method", out.Method).
		Str("path", out.Path).
		Str("query", out.Query.Encode()).
		Interface("headers", keyring.RedactHeaders(out.Headers)).
		Msg("dispatch")

	resp, err := s.transport.Do(ctx, out)
	if err != nil {
		s.recordOutcome(0, false)
		return s.fail(req, core.NewNoResponseError(req.Method, req.Path, err, transport.IsTimeout(err)))
	}
	s.recordOutcome(resp.StatusCode, true)

	if !resp.IsSuccess() {
		return s.fail(req, core.NewHTTPError(req.Method, req.Path, resp.StatusCode, resp.Status, resp.ErrorDetail()))
	}

	s.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Int("size", len(resp.Body)).
		Str("content_type", resp.ContentType).
		Interface("headers", resp.Headers).
		Msg("response")

	return core.OK(core.Raw{ContentType: resp.ContentType, Body: resp.Body}, resp.StatusCode)
}

// prepare builds the outbound copy of req: headers, query and body after
// auth, user ip and affiliate handling. req itself is left untouched.
func (s *Session) prepare(req *core.Request) (*core.Request, *core.APIError) {
	out := &core.Request{
		Method:   req.Method,
		Path:     req.Path,
		Query:    cloneValues(req.Query),
		Body:     req.Body,
		Headers:  make(map[string]string, len(req.Headers)+2),
		Category: req.Category.Normalize(),
	}
	maps.Copy(out.Headers, req.Headers)

	if req.Auth {
		if !s.credentials.HasSecret() {
			return nil, core.NewAPIError(core.ErrorTypeAuthentication, req.Method, req.Path, 0,
				"private key is required but not provided in the configuration").WithCode(core.ErrCodeAuth)
		}
		out.Headers[keyring.SecretHeader] = s.credentials.Secret()
	}

	if req.UserIP != "" {
		out.Headers[UserIPHeader] = req.UserIP
	}

	if !req.Affiliate {
		return out, nil
	}

	if !s.credentials.HasAffiliate() {
		err := core.NewAPIError(core.ErrorTypeValidation, req.Method, req.Path, 0, core.ErrNoAffiliateID.Error()).
			WithCode(core.ErrCodeNoAffiliate)
		err.Cause = core.ErrNoAffiliateID
		return nil, err
	}
	affiliateID := s.credentials.AffiliateID()

	if req.Method != http.MethodPost {
		out.Query.Set(AffiliateParam, affiliateID)
		return out, nil
	}

	out.Query.Del(AffiliateParam)
	body, err := mergeBody(req.Body, AffiliateParam, affiliateID)
	if err != nil {
		apiErr := core.NewAPIError(core.ErrorTypeValidation, req.Method, req.Path, 0, err.Error()).
			WithCode(core.ErrCodeValidation)
		apiErr.Cause = err
		return nil, apiErr
	}
	out.Body = body
	return out, nil
}

var bodyCodec = sonic.Config{UseNumber: true}.Froze()

// mergeBody returns a new JSON object holding every field of body plus key.
// body may be nil, a map or any value that encodes to a JSON object.
func mergeBody(body any, key string, value any) (map[string]any, error) {
	merged := make(map[string]any)
	switch b := body.(type) {
	case nil:
	case map[string]any:
		maps.Copy(merged, b)
	case map[string]string:
		for k, v := range b {
			merged[k] = v
		}
	default:
		data, err := bodyCodec.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		if err := bodyCodec.Unmarshal(data, &merged); err != nil {
			return nil, fmt.Errorf("body is not a JSON object: %w", err)
		}
	}
	merged[key] = value
	return merged, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

func (s *Session) recordOutcome(status int, received bool) {
	if s.circuitBreaker == nil {
		return
	}
	s.circuitBreaker.Record(!circuitbreaker.IsFailure(status, received))
}

func (s *Session) fail(req *core.Request, err *core.APIError) *core.Response[core.Raw] {
	s.logger.Debug().Err(err).
		Str("method", req.Method).
		Str("path", req.Path).
		Str("type", err.Type.String()).
		Int("status", err.StatusCode).
		Msg("request failed")
	return core.Fail[core.Raw](err)
}

// RateLimitState is a point-in-time view of one rate category.
type RateLimitState struct {
	Count       int       `json:"count"`
	Limit       int       `json:"limit"`
	WindowStart time.Time `json:"window_start"`
	Allowed     int64     `json:"allowed"`
	Denied      int64     `json:"denied"`
}

// RateLimitSnapshot returns the window and counters of every category.
func (s *Session) RateLimitSnapshot() map[core.RateCategory]RateLimitState {
	s.mu.Lock()
	metrics := s.limiter.Metrics()
	s.mu.Unlock()

	out := make(map[core.RateCategory]RateLimitState, len(metrics))
	for c, m := range metrics {
		out[c] = RateLimitState{
			Count:       m.Count,
			Limit:       m.Limit,
			WindowStart: m.WindowStart,
			Allowed:     m.Allowed,
			Denied:      m.Denied,
		}
	}
	return out
}

// CircuitState returns the breaker state, or CLOSED when the breaker is disabled.
func (s *Session) CircuitState() circuitbreaker.State {
	if s.circuitBreaker == nil {
		return circuitbreaker.StateClosed
	}
	return s.circuitBreaker.State()
}

// Close shuts down the session and releases the transport.
// After closing, every Execute returns a failed envelope.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if c, ok := s.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// State returns the current lifecycle state of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the configuration used to create the session.
func (s *Session) Config() *core.Config {
	return s.config
}

// Logger returns the diagnostic logger. It discards everything unless Verbose is set.
func (s *Session) Logger() zerolog.Logger {
	return s.logger
}

// CreatedAt returns the timestamp when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastUsed returns the timestamp of the last dispatched request.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
