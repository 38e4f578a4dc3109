package core

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// Upstream defaults used by DefaultConfig.
const (
	DefaultBaseURL      = "https://sideshift.ai/api/v2"
	DefaultShiftLimit   = 5
	DefaultQuoteLimit   = 20
	DefaultDefaultLimit = 60
	DefaultTimeout      = 10 * time.Second
)

// RateConfig holds the per-minute request ceiling of each rate category.
type RateConfig struct {
	Shift   int `json:"shift" mapstructure:"shift" validate:"min=1"`
	Quote   int `json:"quote" mapstructure:"quote" validate:"min=1"`
	Default int `json:"default" mapstructure:"default" validate:"min=1"`
}

// Limit returns the ceiling configured for the category.
// The empty category resolves to the default ceiling.
func (r RateConfig) Limit(category RateCategory) int {
	switch category.Normalize() {
	case CategoryShift:
		return r.Shift
	case CategoryQuote:
		return r.Quote
	default:
		return r.Default
	}
}

// Config contains every option of a client session. It is read once when the
// session is built and never changes afterwards.
type Config struct {
	BaseURL string `json:"base_url" mapstructure:"base_url" validate:"required,url"`

	// PrivateKey is sent as the x-sideshift-secret header on authenticated endpoints.
	PrivateKey string `json:"private_key" mapstructure:"private_key"`
	// AffiliateID is merged into query or body on endpoints that credit an affiliate.
	AffiliateID string `json:"affiliate_id" mapstructure:"affiliate_id"`

	MaxRequest RateConfig `json:"max_request" mapstructure:"max_request"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" validate:"min=1ms"`

	// Verbose enables debug diagnostics for headers, rate-limit state and responses.
	Verbose bool `json:"verbose" mapstructure:"verbose"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled" mapstructure:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold" mapstructure:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold" mapstructure:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout" mapstructure:"circuit_breaker_timeout"`
}

// DefaultConfig returns a Config pointing at the public v2 API.
// Ceilings: 5 shift, 20 quote and 60 default requests per minute; 10s timeout.
// The circuit breaker is disabled.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		MaxRequest: RateConfig{
			Shift:   DefaultShiftLimit,
			Quote:   DefaultQuoteLimit,
			Default: DefaultDefaultLimit,
		},
		Timeout: DefaultTimeout,

		CircuitBreakerEnabled:          false,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// WithCredentials sets the private key and affiliate id and returns the config for chaining.
func (c *Config) WithCredentials(privateKey, affiliateID string) *Config {
	c.PrivateKey = privateKey
	c.AffiliateID = affiliateID
	return c
}

// WithBaseURL sets the API root and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the per-minute ceilings and returns the config for chaining.
func (c *Config) WithRateLimit(shift, quote, def int) *Config {
	c.MaxRequest = RateConfig{Shift: shift, Quote: quote, Default: def}
	return c
}

// WithVerbose toggles diagnostic logging and returns the config for chaining.
func (c *Config) WithVerbose(verbose bool) *Config {
	c.Verbose = verbose
	return c
}

// WithCircuitBreaker enables the breaker with the given thresholds and returns the config for chaining.
func (c *Config) WithCircuitBreaker(failThreshold, successThreshold int, timeout time.Duration) *Config {
	c.CircuitBreakerEnabled = true
	c.CircuitBreakerFailThreshold = failThreshold
	c.CircuitBreakerSuccessThreshold = successThreshold
	c.CircuitBreakerTimeout = timeout
	return c
}
