// Package circuitbreaker stops a session from calling an upstream that keeps
// failing. Only transport failures and 5xx responses count against it.
package circuitbreaker

import (
	"sync"
	"time"

	"sideshift/pkg/core"
)

type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	FailThreshold    int           `json:"fail_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"timeout"`
}

// FromConfig extracts the breaker settings of a session config.
func FromConfig(c *core.Config) Config {
	return Config{
		FailThreshold:    c.CircuitBreakerFailThreshold,
		SuccessThreshold: c.CircuitBreakerSuccessThreshold,
		Timeout:          c.CircuitBreakerTimeout,
	}
}

type Breaker struct {
	mu        sync.Mutex
	config    Config
	state     State
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
	metrics   Metrics
}

// Metrics counts outcomes seen by the breaker.
type Metrics struct {
	Rejected     int64
	Successes    int64
	Failures     int64
	StateChanges int32
}

func New(config Config) *Breaker {
	return &Breaker{config: config, now: time.Now}
}

// WithClock replaces time.Now and returns the breaker.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

// Allow reports whether a call may proceed. An open breaker moves to half-open
// once its timeout has elapsed and lets probes through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.config.Timeout {
			b.metrics.Rejected++
			return false
		}
		b.transitionTo(StateHalfOpen)
	}
	return true
}

// Record reports the outcome of an allowed call.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.metrics.Successes++
	} else {
		b.metrics.Failures++
	}

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.config.FailThreshold {
			b.open()
		}
	case StateHalfOpen:
		if !success {
			b.open()
			return
		}
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transitionTo(StateClosed)
		}
	}
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.transitionTo(StateOpen)
}

func (b *Breaker) transitionTo(newState State) {
	b.state = newState
	b.failures = 0
	b.successes = 0
	b.metrics.StateChanges++
}

// IsFailure classifies a dispatched call: no response, or a 5xx status.
func IsFailure(status int, received bool) bool {
	return !received || status >= 500
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}

func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) Metrics() MetricsSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return MetricsSnapshot{
		Metrics:      b.metrics,
		CurrentState: b.state.String(),
	}
}

type MetricsSnapshot struct {
	Metrics
	CurrentState string
}
