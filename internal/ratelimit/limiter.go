// Package ratelimit implements the client-side fixed-window request ceilings.
//
// Each category owns one window. The window resets once a full period has
// elapsed since it started; within a window, calls beyond the category's
// ceiling are rejected without being counted.
//
// A Limiter is not safe for concurrent use. Two goroutines racing on the same
// window may both be admitted past the ceiling.
package ratelimit

import (
	"sync/atomic"
	"time"

	"sideshift/pkg/core"
)

// Period is the length of a rate window.
const Period = time.Minute

// Window is the counting state of one category.
type Window struct {
	Count int
	Start time.Time
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed  bool
	Category core.RateCategory
	Count    int
	Limit    int
	ResetAt  time.Time
}

// Admit applies one fixed-window check to w at now. A window older than period
// is reset first; the call is then admitted and counted if w.Count < limit.
// A rejected call leaves w.Count untouched.
func Admit(w *Window, limit int, now time.Time, period time.Duration) bool {
	if now.Sub(w.Start) >= period {
		w.Count = 0
		w.Start = now
	}
	if w.Count >= limit {
		return false
	}
	w.Count++
	return true
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now. Used by tests to drive window rollover.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// Limiter holds one window per rate category.
type Limiter struct {
	limits  core.RateConfig
	windows map[core.RateCategory]*Window
	metrics map[core.RateCategory]*Metrics
	now     func() time.Time
}

// Metrics tracks admissions for one category.
type Metrics struct {
	allowed atomic.Int64
	denied  atomic.Int64
}

// New creates a Limiter with the given ceilings.
func New(limits core.RateConfig, opts ...Option) *Limiter {
	l := &Limiter{
		limits:  limits,
		windows: make(map[core.RateCategory]*Window, 3),
		metrics: make(map[core.RateCategory]*Metrics, 3),
		now:     time.Now,
	}
	for _, c := range core.Categories() {
		l.windows[c] = &Window{}
		l.metrics[c] = &Metrics{}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) resolve(category core.RateCategory) core.RateCategory {
	category = category.Normalize()
	if _, ok := l.windows[category]; !ok {
		return core.CategoryDefault
	}
	return category
}

// Allow checks and, when admitted, counts one call in category. Unknown
// categories share the default window.
func (l *Limiter) Allow(category core.RateCategory) Decision {
	category = l.resolve(category)
	w := l.windows[category]
	limit := l.limits.Limit(category)

	allowed := Admit(w, limit, l.now(), Period)
	if allowed {
		l.metrics[category].allowed.Add(1)
	} else {
		l.metrics[category].denied.Add(1)
	}

	return Decision{
		Allowed:  allowed,
		Category: category,
		Count:    w.Count,
		Limit:    limit,
		ResetAt:  w.Start.Add(Period),
	}
}

// Limit returns the ceiling of category.
func (l *Limiter) Limit(category core.RateCategory) int {
	return l.limits.Limit(l.resolve(category))
}

// CategorySnapshot is a point-in-time view of one category.
type CategorySnapshot struct {
	// Count is the number of calls admitted in the current window.
	Count int
	// Limit is the category ceiling.
	Limit int
	// WindowStart is when the current window began. Zero before the first call.
	WindowStart time.Time
	// Allowed is the number of calls admitted since creation.
	Allowed int64
	// Denied is the number of calls rejected since creation.
	Denied int64
}

// MetricsSnapshot is a point-in-time capture of every category.
type MetricsSnapshot map[core.RateCategory]CategorySnapshot

// Metrics returns a snapshot of the current windows and counters.
func (l *Limiter) Metrics() MetricsSnapshot {
	snap := make(MetricsSnapshot, len(l.windows))
	for c, w := range l.windows {
		m := l.metrics[c]
		snap[c] = CategorySnapshot{
			Count:       w.Count,
			Limit:       l.limits.Limit(c),
			WindowStart: w.Start,
			Allowed:     m.allowed.Load(),
			Denied:      m.denied.Load(),
		}
	}
	return snap
}
