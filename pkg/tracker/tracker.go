// Package tracker follows shifts through their lifecycle by polling the API.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"sideshift/pkg/core"
)

// DefaultPollInterval paces Watch. Six polls a minute leave the default rate
// window mostly free for other calls.
const DefaultPollInterval = 10 * time.Second

// ShiftSource fetches a shift by id. *sideshift.Client satisfies it.
type ShiftSource interface {
	GetShift(ctx context.Context, shiftID string) *core.Response[core.Shift]
}

type ShiftCallback func(*core.Shift)

type Config struct {
	MaxShifts    int           `json:"max_shifts"`
	PollInterval time.Duration `json:"poll_interval"`
}

type Tracker struct {
	source      ShiftSource
	config      Config
	logger      zerolog.Logger
	mu          sync.RWMutex
	shifts      map[string]*core.Shift
	callbacks   []ShiftCallback
	callbacksMu sync.RWMutex
}

type Option func(*Tracker)

func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) {
		t.logger = l
	}
}

func New(source ShiftSource, config Config, opts ...Option) *Tracker {
	if config.MaxShifts <= 0 {
		config.MaxShifts = 10000
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	t := &Tracker{
		source: source,
		config: config,
		logger: zerolog.Nop(),
		shifts: make(map[string]*core.Shift),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track starts following shift, typically one just returned by a create call.
func (t *Tracker) Track(shift *core.Shift) error {
	if shift == nil {
		return fmt.Errorf("shift is required")
	}
	if shift.ID == "" {
		return fmt.Errorf("shift ID is required")
	}

	t.mu.Lock()
	if _, exists := t.shifts[shift.ID]; !exists && len(t.shifts) >= t.config.MaxShifts {
		t.mu.Unlock()
		return fmt.Errorf("tracker is full: %d shifts", t.config.MaxShifts)
	}
	t.shifts[shift.ID] = shift
	t.mu.Unlock()

	t.notifyCallbacks(shift)
	return nil
}

// Untrack stops following a shift.
func (t *Tracker) Untrack(shiftID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.shifts, shiftID)
}

func (t *Tracker) Get(shiftID string) (*core.Shift, bool) {
	if shiftID == "" {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	shift, ok := t.shifts[shiftID]
	return shift, ok
}

// Sync fetches the current state of a shift and stores it. Callbacks run when
// the status changed or the shift was not tracked yet.
func (t *Tracker) Sync(ctx context.Context, shiftID string) (*core.Shift, error) {
	if shiftID == "" {
		return nil, fmt.Errorf("shift ID is required")
	}

	resp := t.source.GetShift(ctx, shiftID)
	latest, err := resp.Unwrap()
	if err != nil {
		return nil, fmt.Errorf("sync shift: %w", err)
	}
	if latest.ID == "" {
		latest.ID = shiftID
	}

	t.mu.Lock()
	existing, exists := t.shifts[shiftID]
	if exists && !isValidTransition(existing.Status, latest.Status) {
		t.mu.Unlock()
		return nil, fmt.Errorf("invalid status transition from api: %s -> %s", existing.Status, latest.Status)
	}
	changed := !exists || existing.Status != latest.Status
	t.shifts[shiftID] = &latest
	t.mu.Unlock()

	if changed {
		t.logger.Debug().
			Str("shift_id", shiftID).
			Str("status", string(latest.Status)).
			Msg("shift status changed")
		t.notifyCallbacks(&latest)
	}
	return &latest, nil
}

// SyncAll syncs every open shift and joins the errors.
func (t *Tracker) SyncAll(ctx context.Context) error {
	var errs []error
	for _, shift := range t.Open() {
		if _, err := t.Sync(ctx, shift.ID); err != nil {
			t.logger.Warn().
				Err(err).
				Str("shift_id", shift.ID).
				Msg("failed to sync shift")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Watch polls a shift at the configured pace until it reaches a terminal
// status or ctx ends. Rate-limit and transport failures are retried at the
// next tick; other failures stop the watch.
func (t *Tracker) Watch(ctx context.Context, shiftID string) (*core.Shift, error) {
	limiter := rate.NewLimiter(rate.Every(t.config.PollInterval), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("watch shift %s: %w", shiftID, err)
		}

		shift, err := t.Sync(ctx, shiftID)
		if err != nil {
			if core.IsRateLimitError(err) || core.IsNetworkError(err) || core.IsTimeoutError(err) {
				t.logger.Debug().Err(err).Str("shift_id", shiftID).Msg("retrying shift poll")
				continue
			}
			return nil, err
		}
		if shift.Status.IsTerminal() {
			return shift, nil
		}
	}
}

// Shifts returns the tracked shifts accepted by filter.
func (t *Tracker) Shifts(filter ShiftFilter) []*core.Shift {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []*core.Shift
	for _, shift := range t.shifts {
		if filter.Matches(shift) {
			result = append(result, shift)
		}
	}
	return result
}

// Open returns the tracked shifts that are not in a terminal status.
func (t *Tracker) Open() []*core.Shift {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []*core.Shift
	for _, shift := range t.shifts {
		if !shift.Status.IsTerminal() {
			result = append(result, shift)
		}
	}
	return result
}

func (t *Tracker) OnUpdate(callback ShiftCallback) {
	t.callbacksMu.Lock()
	defer t.callbacksMu.Unlock()
	t.callbacks = append(t.callbacks, callback)
}

func (t *Tracker) notifyCallbacks(shift *core.Shift) {
	t.callbacksMu.RLock()
	callbacks := make([]ShiftCallback, len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.callbacksMu.RUnlock()

	for _, callback := range callbacks {
		callback(shift)
	}
}

type ShiftFilter struct {
	Status      core.ShiftStatus `json:"status,omitempty"`
	Type        core.ShiftType   `json:"type,omitempty"`
	DepositCoin string           `json:"deposit_coin,omitempty"`
	SettleCoin  string           `json:"settle_coin,omitempty"`
}

func (f *ShiftFilter) Matches(shift *core.Shift) bool {
	if f.Status != "" && shift.Status != f.Status {
		return false
	}

	if f.Type != "" && shift.Type != f.Type {
		return false
	}

	if f.DepositCoin != "" && shift.DepositCoin != f.DepositCoin {
		return false
	}

	if f.SettleCoin != "" && shift.SettleCoin != f.SettleCoin {
		return false
	}

	return true
}

// isValidTransition rejects any move out of a terminal status.
func isValidTransition(from, to core.ShiftStatus) bool {
	if from == to {
		return true
	}
	return !from.IsTerminal()
}
