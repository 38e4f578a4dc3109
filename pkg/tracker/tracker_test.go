package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sideshift/pkg/core"
)

type fakeSource struct {
	mu        sync.Mutex
	responses []*core.Response[core.Shift]
	calls     int
}

func (f *fakeSource) GetShift(_ context.Context, shiftID string) *core.Response[core.Shift] {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return f.responses[i]
}

func shiftWith(id string, status core.ShiftStatus) *core.Response[core.Shift] {
	return core.OK(core.Shift{ID: id, Type: core.ShiftTypeFixed, Status: status, DepositCoin: "BTC", SettleCoin: "ETH"}, 200)
}

func TestShiftFilter_Matches(t *testing.T) {
	shift := &core.Shift{Status: core.StatusWaiting, Type: core.ShiftTypeVariable, DepositCoin: "BTC", SettleCoin: "ETH"}

	tests := []struct {
		name   string
		filter ShiftFilter
		want   bool
	}{
		{"empty filter matches all", ShiftFilter{}, true},
		{"status match", ShiftFilter{Status: core.StatusWaiting}, true},
		{"status mismatch", ShiftFilter{Status: core.StatusSettled}, false},
		{"type mismatch", ShiftFilter{Type: core.ShiftTypeFixed}, false},
		{"coins match", ShiftFilter{DepositCoin: "BTC", SettleCoin: "ETH"}, true},
		{"settle coin mismatch", ShiftFilter{SettleCoin: "USDT"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(shift))
		})
	}
}

func TestIsValidTransition(t *testing.T) {
	assert.True(t, isValidTransition(core.StatusWaiting, core.StatusProcessing))
	assert.True(t, isValidTransition(core.StatusProcessing, core.StatusSettled))
	assert.True(t, isValidTransition(core.StatusSettled, core.StatusSettled))
	assert.False(t, isValidTransition(core.StatusSettled, core.StatusWaiting))
	assert.False(t, isValidTransition(core.StatusExpired, core.StatusPending))
}

func TestTracker_Track(t *testing.T) {
	tr := New(&fakeSource{}, Config{MaxShifts: 1})

	assert.Error(t, tr.Track(nil))
	assert.Error(t, tr.Track(&core.Shift{}))

	require.NoError(t, tr.Track(&core.Shift{ID: "a", Status: core.StatusWaiting}))
	require.NoError(t, tr.Track(&core.Shift{ID: "a", Status: core.StatusPending}), "re-tracking does not count twice")
	assert.Error(t, tr.Track(&core.Shift{ID: "b"}))

	got, ok := tr.Get("a")
	require.True(t, ok)
	assert.Equal(t, core.StatusPending, got.Status)

	tr.Untrack("a")
	_, ok = tr.Get("a")
	assert.False(t, ok)
}

func TestTracker_Sync(t *testing.T) {
	src := &fakeSource{responses: []*core.Response[core.Shift]{
		shiftWith("a", core.StatusWaiting),
		shiftWith("a", core.StatusWaiting),
		shiftWith("a", core.StatusSettled),
	}}
	tr := New(src, Config{})

	var updates []core.ShiftStatus
	tr.OnUpdate(func(s *core.Shift) { updates = append(updates, s.Status) })

	for i := 0; i < 3; i++ {
		_, err := tr.Sync(context.Background(), "a")
		require.NoError(t, err)
	}

	assert.Equal(t, []core.ShiftStatus{core.StatusWaiting, core.StatusSettled}, updates)
	assert.Empty(t, tr.Open())
	assert.Len(t, tr.Shifts(ShiftFilter{Status: core.StatusSettled}), 1)
}

func TestTracker_SyncFailure(t *testing.T) {
	notFound := core.NewHTTPError("GET", "/shifts/a", 404, "404 Not Found", "Shift not found")
	tr := New(&fakeSource{responses: []*core.Response[core.Shift]{core.Fail[core.Shift](notFound)}}, Config{})

	_, err := tr.Sync(context.Background(), "a")

	require.Error(t, err)
	assert.True(t, core.IsTerminalError(err))

	_, err = tr.Sync(context.Background(), "")
	assert.Error(t, err)
}

func TestTracker_SyncRejectsLeavingTerminal(t *testing.T) {
	tr := New(&fakeSource{responses: []*core.Response[core.Shift]{shiftWith("a", core.StatusWaiting)}}, Config{})
	require.NoError(t, tr.Track(&core.Shift{ID: "a", Status: core.StatusRefunded}))

	_, err := tr.Sync(context.Background(), "a")
	assert.Error(t, err)
}

func TestTracker_SyncAll(t *testing.T) {
	tr := New(&fakeSource{responses: []*core.Response[core.Shift]{shiftWith("a", core.StatusProcessing)}}, Config{})
	require.NoError(t, tr.Track(&core.Shift{ID: "a", Status: core.StatusWaiting}))
	require.NoError(t, tr.Track(&core.Shift{ID: "done", Status: core.StatusSettled}))

	require.NoError(t, tr.SyncAll(context.Background()))

	a, _ := tr.Get("a")
	assert.Equal(t, core.StatusProcessing, a.Status)
}

func TestTracker_Watch(t *testing.T) {
	rateLimited := core.Fail[core.Shift](core.NewRateLimitError("GET", "/shifts/a", core.CategoryDefault, 60))
	src := &fakeSource{responses: []*core.Response[core.Shift]{
		shiftWith("a", core.StatusWaiting),
		rateLimited,
		shiftWith("a", core.StatusSettling),
		shiftWith("a", core.StatusSettled),
	}}
	tr := New(src, Config{PollInterval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	shift, err := tr.Watch(ctx, "a")

	require.NoError(t, err)
	assert.Equal(t, core.StatusSettled, shift.Status)
	assert.Equal(t, 4, src.calls)
}

func TestTracker_WatchStopsOnTerminalError(t *testing.T) {
	notFound := core.NewHTTPError("GET", "/shifts/a", 404, "", "")
	tr := New(&fakeSource{responses: []*core.Response[core.Shift]{core.Fail[core.Shift](notFound)}}, Config{PollInterval: time.Millisecond})

	_, err := tr.Watch(context.Background(), "a")

	var apiErr *core.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestTracker_WatchContextCancelled(t *testing.T) {
	tr := New(&fakeSource{responses: []*core.Response[core.Shift]{shiftWith("a", core.StatusWaiting)}}, Config{PollInterval: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := tr.Watch(ctx, "a")
	assert.Error(t, err)
}

func TestTracker_CallbacksConcurrent(t *testing.T) {
	tr := New(&fakeSource{}, Config{})

	var mu sync.Mutex
	count := 0
	tr.OnUpdate(func(*core.Shift) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = tr.Track(&core.Shift{ID: string(rune('a' + i)), Status: core.StatusWaiting})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}
