package exchange

import (
	"context"

	"sideshift/pkg/core"
)

// Exchange is the full SideShift v2 surface. Every call returns the uniform
// envelope; only input validation that happens before dispatch is reported as
// a Go error.
type Exchange interface {
	GetCoins(ctx context.Context) *core.Response[[]core.Coin]
	GetCoinIcon(ctx context.Context, coinNetwork string) *core.Response[core.CoinIcon]

	GetPermissions(ctx context.Context, opts ...Option) *core.Response[core.Permissions]
	GetShift(ctx context.Context, shiftID string) *core.Response[core.Shift]
	GetBulkShifts(ctx context.Context, shiftIDs []string) *core.Response[[]core.Shift]
	GetRecentShifts(ctx context.Context, opts ...Option) *core.Response[[]core.RecentShift]

	GetXaiStats(ctx context.Context) *core.Response[core.XaiStats]

	GetCheckout(ctx context.Context, checkoutID string) *core.Response[core.Checkout]
	CreateCheckout(ctx context.Context, body core.CheckoutBody, opts ...Option) *core.Response[core.Checkout]

	RequestQuote(ctx context.Context, body core.QuoteBody, opts ...Option) (*core.Response[core.Quote], error)
	CreateFixedShift(ctx context.Context, body core.FixedShiftBody, opts ...Option) *core.Response[core.Shift]
	CreateVariableShift(ctx context.Context, body core.VariableShiftBody, opts ...Option) *core.Response[core.Shift]
	SetRefundAddress(ctx context.Context, shiftID, address, memo string) *core.Response[core.Shift]
	CancelOrder(ctx context.Context, orderID string) *core.Response[[]byte]

	GetPair(ctx context.Context, from, to string, opts ...Option) *core.Response[core.Pair]
	GetPairs(ctx context.Context, coins []string) (*core.Response[[]core.Pair], error)

	GetAccount(ctx context.Context) *core.Response[core.Account]

	Close() error
}
