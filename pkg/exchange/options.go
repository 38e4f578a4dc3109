package exchange

import (
	"sideshift/pkg/core"
)

// DefaultRecentShiftsLimit is the page size of GetRecentShifts when no limit is given.
const DefaultRecentShiftsLimit = 10

type Option func(*Options)

type Options struct {
	UserIP string
	Limit  int
	Amount *core.Amount
}

// WithUserIP forwards the end user's IP address in the x-user-ip header.
func WithUserIP(ip string) Option {
	return func(o *Options) {
		o.UserIP = ip
	}
}

// WithLimit sets the number of recent shifts to return, between 1 and 100.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithAmount prices a pair for a specific deposit amount.
func WithAmount(amount core.Amount) Option {
	return func(o *Options) {
		o.Amount = &amount
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{Limit: DefaultRecentShiftsLimit}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
