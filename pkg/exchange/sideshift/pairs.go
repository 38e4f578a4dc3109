package sideshift

import (
	"context"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

// GetPair returns the rate and limits between two coins, e.g. "btc-bitcoin"
// and "eth-ethereum". WithAmount prices a specific deposit amount.
func (c *Client) GetPair(ctx context.Context, from, to string, opts ...exchange.Option) *core.Response[core.Pair] {
	options := exchange.ApplyOptions(opts...)
	req := core.Get(pathf("/pair/%s/%s", from, to)).
		SetAuth(true).
		SetAffiliate(true)
	if options.Amount != nil {
		req.SetQuery("amount", options.Amount.String())
	}
	return call[core.Pair](ctx, c, req)
}

// GetPairs returns the pairs between every combination of coins. An empty
// list is a *core.ValidationError and nothing is sent.
func (c *Client) GetPairs(ctx context.Context, coins []string) (*core.Response[[]core.Pair], error) {
	pairs := joinNonEmpty(coins)
	if pairs == "" {
		return nil, core.NewValidationError("coins", "coins cannot be empty: provide at least one coin")
	}

	req := core.Get("/pairs").
		SetQuery("pairs", pairs).
		SetAuth(true).
		SetAffiliate(true)
	return call[[]core.Pair](ctx, c, req), nil
}
