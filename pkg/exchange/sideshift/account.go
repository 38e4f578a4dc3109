package sideshift

import (
	"context"

	"sideshift/pkg/core"
)

// GetAccount returns the balances of the account owning the private key.
func (c *Client) GetAccount(ctx context.Context) *core.Response[core.Account] {
	return call[core.Account](ctx, c, core.Get("/account").SetAuth(true))
}
