package sideshift

import (
	"context"

	"sideshift/pkg/core"
)

// GetCoins returns every supported coin and its networks.
func (c *Client) GetCoins(ctx context.Context) *core.Response[[]core.Coin] {
	return call[[]core.Coin](ctx, c, core.Get("/coins"))
}

// GetCoinIcon returns the icon of a coin, e.g. "btc-bitcoin", as svg or png bytes.
func (c *Client) GetCoinIcon(ctx context.Context, coinNetwork string) *core.Response[core.CoinIcon] {
	raw := c.session.Execute(ctx, core.Get(pathf("/coins/icon/%s", coinNetwork)))
	if !raw.Success {
		return &core.Response[core.CoinIcon]{Error: raw.Error, Status: raw.Status, Err: raw.Err}
	}
	return core.OK(core.CoinIcon{ContentType: raw.Data.ContentType, Data: raw.Data.Body}, raw.Status)
}
