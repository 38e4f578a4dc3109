package sideshift

import (
	"context"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

// GetCheckout returns a checkout by id.
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) *core.Response[core.Checkout] {
	return call[core.Checkout](ctx, c, core.Get(pathf("/checkout/%s", checkoutID)))
}

// CreateCheckout creates a hosted payment page credited to the configured affiliate.
func (c *Client) CreateCheckout(ctx context.Context, body core.CheckoutBody, opts ...exchange.Option) *core.Response[core.Checkout] {
	options := exchange.ApplyOptions(opts...)
	req := core.Post("/checkout", body).
		SetAuth(true).
		SetAffiliate(true).
		SetUserIP(options.UserIP)
	return call[core.Checkout](ctx, c, req)
}
