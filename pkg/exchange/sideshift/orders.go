package sideshift

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

// RequestQuote requests a fixed-rate quote. Exactly one of the deposit and
// settle amounts must be set; otherwise a *core.ValidationError is returned
// and nothing is sent.
func (c *Client) RequestQuote(ctx context.Context, body core.QuoteBody, opts ...exchange.Option) (*core.Response[core.Quote], error) {
	if err := c.validateQuote(body); err != nil {
		return nil, err
	}

	options := exchange.ApplyOptions(opts...)
	req := core.Post("/quotes", body).
		SetAuth(true).
		SetAffiliate(true).
		SetUserIP(options.UserIP).
		SetCategory(core.CategoryQuote)
	return call[core.Quote](ctx, c, req), nil
}

func (c *Client) validateQuote(body core.QuoteBody) error {
	switch {
	case body.DepositAmount == nil && body.SettleAmount == nil:
		return core.NewValidationError("depositAmount", "at least one of depositAmount or settleAmount must be provided")
	case body.DepositAmount != nil && body.SettleAmount != nil:
		return core.NewValidationError("settleAmount", "only one of depositAmount or settleAmount may be provided")
	}

	if err := c.validate.Struct(body); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			f := fieldErrs[0]
			return core.NewValidationError(f.Field(), fmt.Sprintf("%s is %s", f.Field(), f.Tag()))
		}
		return core.NewValidationError("", err.Error())
	}
	return nil
}

// CreateFixedShift turns a quote into a fixed-rate shift.
func (c *Client) CreateFixedShift(ctx context.Context, body core.FixedShiftBody, opts ...exchange.Option) *core.Response[core.Shift] {
	options := exchange.ApplyOptions(opts...)
	req := core.Post("/shifts/fixed", body).
		SetAuth(true).
		SetAffiliate(true).
		SetUserIP(options.UserIP).
		SetCategory(core.CategoryShift)
	return call[core.Shift](ctx, c, req)
}

// CreateVariableShift creates a variable-rate shift.
func (c *Client) CreateVariableShift(ctx context.Context, body core.VariableShiftBody, opts ...exchange.Option) *core.Response[core.Shift] {
	options := exchange.ApplyOptions(opts...)
	req := core.Post("/shifts/variable", body).
		SetAuth(true).
		SetAffiliate(true).
		SetUserIP(options.UserIP).
		SetCategory(core.CategoryShift)
	return call[core.Shift](ctx, c, req)
}

// SetRefundAddress sets where deposits are returned if the shift is refunded.
func (c *Client) SetRefundAddress(ctx context.Context, shiftID, address, memo string) *core.Response[core.Shift] {
	body := core.RefundAddressBody{RefundAddress: address, RefundMemo: memo}
	req := core.Post(pathf("/shifts/%s/set-refund-address", shiftID), body).SetAuth(true)
	return call[core.Shift](ctx, c, req)
}

// CancelOrder cancels an order that has not received a deposit. The API answers
// with an empty body, returned as is.
func (c *Client) CancelOrder(ctx context.Context, orderID string) *core.Response[[]byte] {
	req := core.Post("/cancel-order", core.CancelOrderBody{OrderID: orderID}).SetAuth(true)
	return call[[]byte](ctx, c, req)
}
