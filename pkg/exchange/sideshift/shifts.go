package sideshift

import (
	"context"
	"net/http"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

const maxRecentShiftsLimit = 100

// GetPermissions reports whether the user, identified by WithUserIP, may create shifts.
func (c *Client) GetPermissions(ctx context.Context, opts ...exchange.Option) *core.Response[core.Permissions] {
	options := exchange.ApplyOptions(opts...)
	req := core.Get("/permissions").SetUserIP(options.UserIP)
	return call[core.Permissions](ctx, c, req)
}

// GetShift returns one shift in whichever of its four shapes the API reports.
func (c *Client) GetShift(ctx context.Context, shiftID string) *core.Response[core.Shift] {
	return call[core.Shift](ctx, c, core.Get(pathf("/shifts/%s", shiftID)))
}

// GetBulkShifts returns several shifts in one call. An empty id list fails
// with status 400 without contacting the API.
func (c *Client) GetBulkShifts(ctx context.Context, shiftIDs []string) *core.Response[[]core.Shift] {
	ids := joinNonEmpty(shiftIDs)
	if ids == "" {
		return core.FailStatus[[]core.Shift](
			core.NewValidationError("ids", "no shift ids provided"), http.StatusBadRequest)
	}
	return call[[]core.Shift](ctx, c, core.Get("/shifts").SetQuery("ids", ids))
}

// GetRecentShifts returns the latest public shifts. WithLimit selects between
// 1 and 100 entries, 10 by default; other values fail with status 400 without
// contacting the API.
func (c *Client) GetRecentShifts(ctx context.Context, opts ...exchange.Option) *core.Response[[]core.RecentShift] {
	options := exchange.ApplyOptions(opts...)
	if options.Limit < 1 || options.Limit > maxRecentShiftsLimit {
		return core.FailStatus[[]core.RecentShift](
			core.NewValidationError("limit", "limit must be between 1 and 100"), http.StatusBadRequest)
	}
	return call[[]core.RecentShift](ctx, c, core.Get("/recent-shifts").SetQuery("limit", options.Limit))
}
