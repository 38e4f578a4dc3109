package sideshift

import (
	"context"

	"sideshift/pkg/core"
)

func (c *Client) GetXaiStats(ctx context.Context) *core.Response[core.XaiStats] {
	return call[core.XaiStats](ctx, c, core.Get("/xai/stats"))
}
