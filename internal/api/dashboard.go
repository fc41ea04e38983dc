package api

import (
	"context"

	"github.com/harrylevesque/emailforms/internal/models"
)

func (c *Client) DashboardSummary(ctx context.Context) (*models.DashboardSummary, error) {
	var out models.DashboardSummary
	if err := c.getJSON(ctx, "/dashboard/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
