package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ===== Tracking =====

func (c *Client) ListTracking(ctx context.Context) ([]models.TrackingRecord, error) {
	var out []models.TrackingRecord
	if err := c.getJSON(ctx, "/tracking", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckReturns asks the backend to scan the mailbox for returned forms.
func (c *Client) CheckReturns(ctx context.Context) (*models.CheckReturnsResult, error) {
	var out models.CheckReturnsResult
	if err := c.postJSON(ctx, "/tracking/check-returns", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TrackingReport(ctx context.Context, opts models.ReportOptions) (*models.Report, error) {
	q := url.Values{}
	if opts.FormID != "" {
		q.Set("formId", opts.FormID)
	}
	if opts.Returned != nil {
		q.Set("returned", strconv.FormatBool(*opts.Returned))
	}
	if opts.From != "" {
		q.Set("from", opts.From)
	}
	if opts.To != "" {
		q.Set("to", opts.To)
	}
	path := "/tracking/report"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out models.Report
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTracking(ctx context.Context, id string) (*models.TrackingRecord, error) {
	var out models.TrackingRecord
	if err := c.getJSON(ctx, "/tracking/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendTracking sends the tracked form to its recipient again.
func (c *Client) ResendTracking(ctx context.Context, id string, req models.SendRequest) (*models.SendResult, error) {
	var out models.SendResult
	if err := c.postJSON(ctx, "/tracking/"+url.PathEscape(id)+"/resend", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
