package api

import (
	"context"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ===== Extraction =====

// PendingExtractions lists returned forms that have not been processed.
func (c *Client) PendingExtractions(ctx context.Context) ([]models.PendingExtraction, error) {
	var out []models.PendingExtraction
	if err := c.getJSON(ctx, "/extraction", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Extract(ctx context.Context, trackingIDs []string) (*models.ExtractResult, error) {
	var out models.ExtractResult
	if err := c.postJSON(ctx, "/extraction/extract", map[string][]string{"formIds": trackingIDs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExtractedData(ctx context.Context) ([]models.ExtractedData, error) {
	var out []models.ExtractedData
	if err := c.getJSON(ctx, "/extraction/data", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportExtracted exports the given extracted rows (all rows when ids is empty).
func (c *Client) ExportExtracted(ctx context.Context, ids []string) (*models.ExportResult, error) {
	var out models.ExportResult
	if ids == nil {
		ids = []string{}
	}
	if err := c.postJSON(ctx, "/extraction/export", map[string][]string{"dataIds": ids}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
