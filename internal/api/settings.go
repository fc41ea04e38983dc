package api

import (
	"context"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ===== Settings =====

func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var out models.Settings
	if err := c.getJSON(ctx, "/settings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings applies a partial update and returns the resulting settings.
func (c *Client) UpdateSettings(ctx context.Context, upd models.SettingsUpdate) (*models.Settings, error) {
	var out struct {
		Message string `json:"message"`
		models.Settings
	}
	if err := c.putJSON(ctx, "/settings", upd, &out); err != nil {
		return nil, err
	}
	return &out.Settings, nil
}

func (c *Client) TestIntegration(ctx context.Context) (*models.IntegrationTestResult, error) {
	var out models.IntegrationTestResult
	if err := c.postJSON(ctx, "/settings/test-integration", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Backup(ctx context.Context) (*models.BackupResult, error) {
	var out models.BackupResult
	if err := c.postJSON(ctx, "/settings/backup", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
