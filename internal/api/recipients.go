package api

import (
	"context"
	"io"
	"net/url"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ===== Recipients =====

func (c *Client) ListRecipients(ctx context.Context) ([]models.Recipient, error) {
	var out []models.Recipient
	if err := c.getJSON(ctx, "/recipients", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRecipient(ctx context.Context, id string) (*models.Recipient, error) {
	var out models.Recipient
	if err := c.getJSON(ctx, "/recipients/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateRecipient(ctx context.Context, r models.SendRecipient) (*models.Recipient, error) {
	var out models.Recipient
	if err := c.postJSON(ctx, "/recipients", r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateRecipient(ctx context.Context, id string, r models.SendRecipient) (*models.Recipient, error) {
	var out models.Recipient
	if err := c.putJSON(ctx, "/recipients/"+url.PathEscape(id), r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRecipient(ctx context.Context, id string) error {
	return c.delete(ctx, "/recipients/"+url.PathEscape(id), nil)
}

// ImportRecipients uploads a CSV of name,email rows.
func (c *Client) ImportRecipients(ctx context.Context, filename string, r io.Reader) (*models.ImportResult, error) {
	var out models.ImportResult
	if err := c.postFile(ctx, "/recipients/import", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
