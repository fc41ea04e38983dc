package api

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ErrNotPDF is returned by UploadForm for files without a .pdf extension.
var ErrNotPDF = errors.New("only PDF files are allowed")

// ===== Forms =====

func (c *Client) ListForms(ctx context.Context) ([]models.Form, error) {
	var out []models.Form
	if err := c.getJSON(ctx, "/forms", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadForm returns the raw PDF bytes of a form.
func (c *Client) DownloadForm(ctx context.Context, id string) ([]byte, error) {
	return c.getBytes(ctx, "/forms/"+url.PathEscape(id))
}

// UploadForm uploads a PDF. The extension is checked before any request is made.
func (c *Client) UploadForm(ctx context.Context, filename string, r io.Reader) (*models.Form, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, ErrNotPDF
	}
	var out models.Form
	if err := c.postFile(ctx, "/forms", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateForm renames a form.
func (c *Client) UpdateForm(ctx context.Context, id, name string) (*models.Form, error) {
	var out models.Form
	if err := c.putJSON(ctx, "/forms/"+url.PathEscape(id), map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteForm(ctx context.Context, id string) error {
	return c.delete(ctx, "/forms/"+url.PathEscape(id), nil)
}

// SendForm emails a form to the given recipients. One result is returned
// per recipient; a failed delivery is a result, not an error.
func (c *Client) SendForm(ctx context.Context, id string, req models.SendRequest) ([]models.SendResult, error) {
	var out []models.SendResult
	if err := c.postJSON(ctx, "/forms/"+url.PathEscape(id)+"/send", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}
