package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/logging"
)

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource interface {
	Token() string
}

// Client talks JSON over HTTP to the email form backend. It never retries
// and sets no client-side timeout.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *logging.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }
func WithLogger(l *logging.Logger) Option   { return func(c *Client) { c.log = l } }

// New creates a client for baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseTokens sets the token source consulted on every request.
func (c *Client) UseTokens(ts TokenSource) { c.tokens = ts }

func (c *Client) BaseURL() string { return c.baseURL }

// ===== Helpers =====

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, in, out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, in, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// postFile uploads one file as multipart field "file".
func (c *Client) postFile(ctx context.Context, path, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType(), out)
}

// getBytes fetches a non-JSON resource such as a PDF download.
func (c *Client) getBytes(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, b)
		c.logError(path, apiErr)
		return nil, apiErr
	}
	return b, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !isJSON(resp.Header.Get("Content-Type")) {
		if !ok {
			apiErr := &Error{Status: resp.StatusCode, Message: defaultErrorMessage}
			c.logError(path, apiErr)
			return apiErr
		}
		if out != nil {
			c.log.Warn("Unexpected response type", zap.String("path", path), zap.String("content_type", resp.Header.Get("Content-Type")))
			return fmt.Errorf("%s: %w", path, ErrMalformedResponse)
		}
		return nil
	}
	if !ok {
		apiErr := newError(resp.StatusCode, b)
		c.logError(path, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", path, ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("API request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) logError(path string, e *Error) {
	c.log.Warn("API error", zap.String("path", path), zap.String("status", e.StatusText()), zap.String("message", e.Message))
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}
