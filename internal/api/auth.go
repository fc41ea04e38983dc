package api

import (
	"context"
	"fmt"

	"github.com/harrylevesque/emailforms/internal/models"
)

// ===== Auth =====

func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var out models.LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.postJSON(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.Message, error) {
	var out models.Message
	if err := c.postJSON(ctx, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser fetches the profile for the bearer token.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.getJSON(ctx, "/auth/user", &out); err != nil {
		return nil, err
	}
	if out.Email == "" {
		return nil, fmt.Errorf("/auth/user: profile without email: %w", ErrMalformedResponse)
	}
	return &out, nil
}
