package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hcms-console/hcms-console/internal/gateway"
)

// ErrNoToken is returned when a successful login response carries no token.
var ErrNoToken = errors.New("auth: login response without token")

// Client calls the authentication endpoints.
type Client struct {
	api *gateway.Client
}

// NewClient wraps api.
func NewClient(api *gateway.Client) *Client {
	return &Client{api: api}
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (string, error) {
	var resp LoginResponse
	if err := c.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return "", fmt.Errorf("auth: login: %w", err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return "", ErrNoToken
	}
	return resp.Token, nil
}

// Register creates an account. The caller logs in separately.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.api.Post(ctx, "/auth/register", req, nil); err != nil {
		return fmt.Errorf("auth: register: %w", err)
	}
	return nil
}
