// internal/infrastructure/backend/users.go
package backend

import (
	"context"
	"net/http"
)

// Login calls POST /users/login
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var result AuthResult
	if err := c.call(ctx, http.MethodPost, "/users/login", nil, "", creds, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "Login failed"}
	}
	return &result, nil
}

// Register calls POST /users/register. The backend may or may not log the
// new account in; a result without a token means the visitor must sign in.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	var result AuthResult
	if err := c.call(ctx, http.MethodPost, "/users/register", nil, "", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me calls GET /users/me, the only authority on who the token belongs to
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers calls GET /users (admin)
func (c *Client) ListUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.call(ctx, http.MethodGet, "/users", nil, token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// PromoteUser calls POST /users/promote (admin)
func (c *Client) PromoteUser(ctx context.Context, token, userID string) error {
	body := map[string]string{"userId": userID}
	return c.call(ctx, http.MethodPost, "/users/promote", nil, token, body, nil)
}
