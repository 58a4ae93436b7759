package apiclient

import (
	"context"
	"fmt"
)

// VerifyToken asks the backend to verify an identity token.
func (c *Client) VerifyToken(ctx context.Context, token string) (*AuthResult, error) {
	if token == "" {
		return nil, &ValidationError{Field: "token", Message: "must not be empty"}
	}

	var result AuthResult
	if err := c.postJSON(ctx, "/api/auth/verify", verifyRequest{Token: token}, &result); err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	return &result, nil
}

// RegisterWithToken links an anonymous identity to a verified account.
func (c *Client) RegisterWithToken(ctx context.Context, anonymousUserID, token string) (*AuthResult, error) {
	if token == "" {
		return nil, &ValidationError{Field: "token", Message: "must not be empty"}
	}
	if anonymousUserID == "" {
		return nil, ErrNoUserID
	}

	req := registerRequest{AnonymousUserID: anonymousUserID, Token: token}
	var result AuthResult
	if err := c.postJSON(ctx, "/api/auth/register", req, &result); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &result, nil
}
