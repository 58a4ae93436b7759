package apiclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/elee1766/eventchat/src/usage"
)

// GetUsage fetches the usage statistics for an identity.
func (c *Client) GetUsage(ctx context.Context, userID string) (*usage.Stats, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	var stats usage.Stats
	if err := c.getJSON(ctx, "/api/users/"+url.PathEscape(userID)+"/usage", &stats); err != nil {
		return nil, fmt.Errorf("get usage: %w", err)
	}
	return &stats, nil
}
