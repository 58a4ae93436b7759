package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

func userPath(userID string, rest ...string) string {
	p := "/api/users/" + url.PathEscape(userID) + "/conversations"
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// CreateConversation creates a conversation server-side and returns its id.
// It is never retried.
func (c *Client) CreateConversation(ctx context.Context, userID, provider string) (string, error) {
	if userID == "" {
		return "", ErrNoUserID
	}

	var resp createConversationResponse
	if err := c.postJSON(ctx, userPath(userID), createConversationRequest{LLMProvider: provider}, &resp); err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	if resp.ConversationID == "" {
		return "", fmt.Errorf("create conversation: %w", ErrEmptyResponse)
	}

	c.logger.Debug("conversation created", "user_id", userID, "conversation_id", resp.ConversationID)
	return resp.ConversationID, nil
}

// GetConversation loads a conversation's full history. A missing conversation
// is reported as ErrConversationNotFound.
func (c *Client) GetConversation(ctx context.Context, userID, conversationID string) (*ConversationDetail, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	var detail ConversationDetail
	if err := c.getJSON(ctx, userPath(userID, conversationID), &detail); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, conversationID)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if detail.ConversationID == "" {
		detail.ConversationID = conversationID
	}
	for i := range detail.Messages {
		if err := detail.Messages[i].Validate(); err != nil {
			return nil, fmt.Errorf("get conversation: message %d: %w", i, err)
		}
	}
	return &detail, nil
}

// ListConversations returns the user's conversations, most recent first.
func (c *Client) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	var resp listConversationsResponse
	if err := c.getJSON(ctx, userPath(userID), &resp); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	for i := range resp.Conversations {
		if resp.Conversations[i].UserID == "" {
			resp.Conversations[i].UserID = userID
		}
	}
	return resp.Conversations, nil
}
