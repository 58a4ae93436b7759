package apiclient

import (
	"github.com/elee1766/eventchat/src/conversation"
)

// ChatRequest is the body of a chat stream request. The full history is sent
// on every request.
type ChatRequest struct {
	Message             string              `json:"message"`
	ConversationHistory []conversation.Turn `json:"conversation_history"`
	LLMProvider         string              `json:"llm_provider"`
	IsInitialResponse   bool                `json:"is_initial_response"`
	UserID              string              `json:"user_id"`
	ConversationID      string              `json:"conversation_id"`
}

// Validate checks the fields the backend requires
func (r *ChatRequest) Validate() error {
	if r.Message == "" {
		return &ValidationError{Field: "message", Message: "must not be empty"}
	}
	if r.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if r.ConversationID == "" {
		return &ValidationError{Field: "conversation_id", Message: "must not be empty"}
	}
	return nil
}

type createConversationRequest struct {
	LLMProvider string `json:"llm_provider"`
}

type createConversationResponse struct {
	ConversationID string `json:"conversation_id"`
}

// ConversationDetail is a conversation with its full, ordered history
type ConversationDetail struct {
	ConversationID string              `json:"conversation_id"`
	Messages       []conversation.Turn `json:"messages"`
}

// ConversationSummary is one entry of a conversation listing
type ConversationSummary struct {
	ConversationID string                 `json:"conversation_id"`
	UserID         string                 `json:"user_id"`
	CreatedAt      conversation.Timestamp `json:"created_at"`
	UpdatedAt      conversation.Timestamp `json:"updated_at"`
}

// Handle returns the summary as a conversation handle
func (s ConversationSummary) Handle() conversation.Handle {
	return conversation.Handle{ConversationID: s.ConversationID, OwnerUserID: s.UserID}
}

type listConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type registerRequest struct {
	AnonymousUserID string `json:"anonymous_user_id"`
	Token           string `json:"token"`
}

// AuthResult is the outcome of a token verification or registration
type AuthResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
	Message string `json:"message,omitempty"`
}

// HealthStatus is returned by the health endpoint
type HealthStatus struct {
	Status string `json:"status"`
}
