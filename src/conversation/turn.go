package conversation

import (
	"errors"
	"fmt"
)

// Role identifies who produced a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	// ErrInvalidRole indicates a turn carries a role other than user or assistant
	ErrInvalidRole = errors.New("invalid turn role")

	// ErrStaleEpoch indicates a mutation was attempted against a store that has since been reset
	ErrStaleEpoch = errors.New("stale conversation epoch")
)

// Turn is one message of a conversation. Turns are immutable once appended.
type Turn struct {
	Role            Role                 `json:"role"`
	Content         string               `json:"content"`
	Timestamp       Timestamp            `json:"timestamp"`
	Recommendations []RecommendationItem `json:"recommendations,omitempty"`

	// Synthetic marks a locally produced turn (an error notice). It is displayed
	// but never replayed to the backend.
	Synthetic bool `json:"-"`
}

// Validate checks that the turn can be stored
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, t.Role)
	}
}

// HasRecommendations reports whether the turn carries recommendation items
func (t Turn) HasRecommendations() bool {
	return len(t.Recommendations) > 0
}

// clone returns a copy that shares no slices with t
func (t Turn) clone() Turn {
	if t.Recommendations != nil {
		recs := make([]RecommendationItem, len(t.Recommendations))
		copy(recs, t.Recommendations)
		t.Recommendations = recs
	}
	return t
}

// NewUserTurn creates a user turn stamped with the current time
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, Timestamp: Now()}
}

// NewAssistantTurn creates an assistant turn stamped with the current time
func NewAssistantTurn(content string, recs []RecommendationItem) Turn {
	t := Turn{Role: RoleAssistant, Content: content, Timestamp: Now(), Recommendations: recs}
	return t.clone()
}

// NewErrorTurn creates the synthetic assistant turn shown when an exchange fails
func NewErrorTurn(message string) Turn {
	return Turn{
		Role:      RoleAssistant,
		Content:   message,
		Timestamp: Now(),
		Synthetic: true,
	}
}

// Handle binds the client to a server-side conversation record
type Handle struct {
	ConversationID string `json:"conversation_id"`
	OwnerUserID    string `json:"user_id"`
}

// IsZero reports whether no conversation is bound
func (h Handle) IsZero() bool {
	return h.ConversationID == ""
}
