package session

import (
	"github.com/elee1766/eventchat/src/usage"
)

// Persisted keys
const (
	KeyConversationID  = "current_conversation_id"
	KeyAnonymousUserID = "anonymous_user_id"
	KeyUserID          = "user_id"
)

// Context is the identity of the running client session. It is replaced
// wholesale whenever the identity changes.
type Context struct {
	UserID          string
	AnonymousUserID string
	Authenticated   bool
}

// Anonymous reports whether the session runs on a trial identity
func (c Context) Anonymous() bool {
	return !c.Authenticated && usage.IsAnonymous(c.UserID)
}

// IsZero reports whether no identity has been resolved
func (c Context) IsZero() bool {
	return c.UserID == ""
}

// Listener is told about every identity change
type Listener interface {
	IdentityChanged(sess Context)
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(sess Context)

// IdentityChanged implements Listener
func (f ListenerFunc) IdentityChanged(sess Context) {
	f(sess)
}
