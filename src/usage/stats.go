package usage

import "strings"

// AnonymousPrefix marks identities that are subject to the free trial
const AnonymousPrefix = "user_"

// Stats is the backend's view of an identity's usage. The client never
// computes it, it only reacts to it.
type Stats struct {
	InteractionCount int  `json:"interaction_count"`
	TrialRemaining   int  `json:"trial_remaining"`
	IsRegistered     bool `json:"is_registered"`
}

// IsAnonymous reports whether userID is an anonymous trial identity
func IsAnonymous(userID string) bool {
	return strings.HasPrefix(userID, AnonymousPrefix)
}
