package stream

import (
	"github.com/elee1766/eventchat/src/conversation"
)

// EventType is the wire discriminator of a protocol event
type EventType string

const (
	TypeStatus         EventType = "status"
	TypeDelta          EventType = "message"
	TypeRecommendation EventType = "recommendation"
	TypeError          EventType = "error"
	TypeDone           EventType = "done"
)

// Event is one protocol event of a chat exchange. The set of implementations is closed.
type Event interface {
	Type() EventType
	// Terminal reports whether no further events may follow
	Terminal() bool
	isEvent()
}

// Status is an ephemeral progress label; each one replaces the previous
type Status struct {
	Text string
}

// Metadata accompanies a delta
type Metadata struct {
	TrialExceeded bool `json:"trial_exceeded,omitempty"`
}

// Delta carries the full cumulative assistant text so far, not a fragment
type Delta struct {
	Content  string
	Metadata *Metadata
}

// TrialExceeded reports whether the delta signals the end of the trial
func (d Delta) TrialExceeded() bool {
	return d.Metadata != nil && d.Metadata.TrialExceeded
}

// Recommendation is one complete recommendation item, in display order
type Recommendation struct {
	Item conversation.RecommendationItem
}

// Error terminates the exchange unsuccessfully
type Error struct {
	Message string
}

// Done terminates the exchange successfully
type Done struct{}

func (Status) Type() EventType         { return TypeStatus }
func (Delta) Type() EventType          { return TypeDelta }
func (Recommendation) Type() EventType { return TypeRecommendation }
func (Error) Type() EventType          { return TypeError }
func (Done) Type() EventType           { return TypeDone }

func (Status) Terminal() bool         { return false }
func (Delta) Terminal() bool          { return false }
func (Recommendation) Terminal() bool { return false }
func (Error) Terminal() bool          { return true }
func (Done) Terminal() bool           { return true }

func (Status) isEvent()         {}
func (Delta) isEvent()          {}
func (Recommendation) isEvent() {}
func (Error) isEvent()          {}
func (Done) isEvent()           {}
