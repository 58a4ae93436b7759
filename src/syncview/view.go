package syncview

import (
	"sync/atomic"

	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elliotchance/pie/v2"
)

const (
	// Greeting is shown while the conversation is empty
	Greeting = "Hi! What city, state, or zip code would you like to search for events in?"

	// RecommendationsIntro replaces empty assistant text on a turn with recommendations
	RecommendationsIntro = "I found some great events for you. Here are my top recommendations:"
)

var suggestedQuestions = []string{
	"Live music events this weekend",
	"Wellness and meditation activities",
	"Feeling lucky!",
}

// SuggestedQuestions returns the follow-up prompts offered after the location exchange
func SuggestedQuestions() []string {
	out := make([]string, len(suggestedQuestions))
	copy(out, suggestedQuestions)
	return out
}

// Kind is the presentation kind of a display message
type Kind string

const (
	KindUser Kind = "user"
	KindBot  Kind = "bot"
)

// Mode is the UI mode derived from the conversation
type Mode string

const (
	ModeAwaitingLocation Mode = "awaiting_location"
	ModeConversing       Mode = "conversing"
)

// DisplayMessage is the presentation projection of one turn
type DisplayMessage struct {
	ID              uint64
	Kind            Kind
	Text            string
	ShowEvents      bool
	IsError         bool
	Recommendations []conversation.RecommendationItem
}

// View is everything the UI needs to draw the conversation
type View struct {
	Messages         []DisplayMessage
	Mode             Mode
	LocationProvided bool
	ShowSuggestions  bool

	// Recommendations is the most recent recommendation list in the conversation
	Recommendations []conversation.RecommendationItem
}

// IDSequence hands out rendering ids. It is shared across derivations of one
// display session so list keys never repeat.
type IDSequence struct {
	next atomic.Uint64
}

// Next returns a fresh rendering id
func (s *IDSequence) Next() uint64 {
	return s.next.Add(1)
}

// BotMessages returns the bot messages of the view
func (v View) BotMessages() []DisplayMessage {
	return pie.Filter(v.Messages, func(m DisplayMessage) bool {
		return m.Kind == KindBot
	})
}

// LastUserIndex returns the index of the last user message, or -1
func (v View) LastUserIndex() int {
	for i := len(v.Messages) - 1; i >= 0; i-- {
		if v.Messages[i].Kind == KindUser {
			return i
		}
	}
	return -1
}

// HasEvents reports whether any message carries recommendations
func (v View) HasEvents() bool {
	return pie.FindFirstUsing(v.Messages, func(m DisplayMessage) bool {
		return m.ShowEvents
	}) >= 0
}

// Equivalent reports whether two views are identical apart from rendering ids
func (v View) Equivalent(other View) bool {
	if v.Mode != other.Mode || v.LocationProvided != other.LocationProvided ||
		v.ShowSuggestions != other.ShowSuggestions || len(v.Messages) != len(other.Messages) {
		return false
	}
	if !sameKeys(v.Recommendations, other.Recommendations) {
		return false
	}
	for i := range v.Messages {
		a, b := v.Messages[i], other.Messages[i]
		if a.Kind != b.Kind || a.Text != b.Text || a.ShowEvents != b.ShowEvents || a.IsError != b.IsError {
			return false
		}
		if !sameKeys(a.Recommendations, b.Recommendations) {
			return false
		}
	}
	return true
}

func sameKeys(a, b []conversation.RecommendationItem) bool {
	return pie.Equals(
		pie.Map(a, conversation.RecommendationItem.Key),
		pie.Map(b, conversation.RecommendationItem.Key),
	)
}
