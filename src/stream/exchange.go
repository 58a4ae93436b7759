package stream

import (
	"errors"
	"fmt"

	"github.com/elee1766/eventchat/src/conversation"
)

// ErrAfterTerminal indicates an event arrived after the exchange already terminated
var ErrAfterTerminal = errors.New("event after terminal event")

// Exchange is the fold state of one request/response exchange.
// It is not safe for concurrent use; events must be applied in arrival order.
type Exchange struct {
	text          string
	status        string
	recs          []conversation.RecommendationItem
	trialExceeded bool
	deltas        int
	terminal      Event
}

// NewExchange creates an empty exchange
func NewExchange() *Exchange {
	return &Exchange{}
}

// Apply folds one event into the exchange state
func (x *Exchange) Apply(ev Event) error {
	if x.terminal != nil {
		return fmt.Errorf("%w: %s after %s", ErrAfterTerminal, ev.Type(), x.terminal.Type())
	}

	switch e := ev.(type) {
	case Status:
		x.status = e.Text
	case Delta:
		// cumulative: the latest delta replaces the in-flight text
		x.text = e.Content
		x.deltas++
		if e.TrialExceeded() {
			x.trialExceeded = true
		}
	case Recommendation:
		x.recs = append(x.recs, e.Item)
	case Error:
		x.terminal = e
		x.status = ""
	case Done:
		x.terminal = e
		x.status = ""
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
	return nil
}

// Text returns the latest cumulative assistant text
func (x *Exchange) Text() string { return x.text }

// Deltas returns how many delta events were applied
func (x *Exchange) Deltas() int { return x.deltas }

// Status returns the current progress label
func (x *Exchange) Status() string { return x.status }

// Recommendations returns the buffered recommendations in arrival order
func (x *Exchange) Recommendations() []conversation.RecommendationItem {
	out := make([]conversation.RecommendationItem, len(x.recs))
	copy(out, x.recs)
	return out
}

// TrialExceeded reports whether any delta carried the trial-exceeded flag
func (x *Exchange) TrialExceeded() bool { return x.trialExceeded }

// Finished reports whether a terminal event was applied
func (x *Exchange) Finished() bool { return x.terminal != nil }

// Failed returns the error message if the exchange ended with an Error event
func (x *Exchange) Failed() (string, bool) {
	if e, ok := x.terminal.(Error); ok {
		return e.Message, true
	}
	return "", false
}

// Result returns the assistant turn to append. It is only available after Done,
// and only when there is text or at least one recommendation to show.
func (x *Exchange) Result() (conversation.Turn, bool) {
	if _, ok := x.terminal.(Done); !ok {
		return conversation.Turn{}, false
	}
	if x.text == "" && len(x.recs) == 0 {
		return conversation.Turn{}, false
	}

	var recs []conversation.RecommendationItem
	if len(x.recs) > 0 {
		recs = x.Recommendations()
	}
	return conversation.NewAssistantTurn(x.text, recs), true
}
