package chat

import (
	"time"

	"github.com/elee1766/eventchat/src/syncview"
	"github.com/elee1766/eventchat/src/usage"
)

// eventEmitter helps emit events with common fields
type eventEmitter struct {
	sink           EventSink
	conversationID string
}

func newEventEmitter(sink EventSink, conversationID string) *eventEmitter {
	return &eventEmitter{sink: sink, conversationID: conversationID}
}

func (e *eventEmitter) base(eventType EventType) BaseEvent {
	return BaseEvent{
		Type:           eventType,
		Timestamp:      time.Now(),
		ConversationID: e.conversationID,
	}
}

func (e *eventEmitter) send(event Event) {
	if e.sink == nil {
		return
	}
	_ = e.sink.Send(event)
}

func (e *eventEmitter) exchangeStarted(message string) {
	e.send(&ExchangeStartedEvent{BaseEvent: e.base(EventExchangeStarted), Message: message})
}

func (e *eventEmitter) exchangeFinished(outcome Outcome) {
	e.send(&ExchangeFinishedEvent{BaseEvent: e.base(EventExchangeFinished), Outcome: outcome})
}

func (e *eventEmitter) status(text string) {
	e.send(&StatusEvent{BaseEvent: e.base(EventStatus), Text: text})
}

func (e *eventEmitter) viewChanged(view syncview.View) {
	e.send(&ViewChangedEvent{BaseEvent: e.base(EventViewChanged), View: view})
}

func (e *eventEmitter) fail(where string, err error) {
	e.send(&ErrorEvent{BaseEvent: e.base(EventError), Error: err, Context: where})
}

// decision emits the banner and prompt a gate decision asks for
func (e *eventEmitter) decision(d usage.Decision, reason string) {
	if d.Warning != "" {
		e.send(&WarningEvent{BaseEvent: e.base(EventWarning), Message: d.Warning})
	}
	if d.PromptRegistration {
		e.send(&RegistrationPromptEvent{BaseEvent: e.base(EventRegistrationPrompt), Reason: reason})
	}
}
