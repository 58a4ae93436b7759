package chat

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/elee1766/eventchat/src/syncview"
)

// EventType represents the type of UI event
type EventType string

const (
	EventExchangeStarted    EventType = "exchange_started"
	EventExchangeFinished   EventType = "exchange_finished"
	EventStatus             EventType = "status"
	EventViewChanged        EventType = "view_changed"
	EventWarning            EventType = "warning"
	EventRegistrationPrompt EventType = "registration_prompt"
	EventError              EventType = "error"
)

// Event is the base interface for all UI events
type Event interface {
	GetType() EventType
	GetTimestamp() time.Time
	GetConversationID() string
}

// BaseEvent contains common fields for all events
type BaseEvent struct {
	Type           EventType `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id"`
}

func (e BaseEvent) GetType() EventType        { return e.Type }
func (e BaseEvent) GetTimestamp() time.Time   { return e.Timestamp }
func (e BaseEvent) GetConversationID() string { return e.ConversationID }

// ExchangeStartedEvent means input is disabled until the matching finish
type ExchangeStartedEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// Outcome is how an exchange ended
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeDiscarded Outcome = "discarded"
)

// ExchangeFinishedEvent means input is enabled again
type ExchangeFinishedEvent struct {
	BaseEvent
	Outcome Outcome `json:"outcome"`
}

// StatusEvent carries an ephemeral progress label; each replaces the previous
type StatusEvent struct {
	BaseEvent
	Text string `json:"text"`
}

// ViewChangedEvent carries a freshly derived view
type ViewChangedEvent struct {
	BaseEvent
	View syncview.View `json:"view"`
}

// WarningEvent is a banner message
type WarningEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// RegistrationPromptEvent asks the UI to offer registration or login
type RegistrationPromptEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

// ErrorEvent reports a failure outside the conversation itself
type ErrorEvent struct {
	BaseEvent
	Error   error  `json:"error"`
	Context string `json:"context"`
}

// EventSink is the interface for handling UI events
type EventSink interface {
	// Send sends an event to the sink
	Send(event Event) error

	// Close closes the event sink
	Close() error
}

// EventProcessor processes UI events
type EventProcessor interface {
	// Process handles a single event
	Process(event Event) error

	// Close cleans up any resources
	Close() error
}

// ErrSinkClosed is returned when sending to a closed sink
var ErrSinkClosed = errors.New("event sink is closed")

// ChannelEventSink delivers events to processors on a background goroutine
type ChannelEventSink struct {
	events     chan Event
	processors []EventProcessor
	done       chan struct{}
	logger     *slog.Logger
	closeOnce  sync.Once
}

// NewChannelEventSink creates a new channel-based event sink
func NewChannelEventSink(bufferSize int, logger *slog.Logger, processors ...EventProcessor) *ChannelEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	sink := &ChannelEventSink{
		events:     make(chan Event, bufferSize),
		processors: processors,
		done:       make(chan struct{}),
		logger:     logger.With("component", "event_sink"),
	}

	go sink.processEvents()

	return sink
}

// Send sends an event to the sink
func (s *ChannelEventSink) Send(event Event) (err error) {
	defer func() {
		// send on a closed channel
		if recover() != nil {
			err = ErrSinkClosed
		}
	}()

	select {
	case s.events <- event:
		return nil
	case <-s.done:
		return ErrSinkClosed
	}
}

// Close stops accepting events, waits for the queue to drain and closes the processors
func (s *ChannelEventSink) Close() error {
	s.closeOnce.Do(func() {
		close(s.events)
	})
	<-s.done

	var errs []error
	for _, p := range s.processors {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ChannelEventSink) processEvents() {
	defer close(s.done)

	for event := range s.events {
		for _, processor := range s.processors {
			if err := processor.Process(event); err != nil {
				s.logger.Warn("error processing event", "type", event.GetType(), "error", err)
			}
		}
	}
}

// SyncEventSink delivers events to processors on the sending goroutine
type SyncEventSink struct {
	mu         sync.Mutex
	processors []EventProcessor
	logger     *slog.Logger
	closed     bool
}

// NewSyncEventSink creates a synchronous event sink
func NewSyncEventSink(logger *slog.Logger, processors ...EventProcessor) *SyncEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncEventSink{processors: processors, logger: logger.With("component", "event_sink")}
}

// Send implements EventSink
func (s *SyncEventSink) Send(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	for _, processor := range s.processors {
		if err := processor.Process(event); err != nil {
			s.logger.Warn("error processing event", "type", event.GetType(), "error", err)
		}
	}
	return nil
}

// Close implements EventSink
func (s *SyncEventSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, p := range s.processors {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a sink that drops every event
var Discard EventSink = discardSink{}

type discardSink struct{}

func (discardSink) Send(Event) error { return nil }
func (discardSink) Close() error     { return nil }

// ProcessorFunc adapts a function to EventProcessor
type ProcessorFunc func(event Event) error

// Process implements EventProcessor
func (f ProcessorFunc) Process(event Event) error { return f(event) }

// Close implements EventProcessor
func (f ProcessorFunc) Close() error { return nil }
