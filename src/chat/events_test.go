package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelEventSinkDeliversInOrder(t *testing.T) {
	rec := &recorder{}
	sink := NewChannelEventSink(4, nil, rec)
	emit := newEventEmitter(sink, "conv_1")

	emit.exchangeStarted("hi")
	emit.status("Searching events...")
	emit.exchangeFinished(OutcomeCompleted)
	require.NoError(t, sink.Close())

	assert.Equal(t, []EventType{EventExchangeStarted, EventStatus, EventExchangeFinished}, rec.types())
	assert.Equal(t, "conv_1", rec.events[0].GetConversationID())
	assert.WithinDuration(t, time.Now(), rec.events[0].GetTimestamp(), time.Minute)

	assert.ErrorIs(t, sink.Send(&StatusEvent{}), ErrSinkClosed)
	require.NoError(t, sink.Close())
}

func TestSyncEventSink(t *testing.T) {
	var seen []EventType
	sink := NewSyncEventSink(nil, ProcessorFunc(func(e Event) error {
		seen = append(seen, e.GetType())
		return nil
	}))

	require.NoError(t, sink.Send(&WarningEvent{BaseEvent: BaseEvent{Type: EventWarning}}))
	require.NoError(t, sink.Close())
	assert.ErrorIs(t, sink.Send(&WarningEvent{}), ErrSinkClosed)
	assert.Equal(t, []EventType{EventWarning}, seen)
}

func TestDiscardSink(t *testing.T) {
	assert.NoError(t, Discard.Send(&StatusEvent{}))
	assert.NoError(t, Discard.Close())
}
