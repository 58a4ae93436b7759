package stream

import (
	"errors"
	"io"
)

// Stream reads the events of one exchange
type Stream interface {
	// Read returns the next event, or io.EOF once the stream is exhausted
	Read() (Event, error)

	// Close releases the underlying channel
	Close() error
}

// Callback is invoked for each event read from a stream
type Callback func(ev Event) error

// Drain reads a stream to the end, calling fn for each event in order.
// The stream is closed on return.
func Drain(s Stream, fn Callback) error {
	defer s.Close()

	for {
		ev, err := s.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ev == nil {
			return nil
		}

		if err := fn(ev); err != nil {
			return err
		}
		if ev.Terminal() {
			return nil
		}
	}
}

// SliceStream replays a fixed list of events. It is used by fakes and tests.
type SliceStream struct {
	events []Event
	pos    int
	closed bool
}

// NewSliceStream creates a stream over the given events
func NewSliceStream(events ...Event) *SliceStream {
	return &SliceStream{events: events}
}

// Read implements Stream
func (s *SliceStream) Read() (Event, error) {
	if s.closed || s.pos >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, nil
}

// Close implements Stream
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called
func (s *SliceStream) Closed() bool {
	return s.closed
}
