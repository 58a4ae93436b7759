package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/elee1766/eventchat/src/conversation"
	"github.com/tidwall/gjson"
)

// MaxEventSize is the largest data payload accepted for a single event
const MaxEventSize = 1 << 20

const (
	msgEndedEarly = "the response ended before it was complete"
	msgTimedOut   = TimedOutMessage
)

// TimedOutMessage is the error text reported when the backend stops answering
const TimedOutMessage = "the request timed out"

// Decoder turns a server-sent event body into protocol events.
// Transport failures are reported as a synthesized Error event followed by io.EOF,
// so consumers only ever see the protocol's own terminal events.
type Decoder struct {
	reader   *bufio.Reader
	logger   *slog.Logger
	finished bool
}

// NewDecoder creates a decoder reading from r
func NewDecoder(r io.Reader, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		reader: bufio.NewReader(r),
		logger: logger.With("component", "sse_decoder"),
	}
}

// Read implements the read half of Stream
func (d *Decoder) Read() (Event, error) {
	if d.finished {
		return nil, io.EOF
	}

	for {
		name, data, err := d.readFrame()
		if err != nil {
			d.finished = true
			if errors.Is(err, io.EOF) {
				return Error{Message: msgEndedEarly}, nil
			}
			return Error{Message: describeReadError(err)}, nil
		}

		ev, err := d.decode(name, data)
		if err != nil {
			d.logger.Warn("skipping malformed event", "event", name, "error", err)
			continue
		}
		if ev == nil {
			continue
		}
		if ev.Terminal() {
			d.finished = true
		}
		return ev, nil
	}
}

// readFrame reads one "event:"/"data:" block terminated by a blank line
func (d *Decoder) readFrame() (string, []byte, error) {
	var name string
	var dataLines [][]byte
	size := 0

	for {
		line, err := d.reader.ReadBytes('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			if errors.Is(err, io.EOF) && len(dataLines) > 0 {
				return name, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return name, bytes.Join(dataLines, []byte("\n")), nil
			}
			if err != nil {
				return "", nil, err
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			name = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			data := bytes.TrimSpace(line[5:])
			size += len(data)
			if size > MaxEventSize {
				return "", nil, fmt.Errorf("event exceeds %d bytes", MaxEventSize)
			}
			dataLines = append(dataLines, data)
		}
		// id:, retry: and ":" comments are ignored

		if err != nil {
			if len(dataLines) == 0 {
				return "", nil, err
			}
			return name, bytes.Join(dataLines, []byte("\n")), nil
		}
	}
}

type wireEvent struct {
	Content  string    `json:"content"`
	Message  string    `json:"message"`
	Error    string    `json:"error"`
	Metadata *Metadata `json:"metadata"`
}

// decode maps one frame to an event; nil means the frame carries nothing to report
func (d *Decoder) decode(name string, data []byte) (Event, error) {
	if bytes.Equal(data, []byte("[DONE]")) {
		return Done{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON payload")
	}

	typ := gjson.GetBytes(data, "type").String()
	if typ == "" {
		typ = name
	}

	switch EventType(typ) {
	case TypeStatus:
		var w wireEvent
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Status{Text: firstNonEmpty(w.Content, w.Message)}, nil

	case TypeDelta, "delta":
		var w wireEvent
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Delta{Content: w.Content, Metadata: w.Metadata}, nil

	case TypeRecommendation:
		raw := gjson.GetBytes(data, "data")
		if !raw.Exists() {
			return nil, fmt.Errorf("recommendation without data")
		}
		var item conversation.RecommendationItem
		if err := json.Unmarshal([]byte(raw.Raw), &item); err != nil {
			return nil, err
		}
		return Recommendation{Item: item}, nil

	case TypeError:
		var w wireEvent
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, err
		}
		return Error{Message: firstNonEmpty(w.Message, w.Error, w.Content, "unknown error")}, nil

	case TypeDone:
		return Done{}, nil

	default:
		d.logger.Debug("ignoring unknown event type", "type", typ)
		return nil, nil
	}
}

type timeout interface {
	Timeout() bool
}

func describeReadError(err error) string {
	var t timeout
	if errors.As(err, &t) && t.Timeout() {
		return msgTimedOut
	}
	return err.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
