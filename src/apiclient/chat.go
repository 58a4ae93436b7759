package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/elee1766/eventchat/src/stream"
)

var _ stream.Stream = (*httpStream)(nil)

// ChatStream opens one chat exchange and returns its event stream. The request
// is sent exactly once. Failures after the response starts are reported as an
// Error event on the stream rather than as a returned error.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest) (stream.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger := c.logger.With("method", "ChatStream", "conversation_id", req.ConversationID)
	logger.Debug("opening chat stream", "history_len", len(req.ConversationHistory), "initial", req.IsInitialResponse)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/chat/stream", body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.do(c.streamClient, httpReq)
	if err != nil {
		logger.Warn("chat stream request failed", "error", err)
		return nil, &StreamError{ConversationID: req.ConversationID, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		logger.Warn("chat stream rejected", "status_code", resp.StatusCode)
		return nil, &StreamError{ConversationID: req.ConversationID, Err: c.handleError(resp)}
	}

	streamBody := newIdleReader(resp.Body, c.config.StreamIdleTimeout)
	return &httpStream{
		body:    streamBody,
		decoder: stream.NewDecoder(streamBody, c.logger),
	}, nil
}

// httpStream adapts an SSE response body to stream.Stream
type httpStream struct {
	body    io.Closer
	decoder *stream.Decoder
	once    sync.Once
}

// Read implements stream.Stream
func (s *httpStream) Read() (stream.Event, error) {
	return s.decoder.Read()
}

// Close implements stream.Stream
func (s *httpStream) Close() error {
	var err error
	s.once.Do(func() {
		err = s.body.Close()
	})
	return err
}

// idleReader fails reads with a TimeoutError once the underlying body has
// been silent for longer than timeout.
type idleReader struct {
	rc      io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleReader(rc io.ReadCloser, timeout time.Duration) *idleReader {
	r := &idleReader{rc: rc, timeout: timeout}
	r.timer = time.AfterFunc(timeout, func() {
		r.expired.Store(true)
		rc.Close()
	})
	return r
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if r.expired.Load() {
		return n, &TimeoutError{Operation: "chat stream", Duration: r.timeout, Cause: ErrTimeout}
	}
	if n > 0 {
		r.timer.Reset(r.timeout)
	}
	return n, err
}

func (r *idleReader) Close() error {
	r.timer.Stop()
	return r.rc.Close()
}
