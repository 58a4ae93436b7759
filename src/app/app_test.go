package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/config"
	"github.com/elee1766/eventchat/src/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	creates atomic.Int32
	loads   atomic.Int32
	chats   atomic.Int32
}

func (b *backend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/{user}/conversations", func(w http.ResponseWriter, r *http.Request) {
		b.creates.Add(1)
		writeJSON(w, map[string]string{"conversation_id": "conv_1"})
	})
	mux.HandleFunc("GET /api/users/{user}/conversations/{conv}", func(w http.ResponseWriter, r *http.Request) {
		b.loads.Add(1)
		if r.PathValue("conv") != "conv_1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{
			"conversation_id": "conv_1",
			"messages": []map[string]string{
				{"role": "user", "content": "Austin", "timestamp": "2025-06-01T12:00:00Z"},
				{"role": "assistant", "content": "Austin has lots going on", "timestamp": "2025-06-01T12:00:05Z"},
			},
		})
	})
	mux.HandleFunc("GET /api/users/{user}/usage", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, usage.Stats{InteractionCount: 8, TrialRemaining: 2})
	})
	mux.HandleFunc("POST /api/chat/stream", func(w http.ResponseWriter, r *http.Request) {
		b.chats.Add(1)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "conv_1", req["conversation_id"])
		assert.Equal(t, true, req["is_initial_response"])

		w.Header().Set("Content-Type", "text/event-stream")
		frames := []string{
			`{"type":"status","content":"Searching events..."}`,
			`{"type":"message","content":"Austin"}`,
			`{"type":"message","content":"Austin has lots going on"}`,
			`{"type":"recommendation","data":{"type":"event","data":{"name":"Jazz Night","venue_name":"Elephant Room"}}}`,
			`{"type":"done"}`,
		}
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
		}
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type events struct {
	mu    sync.Mutex
	types []chat.EventType
}

func (e *events) record(ev chat.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, ev.GetType())
	return nil
}

func (e *events) count(t chat.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, et := range e.types {
		if et == t {
			n++
		}
	}
	return n
}

func newTestApp(t *testing.T, serverURL, dbPath string, rec *events) *App {
	t.Helper()
	conf := config.DefaultConfig()
	conf.API.BaseURL = serverURL
	conf.API.RetryDelay = config.Duration(time.Millisecond)
	conf.Storage.DatabasePath = dbPath

	a, err := New(context.Background(), AppConfig{
		Config: conf,
		Sink:   chat.NewSyncEventSink(nil, chat.ProcessorFunc(rec.record)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAppLifecycle(t *testing.T) {
	b := &backend{}
	server := httptest.NewServer(b.handler(t))
	t.Cleanup(server.Close)
	dbPath := filepath.Join(t.TempDir(), "state", "eventchat.db")
	ctx := context.Background()

	rec := &events{}
	a := newTestApp(t, server.URL, dbPath, rec)
	require.NoError(t, a.Start(ctx))

	sess := a.Sessions.Context()
	assert.True(t, sess.Anonymous())
	assert.Equal(t, "conv_1", a.Conversation.Handle().ConversationID)
	assert.Equal(t, int32(1), b.creates.Load())
	assert.Equal(t, 1, rec.count(chat.EventWarning))
	assert.Equal(t, usage.StateWarningIssued, a.Gate.State())

	require.NoError(t, a.Chat.Submit(ctx, "Austin"))
	view := a.Chat.View()
	require.Len(t, view.Recommendations, 1)
	assert.True(t, view.ShowSuggestions)

	item := view.Recommendations[0]
	assert.False(t, a.IsLiked(ctx, item))
	liked, err := a.Favorites.Toggle(ctx, a.UserID(), item)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, a.IsLiked(ctx, item))
	require.NoError(t, a.Close())

	// a second run adopts the persisted conversation and identity
	restarted := newTestApp(t, server.URL, dbPath, &events{})
	require.NoError(t, restarted.Start(ctx))

	assert.Equal(t, sess.UserID, restarted.UserID())
	assert.Equal(t, int32(1), b.creates.Load())
	assert.Equal(t, int32(1), b.loads.Load())
	assert.Equal(t, 2, restarted.Conversation.Len())
	assert.True(t, restarted.Chat.View().LocationProvided)
	assert.True(t, restarted.IsLiked(ctx, item))
}

func TestAppStartCreateFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	a := newTestApp(t, server.URL, filepath.Join(t.TempDir(), "eventchat.db"), &events{})
	err := a.Start(context.Background())
	require.Error(t, err)

	// the session is still usable and the view shows the greeting
	assert.False(t, a.Sessions.Context().IsZero())
	assert.True(t, a.Conversation.Handle().IsZero())
	assert.Len(t, a.Chat.View().Messages, 1)
}
