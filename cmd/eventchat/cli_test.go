package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elee1766/eventchat/src/apiclient"
	"github.com/elee1766/eventchat/src/app"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/config"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/render"
	"github.com/elee1766/eventchat/src/syncview"
	"github.com/elee1766/eventchat/src/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "generic", err: errors.New("boom"), want: ExitError},
		{name: "interrupted", err: fmt.Errorf("send: %w", context.Canceled), want: ExitInterrupted},
		{name: "config", err: fmt.Errorf("load: %w", config.ValidationError{Field: "Config.Chat.Provider"}), want: ExitConfig},
		{name: "trial", err: usage.ErrBlocked, want: ExitTrial},
		{name: "timeout", err: &apiclient.TimeoutError{}, want: ExitTimeout},
		{name: "auth", err: &apiclient.APIError{StatusCode: 401}, want: ExitAuth},
		{name: "server", err: &apiclient.APIError{StatusCode: 502}, want: ExitNetwork},
		{name: "empty", err: chat.ErrEmptyMessage, want: ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestGetConfigValue(t *testing.T) {
	conf := config.DefaultConfig()

	v, err := getConfigValue(conf, "chat.provider")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultProvider, v)

	v, err = getConfigValue(conf, "api.timeout")
	require.NoError(t, err)
	assert.Equal(t, "30s", v)

	_, err = getConfigValue(conf, "api.nope")
	assert.Error(t, err)
	_, err = getConfigValue(conf, "version.major")
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	i, err := index("2", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = index("4", 3)
	assert.Error(t, err)
	_, err = index("x", 3)
	assert.Error(t, err)
	_, err = index("1", 0)
	assert.EqualError(t, err, "nothing to choose from")
}

func TestREPLCommands(t *testing.T) {
	conf := config.DefaultConfig()
	conf.API.BaseURL = "http://127.0.0.1:1"
	conf.Storage.DatabasePath = filepath.Join(t.TempDir(), "eventchat.db")

	var out bytes.Buffer
	console := render.NewConsoleProcessor(render.ConsoleConfig{Writer: &out})
	a, err := app.New(context.Background(), app.AppConfig{Config: conf, Sink: chat.NewSyncEventSink(nil, console)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	r := &repl{app: a, console: console, out: &out}
	input := strings.Join([]string{"/help", "/bogus", "/like 1", "/show 1", "/suggest 1", "/login", "/quit", "never read"}, "\n")
	require.NoError(t, r.run(context.Background(), strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "/register TOKEN  link this session")
	assert.Contains(t, text, "unknown command /bogus")
	assert.Contains(t, text, "nothing to choose from")
	assert.Contains(t, text, "no recommendations yet")
	assert.Contains(t, text, chat.ErrSuggestionsHidden.Error())
	assert.Contains(t, text, "usage: /login TOKEN")
	assert.NotContains(t, text, "never read")
}

func TestHistoryPrint(t *testing.T) {
	jazz := conversation.RecommendationItem{Type: "event", Data: conversation.RecommendationData{
		Name:        "Jazz Night",
		VenueName:   "Blue Hall",
		Description: "<p>Live <em>jazz</em> downtown</p>",
	}}
	store := conversation.NewStore(nil)
	require.NoError(t, store.Seed(conversation.Handle{ConversationID: "conv_1"}, []conversation.Turn{
		conversation.NewUserTurn("Austin"),
		conversation.NewAssistantTurn("What are you into?", nil),
		conversation.NewUserTurn("jazz"),
		conversation.NewAssistantTurn("Try these", []conversation.RecommendationItem{jazz}),
	}))
	view := syncview.Derive(store.Snapshot(), nil)
	console := render.NewConsoleProcessor(render.ConsoleConfig{})
	footer := fmt.Sprintf("%d messages, %d from the assistant", len(view.Messages), len(view.BotMessages()))

	var out bytes.Buffer
	(&HistoryCmd{}).print(&out, console, view)
	assert.Contains(t, out.String(), "> Austin")
	assert.Contains(t, out.String(), "1. Jazz Night")
	assert.NotContains(t, out.String(), "_jazz_")
	assert.Contains(t, out.String(), footer)

	out.Reset()
	(&HistoryCmd{Last: true, Details: true}).print(&out, console, view)
	assert.NotContains(t, out.String(), "> Austin")
	assert.Contains(t, out.String(), "> jazz")
	assert.Contains(t, out.String(), "Live _jazz_ downtown")
	assert.Contains(t, out.String(), footer)
}
