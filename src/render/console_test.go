package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/syncview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deriveView(turns ...conversation.Turn) syncview.View {
	store := conversation.NewStore(nil)
	if len(turns) > 0 {
		_ = store.Seed(conversation.Handle{ConversationID: "conv_1"}, turns)
	}
	return syncview.Derive(store.Snapshot(), nil)
}

func TestConsoleProcessorTranscript(t *testing.T) {
	var buf bytes.Buffer
	jazz := conversation.RecommendationItem{
		Type: "event",
		Data: conversation.RecommendationData{
			Name:        "Jazz Night",
			VenueName:   "Elephant Room",
			VenueCity:   "Austin",
			IsFree:      true,
			Description: "<p>Late <b>set</b></p>",
		},
	}
	p := NewConsoleProcessor(ConsoleConfig{
		Writer: &buf,
		Width:  60,
		Liked: func(item conversation.RecommendationItem) bool {
			return item.Key() == jazz.Key()
		},
	})

	require.NoError(t, p.Process(&chat.ViewChangedEvent{View: deriveView()}))
	assert.Contains(t, buf.String(), syncview.Greeting)

	buf.Reset()
	view := deriveView(
		conversation.NewUserTurn("Austin"),
		conversation.NewAssistantTurn("", []conversation.RecommendationItem{jazz}),
	)
	require.NoError(t, p.Process(&chat.ViewChangedEvent{View: view}))

	out := buf.String()
	assert.Contains(t, out, "> Austin")
	assert.Contains(t, out, syncview.RecommendationsIntro)
	assert.Contains(t, out, "1. Jazz Night ♥")
	assert.Contains(t, out, "Elephant Room, Austin")
	assert.Contains(t, out, "Date TBD · Free · ★ 4.5")
	assert.Contains(t, out, "Late set")
	assert.Contains(t, out, "/suggest N")

	// the same view again prints nothing new
	buf.Reset()
	require.NoError(t, p.Process(&chat.ViewChangedEvent{View: view}))
	assert.Empty(t, buf.String())

	// a different conversation is drawn in full under a rule
	require.NoError(t, p.Process(&chat.ViewChangedEvent{View: deriveView(conversation.NewUserTurn("Denver"))}))
	out = buf.String()
	assert.Contains(t, out, strings.Repeat("─", 60))
	assert.Contains(t, out, "> Denver")
}

func TestConsoleProcessorBanners(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProcessor(ConsoleConfig{Writer: &buf})

	require.NoError(t, p.Process(&chat.StatusEvent{Text: "Searching events..."}))
	assert.Empty(t, buf.String())

	require.NoError(t, p.Process(&chat.WarningEvent{Message: "You have 2 free searches remaining."}))
	require.NoError(t, p.Process(&chat.RegistrationPromptEvent{Reason: "trial exceeded"}))
	require.NoError(t, p.Process(&chat.ErrorEvent{Context: "identity", Error: errors.New("rejected")}))

	out := buf.String()
	assert.Contains(t, out, "You have 2 free searches remaining.")
	assert.Contains(t, out, "/register TOKEN")
	assert.Contains(t, out, "error (identity): rejected")

	buf.Reset()
	withStatus := NewConsoleProcessor(ConsoleConfig{Writer: &buf, ShowStatus: true})
	require.NoError(t, withStatus.Process(&chat.StatusEvent{Text: "Searching events..."}))
	assert.Contains(t, buf.String(), "Searching events...")
}

func TestConsoleProcessorStatusInPlace(t *testing.T) {
	var buf bytes.Buffer
	p := NewConsoleProcessor(ConsoleConfig{Writer: &buf, ShowStatus: true})
	p.inline = true

	require.NoError(t, p.Process(&chat.StatusEvent{Text: "Searching events..."}))
	require.NoError(t, p.Process(&chat.StatusEvent{Text: "Ranking results..."}))
	assert.NotContains(t, buf.String(), "\n")
	assert.Equal(t, 2, strings.Count(buf.String(), "\r"+ansi.EraseEntireLine))

	require.NoError(t, p.Process(&chat.WarningEvent{Message: "You have 2 free searches remaining."}))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	last := strings.LastIndex(out, "\r"+ansi.EraseEntireLine)
	require.GreaterOrEqual(t, last, 0)
	assert.Contains(t, out[last:], "You have 2 free searches remaining.")
	assert.NotContains(t, out[last:], "Ranking results...")

	// a finished exchange clears a label nothing else replaced
	buf.Reset()
	require.NoError(t, p.Process(&chat.StatusEvent{Text: "Searching events..."}))
	require.NoError(t, p.Process(&chat.ExchangeFinishedEvent{}))
	assert.True(t, strings.HasSuffix(buf.String(), "\r"+ansi.EraseEntireLine))
	cleared := buf.Len()
	require.NoError(t, p.Process(&chat.ExchangeFinishedEvent{}))
	assert.Equal(t, cleared, buf.Len())
}

func TestDetailsConvertsDescription(t *testing.T) {
	p := NewConsoleProcessor(ConsoleConfig{Width: 60})
	item := conversation.RecommendationItem{Type: "event", Data: conversation.RecommendationData{
		Name:        "Jazz Night",
		VenueName:   "Blue Hall",
		Description: "<p>Live <strong>jazz</strong> every Friday.</p><ul><li>Doors at 7</li></ul>",
	}}

	out := p.Details(2, item)
	assert.Contains(t, out, "2. Jazz Night")
	assert.Contains(t, out, "Live **jazz** every Friday.")
	assert.Contains(t, out, "- Doors at 7")
	assert.NotContains(t, out, "<p>")

	plain := p.Details(1, conversation.RecommendationItem{Data: conversation.RecommendationData{Name: "Quiet"}})
	assert.Contains(t, plain, "1. Quiet")
}

func TestLikesEmpty(t *testing.T) {
	p := NewConsoleProcessor(ConsoleConfig{})
	assert.Equal(t, "No liked events yet.", p.Likes(nil))
}
