package syncview

import (
	"github.com/elee1766/eventchat/src/conversation"
)

// Derive maps a conversation snapshot to its display view. It has no side
// effects other than drawing rendering ids from ids; deriving the same
// snapshot twice yields equivalent views.
func Derive(snap conversation.Snapshot, ids *IDSequence) View {
	if ids == nil {
		ids = &IDSequence{}
	}

	if snap.Empty() {
		return View{
			Messages: []DisplayMessage{{
				ID:   ids.Next(),
				Kind: KindBot,
				Text: Greeting,
			}},
			Mode: ModeAwaitingLocation,
		}
	}

	var view View
	view.Mode = ModeConversing
	view.Messages = make([]DisplayMessage, 0, len(snap.Turns))

	view.LocationProvided = LocationProvided(snap)
	for _, turn := range snap.Turns {
		switch turn.Role {
		case conversation.RoleUser:
			view.Messages = append(view.Messages, DisplayMessage{
				ID:   ids.Next(),
				Kind: KindUser,
				Text: turn.Content,
			})

		case conversation.RoleAssistant:
			if msg, ok := botMessage(turn); ok {
				msg.ID = ids.Next()
				view.Messages = append(view.Messages, msg)
				if msg.ShowEvents {
					view.Recommendations = msg.Recommendations
				}
			}
		}
	}

	view.ShowSuggestions = view.LocationProvided &&
		len(view.Messages) == 2 &&
		view.Messages[1].Kind == KindBot &&
		!view.Messages[1].IsError

	return view
}

// LocationProvided reports whether the first turn is a user turn. The first
// user message is the location by product convention.
func LocationProvided(snap conversation.Snapshot) bool {
	return len(snap.Turns) > 0 && snap.Turns[0].Role == conversation.RoleUser
}

// botMessage projects an assistant turn; empty turns are not displayed
func botMessage(turn conversation.Turn) (DisplayMessage, bool) {
	if turn.HasRecommendations() {
		text := turn.Content
		if text == "" {
			text = RecommendationsIntro
		}
		return DisplayMessage{
			Kind:            KindBot,
			Text:            text,
			ShowEvents:      true,
			Recommendations: turn.Recommendations,
		}, true
	}

	if turn.Content == "" {
		return DisplayMessage{}, false
	}

	return DisplayMessage{
		Kind:    KindBot,
		Text:    turn.Content,
		IsError: turn.Synthetic,
	}, true
}
