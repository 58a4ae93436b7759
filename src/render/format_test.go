package render

import (
	"testing"

	"github.com/elee1766/eventchat/src/conversation"
	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: "Date TBD"},
		{name: "tbd", raw: "tbd", want: "Date TBD"},
		{name: "rfc3339", raw: "2025-03-14T19:30:00Z", want: "Fri, Mar 14, 07:30 PM"},
		{name: "naive", raw: "2025-03-15T09:05:00", want: "Sat, Mar 15, 09:05 AM"},
		{name: "date only", raw: "2025-03-16", want: "Sun, Mar 16, 12:00 AM"},
		{name: "unparsable", raw: "next friday", want: "next friday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.raw))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$25", FormatPrice(conversation.RecommendationData{Price: "$25", IsFree: true}))
	assert.Equal(t, "Free", FormatPrice(conversation.RecommendationData{IsFree: true}))
	assert.Equal(t, "Price varies", FormatPrice(conversation.RecommendationData{Price: "  "}))
}

func TestRating(t *testing.T) {
	rating := 4.2
	relevance := 0.873

	tests := []struct {
		name string
		item conversation.RecommendationItem
		want float64
	}{
		{name: "explicit rating", item: conversation.RecommendationItem{Data: conversation.RecommendationData{Rating: &rating}, RelevanceScore: &relevance}, want: 4.2},
		{name: "relevance", item: conversation.RecommendationItem{RelevanceScore: &relevance}, want: 4.4},
		{name: "default", item: conversation.RecommendationItem{}, want: DefaultRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Rating(tt.item), 1e-9)
		})
	}

	assert.Equal(t, "★ 4.5", FormatRating(conversation.RecommendationItem{}))
}
