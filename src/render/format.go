package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/elee1766/eventchat/src/conversation"
)

// DefaultRating is shown when an item carries neither a rating nor a relevance score
const DefaultRating = 4.5

const displayDateLayout = "Mon, Jan 2, 03:04 PM"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatDate renders an event start time. Unparsable values are shown as given.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "TBD") {
		return "Date TBD"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return raw
}

// FormatPrice renders the price line of a card
func FormatPrice(d conversation.RecommendationData) string {
	switch {
	case strings.TrimSpace(d.Price) != "":
		return d.Price
	case d.IsFree:
		return "Free"
	default:
		return "Price varies"
	}
}

// Rating returns the item's rating, else its relevance scaled to five stars
func Rating(item conversation.RecommendationItem) float64 {
	if item.Data.Rating != nil {
		return *item.Data.Rating
	}
	if item.RelevanceScore != nil {
		return math.Round(*item.RelevanceScore*5*10) / 10
	}
	return DefaultRating
}

// FormatRating renders Rating with one decimal
func FormatRating(item conversation.RecommendationItem) string {
	return fmt.Sprintf("★ %.1f", Rating(item))
}
