package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/elee1766/eventchat/src/conversation"
)

const previewWidth = 120

// card renders one recommendation as a bordered block
func (p *ConsoleProcessor) card(index int, item conversation.RecommendationItem) string {
	d := item.Data
	inner := p.width - 4

	title := fmt.Sprintf("%d. %s", index, d.DisplayName())
	if p.liked != nil && p.liked(item) {
		title += " " + p.styles.liked.Render("♥")
	}

	lines := []string{p.styles.title.Render(ansi.Truncate(title, inner, "…"))}

	venue := d.VenueName
	if d.VenueCity != "" {
		if venue != "" {
			venue += ", "
		}
		venue += d.VenueCity
	}
	if venue != "" {
		lines = append(lines, p.styles.muted.Render(ansi.Truncate(venue, inner, "…")))
	}

	meta := strings.Join([]string{FormatDate(d.StartDatetime), FormatPrice(d), FormatRating(item)}, " · ")
	lines = append(lines, meta)

	if d.Description != "" {
		lines = append(lines, p.styles.muted.Render(Preview(d.Description, min(inner, previewWidth))))
	}
	if d.EventURL != "" {
		lines = append(lines, p.styles.muted.Render(d.EventURL))
	}

	return p.styles.card.Width(p.width).Render(strings.Join(lines, "\n"))
}

// Details renders a recommendation card followed by its full description
// converted to markdown
func (p *ConsoleProcessor) Details(index int, item conversation.RecommendationItem) string {
	parts := []string{p.card(index, item)}
	if desc := item.Data.Description; desc != "" {
		markdown, err := DescriptionMarkdown(desc)
		if err != nil {
			p.logger.Debug("showing plain description", "error", err)
			markdown = Preview(desc, 0)
		}
		parts = append(parts, ansi.Wordwrap(markdown, p.width, ""))
	}
	return strings.Join(parts, "\n")
}
