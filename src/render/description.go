package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/x/ansi"
)

// DescriptionMarkdown converts an HTML event description to markdown.
// Plain text passes through unchanged.
func DescriptionMarkdown(html string) (string, error) {
	if !strings.Contains(html, "<") {
		return strings.TrimSpace(html), nil
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert description: %w", err)
	}

	markdown = strings.TrimSpace(markdown)
	for strings.Contains(markdown, "\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n", "\n\n")
	}
	return markdown, nil
}

// PlainText strips markup from an HTML fragment and collapses whitespace
func PlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse description: %w", err)
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Preview returns a single-line excerpt of a description no wider than width cells
func Preview(html string, width int) string {
	text, err := PlainText(html)
	if err != nil {
		text = strings.Join(strings.Fields(html), " ")
	}
	if width <= 0 {
		return text
	}
	return ansi.Truncate(text, width, "…")
}
