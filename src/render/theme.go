package render

import "github.com/charmbracelet/lipgloss"

// Theme holds the console palette
type Theme struct {
	Primary   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Liked     lipgloss.Color
}

// DefaultTheme is the palette used when none is configured
var DefaultTheme = Theme{
	Primary:   lipgloss.Color("#7c3aed"),
	Accent:    lipgloss.Color("#06b6d4"),
	Text:      lipgloss.Color("#f3f4f6"),
	TextMuted: lipgloss.Color("#9ca3af"),
	Warning:   lipgloss.Color("#f59e0b"),
	Error:     lipgloss.Color("#ef4444"),
	Liked:     lipgloss.Color("#ec4899"),
}

// styles are built once per renderer so the color profile follows the writer
type styles struct {
	user    lipgloss.Style
	bot     lipgloss.Style
	botErr  lipgloss.Style
	status  lipgloss.Style
	warning lipgloss.Style
	prompt  lipgloss.Style
	errText lipgloss.Style
	card    lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	liked   lipgloss.Style
	rule    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, t Theme) styles {
	return styles{
		user:    r.NewStyle().Foreground(t.Accent).Bold(true),
		bot:     r.NewStyle().Foreground(t.Text),
		botErr:  r.NewStyle().Foreground(t.Error),
		status:  r.NewStyle().Foreground(t.TextMuted).Italic(true),
		warning: r.NewStyle().Foreground(t.Warning).Bold(true),
		prompt:  r.NewStyle().Foreground(t.Primary).Bold(true),
		errText: r.NewStyle().Foreground(t.Error).Bold(true),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
		title: r.NewStyle().Foreground(t.Text).Bold(true),
		muted: r.NewStyle().Foreground(t.TextMuted),
		liked: r.NewStyle().Foreground(t.Liked).Bold(true),
		rule:  r.NewStyle().Foreground(t.TextMuted),
	}
}
