package render

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/syncview"
	"github.com/mattn/go-isatty"
)

// DefaultWidth is used when the terminal width is unknown
const DefaultWidth = 80

// LikedFunc reports whether an item is in the user's favorites
type LikedFunc func(item conversation.RecommendationItem) bool

// ConsoleConfig configures a ConsoleProcessor
type ConsoleConfig struct {
	Writer io.Writer
	Theme  *Theme
	Width  int
	Liked  LikedFunc
	// ShowStatus prints ephemeral status labels
	ShowStatus bool
	Logger     *slog.Logger
}

type printedMessage struct {
	kind syncview.Kind
	text string
}

// ConsoleProcessor renders chat events as a scrolling transcript.
// It implements chat.EventProcessor.
type ConsoleProcessor struct {
	mu         sync.Mutex
	w          io.Writer
	styles     styles
	width      int
	liked      LikedFunc
	showStatus bool
	logger     *slog.Logger

	printed     []printedMessage
	suggestions bool

	// inline redraws status labels in place on a terminal
	inline     bool
	statusLine bool
}

// NewConsoleProcessor creates a console renderer
func NewConsoleProcessor(cfg ConsoleConfig) *ConsoleProcessor {
	theme := DefaultTheme
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	width := cfg.Width
	if width <= 0 {
		width = DefaultWidth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleProcessor{
		w:          cfg.Writer,
		styles:     newStyles(lipgloss.NewRenderer(cfg.Writer), theme),
		width:      width,
		liked:      cfg.Liked,
		showStatus: cfg.ShowStatus,
		logger:     logger.With("component", "console_renderer"),
		inline:     isTerminal(cfg.Writer),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Process implements chat.EventProcessor
func (p *ConsoleProcessor) Process(event chat.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := event.(type) {
	case *chat.ViewChangedEvent:
		return p.view(e.View)
	case *chat.StatusEvent:
		if !p.showStatus || e.Text == "" {
			return nil
		}
		return p.status(p.styles.status.Render(ansi.Truncate("… "+e.Text, p.width, "…")))
	case *chat.WarningEvent:
		return p.println(p.styles.warning.Render(e.Message))
	case *chat.RegistrationPromptEvent:
		return p.println(p.styles.prompt.Render("Sign up with /register TOKEN or log in with /login TOKEN"))
	case *chat.ErrorEvent:
		return p.println(p.styles.errText.Render(fmt.Sprintf("error (%s): %v", e.Context, e.Error)))
	case *chat.ExchangeFinishedEvent:
		return p.clearStatus()
	case *chat.ExchangeStartedEvent:
		return nil
	default:
		p.logger.Debug("unhandled event", "type", event.GetType())
		return nil
	}
}

// Close implements chat.EventProcessor
func (p *ConsoleProcessor) Close() error {
	return nil
}

// Reset forgets what has been printed so the next view is drawn in full
func (p *ConsoleProcessor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printed = nil
	p.suggestions = false
}

// view prints the messages not yet on screen. When the conversation was
// replaced the whole transcript is drawn again under a rule.
func (p *ConsoleProcessor) view(v syncview.View) error {
	common := 0
	for common < len(p.printed) && common < len(v.Messages) {
		m := v.Messages[common]
		if p.printed[common] != (printedMessage{kind: m.Kind, text: m.Text}) {
			break
		}
		common++
	}

	// the greeting gives way to the first exchange without a redraw
	if common == 0 && len(p.printed) == 1 && p.printed[0].text == syncview.Greeting {
		p.printed = p.printed[:0]
	}

	if common < len(p.printed) {
		if err := p.println(p.styles.rule.Render(strings.Repeat("─", p.width))); err != nil {
			return err
		}
		common = 0
		p.printed = p.printed[:0]
	}

	for _, m := range v.Messages[common:] {
		if err := p.println(p.Message(m)); err != nil {
			return err
		}
		p.printed = append(p.printed, printedMessage{kind: m.Kind, text: m.Text})
	}

	if v.ShowSuggestions && !p.suggestions {
		if err := p.println(p.Suggestions()); err != nil {
			return err
		}
	}
	p.suggestions = v.ShowSuggestions
	return nil
}

// Message renders one display message with its recommendation cards
func (p *ConsoleProcessor) Message(m syncview.DisplayMessage) string {
	text := ansi.Wordwrap(m.Text, p.width-2, "")

	var b strings.Builder
	switch {
	case m.Kind == syncview.KindUser:
		b.WriteString(p.styles.user.Render("> " + text))
	case m.IsError:
		b.WriteString(p.styles.botErr.Render(text))
	default:
		b.WriteString(p.styles.bot.Render(text))
	}

	if m.ShowEvents {
		for i, item := range m.Recommendations {
			b.WriteString("\n")
			b.WriteString(p.card(i+1, item))
		}
	}
	return b.String()
}

// Suggestions renders the numbered suggested questions
func (p *ConsoleProcessor) Suggestions() string {
	var b strings.Builder
	b.WriteString(p.styles.muted.Render("Try one of these (/suggest N):"))
	for i, q := range syncview.SuggestedQuestions() {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, q)
	}
	return b.String()
}

// Likes renders a list of liked items as cards
func (p *ConsoleProcessor) Likes(items []conversation.RecommendationItem) string {
	if len(items) == 0 {
		return p.styles.muted.Render("No liked events yet.")
	}
	cards := make([]string, 0, len(items))
	for i, item := range items {
		cards = append(cards, p.card(i+1, item))
	}
	return strings.Join(cards, "\n")
}

func (p *ConsoleProcessor) println(s string) error {
	if p.w == nil {
		return nil
	}
	if err := p.clearStatus(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(p.w, s)
	return err
}

// status shows a label that the next label replaces. Without a terminal
// each label gets its own line.
func (p *ConsoleProcessor) status(label string) error {
	if !p.inline {
		return p.println(label)
	}
	if p.w == nil {
		return nil
	}
	p.statusLine = true
	_, err := fmt.Fprint(p.w, "\r"+ansi.EraseEntireLine+label)
	return err
}

// clearStatus erases a pending inline status label
func (p *ConsoleProcessor) clearStatus() error {
	if !p.statusLine {
		return nil
	}
	p.statusLine = false
	_, err := fmt.Fprint(p.w, "\r"+ansi.EraseEntireLine)
	return err
}
