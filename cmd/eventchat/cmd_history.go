package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/render"
	"github.com/elee1766/eventchat/src/syncview"
)

// HistoryCmd prints the current conversation
type HistoryCmd struct {
	Last    bool `help:"Only print the latest exchange"`
	Details bool `help:"Print full descriptions of the latest recommendations"`
}

// Run executes the history command
func (c *HistoryCmd) Run(ctx context.Context, cli *CLI) error {
	a, err := cli.command(ctx, chat.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	console := render.NewConsoleProcessor(render.ConsoleConfig{
		Writer: os.Stdout,
		Width:  a.Config.Chat.Width,
		Liked: func(item conversation.RecommendationItem) bool {
			return a.IsLiked(ctx, item)
		},
	})
	c.print(os.Stdout, console, a.Chat.View())
	return nil
}

func (c *HistoryCmd) print(w io.Writer, console *render.ConsoleProcessor, view syncview.View) {
	messages := view.Messages
	if c.Last {
		if i := view.LastUserIndex(); i >= 0 {
			messages = messages[i:]
		}
	}
	for _, m := range messages {
		fmt.Fprintln(w, console.Message(m))
	}

	if c.Details && view.HasEvents() {
		fmt.Fprintln(w)
		for i, item := range view.Recommendations {
			fmt.Fprintln(w, console.Details(i+1, item))
		}
	}
	fmt.Fprintf(w, "\n%d messages, %d from the assistant\n", len(view.Messages), len(view.BotMessages()))
}
