package main

import (
	"context"
	"fmt"
	"os"

	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/render"
)

// LikesCmd lists liked events
type LikesCmd struct {
	Current bool `help:"Only likes among the current conversation's recommendations"`
}

// Run executes the likes command
func (c *LikesCmd) Run(ctx context.Context, cli *CLI) error {
	a, err := cli.command(ctx, chat.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	userID := a.UserID()
	var items []conversation.RecommendationItem
	if c.Current {
		items, err = a.Favorites.Filter(ctx, userID, a.Chat.View().Recommendations)
	} else {
		items, err = a.Favorites.List(ctx, userID)
	}
	if err != nil {
		return err
	}

	console := render.NewConsoleProcessor(render.ConsoleConfig{Writer: os.Stdout, Width: a.Config.Chat.Width})
	fmt.Println(console.Likes(items))
	return nil
}
