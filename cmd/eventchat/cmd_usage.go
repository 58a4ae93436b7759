package main

import (
	"context"
	"fmt"

	"github.com/elee1766/eventchat/src/chat"
)

// UsageCmd shows free trial usage
type UsageCmd struct{}

// Run executes the usage command
func (c *UsageCmd) Run(ctx context.Context, cli *CLI) error {
	a, err := cli.command(ctx, chat.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.Sessions.Context()
	if !sess.Anonymous() {
		fmt.Printf("Signed in as %s; searches are unlimited.\n", sess.UserID)
		return nil
	}

	stats, err := a.Client.GetUsage(ctx, sess.UserID)
	if err != nil {
		return err
	}
	a.Gate.Observe(*stats)

	fmt.Printf("User:         %s\n", sess.UserID)
	fmt.Printf("Searches:     %d\n", stats.InteractionCount)
	fmt.Printf("Remaining:    %d\n", stats.TrialRemaining)
	fmt.Printf("State:        %s\n", a.Gate.State())
	return nil
}
