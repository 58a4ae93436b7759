package main

import (
	"context"
	"fmt"

	"github.com/elee1766/eventchat/src/chat"
)

// LoginCmd logs in with an identity token
type LoginCmd struct {
	Token string `arg:"" help:"Identity token issued by the auth provider"`
}

// Run executes the login command
func (c *LoginCmd) Run(ctx context.Context, cli *CLI) error {
	a, err := cli.command(ctx, chat.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Chat.Login(ctx, c.Token)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (conversation %s)\n", sess.UserID, a.Conversation.Handle().ConversationID)
	return nil
}

// RegisterCmd links the anonymous identity to an account
type RegisterCmd struct {
	Token string `arg:"" help:"Identity token issued by the auth provider"`
}

// Run executes the register command
func (c *RegisterCmd) Run(ctx context.Context, cli *CLI) error {
	a, err := cli.command(ctx, chat.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Chat.Register(ctx, c.Token)
	if err != nil {
		return err
	}
	fmt.Printf("Registered as %s\n", sess.UserID)
	return nil
}

// LogoutCmd returns to the anonymous identity
type LogoutCmd struct{}

// Run executes the logout command
func (c *LogoutCmd) Run(ctx context.Context, cli *CLI) error {
	a, err := cli.command(ctx, chat.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Chat.Logout(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Logged out; continuing as %s\n", sess.UserID)
	return nil
}
