package main

import (
	"context"
	"os"
	"strings"

	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/render"
)

// SendCmd sends a single message
type SendCmd struct {
	Text       []string `arg:"" help:"The message to send"`
	Suggestion bool     `short:"s" help:"Send as a suggested question rather than typed input"`
	Status     bool     `help:"Print progress labels while the reply streams"`
}

// Run executes the send command
func (c *SendCmd) Run(ctx context.Context, cli *CLI) error {
	conf, err := cli.loadConfig()
	if err != nil {
		return err
	}
	logger := createCLILogger(conf.Observability.LogLevel)

	console := render.NewConsoleProcessor(render.ConsoleConfig{
		Writer:     os.Stdout,
		Width:      conf.Chat.Width,
		ShowStatus: c.Status || conf.Chat.ShowStatus,
		Logger:     logger,
	})
	sink := chat.NewChannelEventSink(64, logger, console)

	a, err := cli.openApp(ctx, conf, sink, logger)
	if err != nil {
		sink.Close()
		return err
	}
	defer a.Close()

	text := strings.Join(c.Text, " ")
	if c.Suggestion {
		err = a.Chat.SubmitSuggestion(ctx, text)
	} else {
		err = a.Chat.Submit(ctx, text)
	}

	// drain queued output before reporting
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	return err
}
