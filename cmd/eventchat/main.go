package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	BaseURL  string `help:"Backend base URL"`
	Provider string `help:"LLM provider requested from the backend"`
	DBPath   string `name:"db-path" help:"Local state database path"`
	LogLevel string `help:"Log level (debug, info, warn, error)"`
	Config   string `type:"path" help:"Configuration file (json, yaml or toml)"`

	Chat     ChatCmd     `cmd:"" default:"1" help:"Start an interactive conversation (default)"`
	Send     SendCmd     `cmd:"" help:"Send one message and print the reply"`
	History  HistoryCmd  `cmd:"" help:"Print the current conversation"`
	Usage    UsageCmd    `cmd:"" help:"Show free trial usage"`
	Login    LoginCmd    `cmd:"" help:"Log in with an identity token"`
	Register RegisterCmd `cmd:"" help:"Link the anonymous session to an account"`
	Logout   LogoutCmd   `cmd:"" help:"Return to the anonymous session"`
	Likes    LikesCmd    `cmd:"" help:"List liked events"`
	Health   HealthCmd   `cmd:"" help:"Check backend health"`
	Conf     ConfigCmd   `cmd:"" name:"config" help:"Configuration management"`
	Migrate  MigrateCmd  `cmd:"" help:"Database migrations"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("eventchat"),
		kong.Description("Conversational event search"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run(&cli)
	if err != nil {
		stop()
		FatalError(createCLILogger(cli.LogLevel), err)
	}
}
