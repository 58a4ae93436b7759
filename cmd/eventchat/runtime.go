package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elee1766/eventchat/src/app"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/config"
	"github.com/spf13/afero"
)

// loadConfig layers files, environment and global flags
func (cli *CLI) loadConfig() (*config.Config, error) {
	paths := config.GetConfigPaths()
	paths.ExplicitConfig = cli.Config

	conf, err := config.NewLoader(afero.NewOsFs(), paths).Load()
	if err != nil {
		return nil, err
	}

	if cli.BaseURL != "" {
		conf.API.BaseURL = cli.BaseURL
	}
	if cli.Provider != "" {
		conf.Chat.Provider = cli.Provider
	}
	if cli.DBPath != "" {
		conf.Storage.DatabasePath = cli.DBPath
	}
	if cli.LogLevel != "" {
		conf.Observability.LogLevel = cli.LogLevel
	}

	if err := config.NewValidator().Validate(conf); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// openApp builds the app and starts the session. A failed conversation
// bind is not fatal; the next message creates one.
func (cli *CLI) openApp(ctx context.Context, conf *config.Config, sink chat.EventSink, logger *slog.Logger) (*app.App, error) {
	a, err := app.New(ctx, app.AppConfig{Config: conf, Sink: sink, Logger: logger})
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		if a.Sessions.Context().IsZero() {
			a.Close()
			return nil, err
		}
		logger.Warn("starting without a conversation", "error", err)
	}
	return a, nil
}

// command is the setup shared by non-interactive commands
func (cli *CLI) command(ctx context.Context, sink chat.EventSink) (*app.App, error) {
	conf, err := cli.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := createCLILogger(conf.Observability.LogLevel)
	return cli.openApp(ctx, conf, sink, logger)
}
