package main

import (
	"context"
	"fmt"

	"github.com/elee1766/eventchat/src/apiclient"
)

// HealthCmd checks the backend
type HealthCmd struct{}

// Run executes the health command
func (c *HealthCmd) Run(ctx context.Context, cli *CLI) error {
	conf, err := cli.loadConfig()
	if err != nil {
		return err
	}

	client := apiclient.NewClient(apiclient.Config{
		BaseURL:    conf.API.BaseURL,
		Logger:     createCLILogger(conf.Observability.LogLevel),
		Timeout:    conf.API.Timeout.Std(),
		RetryCount: 1,
	})
	status, err := client.HealthCheck(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", client.BaseURL(), status.Status)
	return nil
}
