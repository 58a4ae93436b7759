package main

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/elee1766/eventchat/src/config"
)

// ConfigCmd manages configuration
type ConfigCmd struct {
	Show   ConfigShowCmd   `cmd:"" help:"Print the effective configuration"`
	Get    ConfigGetCmd    `cmd:"" help:"Print one value, e.g. api.base_url"`
	Schema ConfigSchemaCmd `cmd:"" help:"Print the configuration JSON Schema"`
	Init   ConfigInitCmd   `cmd:"" help:"Write the default configuration to a file"`
}

// ConfigShowCmd prints the effective configuration
type ConfigShowCmd struct {
	Format string `short:"f" enum:"yaml,json,toml" default:"yaml" help:"Output format"`
}

// Run executes the config show command
func (c *ConfigShowCmd) Run(ctx context.Context, cli *CLI) error {
	conf, err := cli.loadConfig()
	if err != nil {
		return err
	}
	return config.Encode(os.Stdout, conf, config.Format(c.Format))
}

// ConfigGetCmd prints one configuration value
type ConfigGetCmd struct {
	Key string `arg:"" help:"Dotted key using file names, e.g. chat.provider"`
}

// Run executes the config get command
func (c *ConfigGetCmd) Run(ctx context.Context, cli *CLI) error {
	conf, err := cli.loadConfig()
	if err != nil {
		return err
	}
	value, err := getConfigValue(conf, c.Key)
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

// ConfigSchemaCmd prints the JSON Schema
type ConfigSchemaCmd struct{}

// Run executes the config schema command
func (c *ConfigSchemaCmd) Run(ctx context.Context, cli *CLI) error {
	data, err := config.JSONSchema()
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// ConfigInitCmd writes a default configuration file
type ConfigInitCmd struct {
	Path  string `arg:"" optional:"" help:"Destination (defaults to the user config as yaml)"`
	Force bool   `help:"Overwrite an existing file"`
}

// Run executes the config init command
func (c *ConfigInitCmd) Run(ctx context.Context, cli *CLI) error {
	path := c.Path
	if path == "" {
		path = config.GetConfigPaths().UserConfig + ".yaml"
	}
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	loader := config.NewLoader(nil, config.ConfigPrecedence{})
	if err := loader.SaveFile(config.DefaultConfig(), path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// getConfigValue retrieves a configuration value by its json key path
func getConfigValue(cfg *config.Config, key string) (interface{}, error) {
	v := reflect.ValueOf(cfg).Elem()

	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("cannot access field %s: not a struct", part)
		}
		field, ok := fieldByTag(v, part)
		if !ok {
			return nil, fmt.Errorf("unknown configuration key %q", key)
		}
		v = field
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), nil
	}
	return v.Interface(), nil
}

// fieldByTag finds the struct field whose json name is name
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
