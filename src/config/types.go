package config

import (
	"fmt"
	"time"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// Config represents the complete client configuration
type Config struct {
	Version string `json:"version" yaml:"version" toml:"version" description:"configuration format version"`

	API           APIConfig           `json:"api" yaml:"api" toml:"api"`
	Chat          ChatConfig          `json:"chat" yaml:"chat" toml:"chat"`
	Usage         UsageConfig         `json:"usage" yaml:"usage" toml:"usage"`
	Storage       StorageConfig       `json:"storage" yaml:"storage" toml:"storage"`
	Observability ObservabilityConfig `json:"observability" yaml:"observability" toml:"observability"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL           string   `json:"base_url" yaml:"base_url" toml:"base_url" validate:"required,url" description:"backend base URL"`
	Timeout           Duration `json:"timeout" yaml:"timeout" toml:"timeout" validate:"gte=0" description:"timeout for non-streaming requests"`
	StreamIdleTimeout Duration `json:"stream_idle_timeout" yaml:"stream_idle_timeout" toml:"stream_idle_timeout" validate:"gte=0" description:"longest silence tolerated on a chat stream"`
	RetryCount        int      `json:"retry_count" yaml:"retry_count" toml:"retry_count" validate:"gte=0,lte=10" minimum:"0" maximum:"10"`
	RetryDelay        Duration `json:"retry_delay" yaml:"retry_delay" toml:"retry_delay" validate:"gte=0"`
	RateLimit         float64  `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit" validate:"gte=0" minimum:"0" description:"requests per second, 0 disables limiting"`
}

// ChatConfig holds conversation settings
type ChatConfig struct {
	Provider   string `json:"provider" yaml:"provider" toml:"provider" validate:"provider" enum:"openai,anthropic,groq,gemini,ollama" description:"LLM provider requested from the backend"`
	ShowStatus bool   `json:"show_status" yaml:"show_status" toml:"show_status" description:"print progress labels while a reply streams"`
	Width      int    `json:"width" yaml:"width" toml:"width" validate:"gte=0" minimum:"0" description:"console width, 0 for the default"`
}

// UsageConfig tunes the free trial banners
type UsageConfig struct {
	WarnThreshold int `json:"warn_threshold" yaml:"warn_threshold" toml:"warn_threshold" validate:"gte=1" minimum:"1"`
}

// StorageConfig locates local state
type StorageConfig struct {
	DatabasePath string `json:"database_path" yaml:"database_path" toml:"database_path" validate:"required"`
}

// ObservabilityConfig controls logging
type ObservabilityConfig struct {
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" validate:"log_level" enum:"debug,info,warn,error"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" validate:"log_format" enum:"text,json"`
	LogFile   string `json:"log_file" yaml:"log_file" toml:"log_file" description:"file receiving logs in interactive mode"`
}

// Duration is a time.Duration written as a Go duration string ("30s") in every file format
type Duration time.Duration

// Std returns the duration as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// JSONSchema describes durations as strings
func (Duration) JSONSchema() (jsonschema.Schema, error) {
	s := jsonschema.Schema{}
	s.AddType(jsonschema.String)
	s.WithPattern(`^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`)
	s.WithExamples("30s", "2m")
	return s, nil
}

// ConfigPrecedence defines the order of configuration loading. File paths are
// given without extension; each supported extension is probed in turn.
type ConfigPrecedence struct {
	// UserConfig path
	UserConfig string

	// ProjectConfig path
	ProjectConfig string

	// ExplicitConfig is a complete path given on the command line; it must exist
	ExplicitConfig string

	// EnvironmentPrefix for environment variable overrides
	EnvironmentPrefix string
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceUser        ConfigSource = "user"
	SourceProject     ConfigSource = "project"
	SourceExplicit    ConfigSource = "explicit"
	SourceEnvironment ConfigSource = "environment"
)
