package config

import (
	"time"
)

// DefaultProvider is the LLM provider the web client requests
const DefaultProvider = "openai"

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	paths := GetDefaultStoragePaths()

	return &Config{
		Version: "1.0",
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           Duration(30 * time.Second),
			StreamIdleTimeout: Duration(2 * time.Minute),
			RetryCount:        3,
			RetryDelay:        Duration(time.Second),
		},
		Chat: ChatConfig{
			Provider: DefaultProvider,
		},
		Usage: UsageConfig{
			WarnThreshold: 3,
		},
		Storage: StorageConfig{
			DatabasePath: paths.DatabasePath,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "warn",
			LogFormat: "text",
			LogFile:   paths.LogPath,
		},
	}
}
