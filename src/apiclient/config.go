package apiclient

import (
	"log/slog"
	"time"
)

// Config holds configuration for the backend client
type Config struct {
	BaseURL           string        // Base URL of the backend API
	Logger            *slog.Logger  // Logger for debugging
	Timeout           time.Duration // HTTP timeout for non-streaming requests
	StreamIdleTimeout time.Duration // Maximum silence on an open chat stream
	RetryCount        int           // Attempts for idempotent requests
	RetryDelay        time.Duration // Delay between retries, multiplied by the attempt
	RateLimit         float64       // Requests per second, 0 disables limiting
	UserAgent         string        // Product token prepended to the User-Agent
}
