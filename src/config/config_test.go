package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func testPrecedence() ConfigPrecedence {
	return ConfigPrecedence{
		UserConfig:        "/home/me/.config/eventchat/config",
		ProjectConfig:     "/work/.eventchat",
		EnvironmentPrefix: "EVENTCHAT",
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, "http://localhost:8000", config.API.BaseURL)
	assert.Equal(t, DefaultProvider, config.Chat.Provider)
	assert.Equal(t, 3, config.Usage.WarnThreshold)
	assert.Equal(t, 2*time.Minute, config.API.StreamIdleTimeout.Std())
	assert.NotEmpty(t, config.Storage.DatabasePath)
	require.NoError(t, NewValidator().Validate(config))
}

func TestConfigValidation(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Chat.Provider = "skynet" }, wantErr: "Config.Chat.Provider"},
		{name: "bad base url", mutate: func(c *Config) { c.API.BaseURL = "not a url" }, wantErr: "Config.API.BaseURL"},
		{name: "negative retries", mutate: func(c *Config) { c.API.RetryCount = -1 }, wantErr: "Config.API.RetryCount"},
		{name: "zero threshold", mutate: func(c *Config) { c.Usage.WarnThreshold = 0 }, wantErr: "Config.Usage.WarnThreshold"},
		{name: "bad log level", mutate: func(c *Config) { c.Observability.LogLevel = "loud" }, wantErr: "Config.Observability.LogLevel"},
		{name: "missing database", mutate: func(c *Config) { c.Storage.DatabasePath = "" }, wantErr: "Config.Storage.DatabasePath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			err := validator.Validate(c)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantErr, verr.Field)
		})
	}
}

func TestLoaderLayers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/home/me/.config/eventchat/config.yaml", []byte(`
api:
  base_url: https://events.example.com
  timeout: 10s
chat:
  provider: groq
  width: 100
`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/work/.eventchat.toml", []byte(`
[chat]
provider = "anthropic"

[usage]
warn_threshold = 5
`), 0o644))

	loader := NewLoader(fs, testPrecedence()).WithEnv(env(map[string]string{
		"EVENTCHAT_LOG_LEVEL":  "debug",
		"EVENTCHAT_RATE_LIMIT": "2.5",
	}))
	config, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://events.example.com", config.API.BaseURL)
	assert.Equal(t, 10*time.Second, config.API.Timeout.Std())
	// untouched keys keep their defaults
	assert.Equal(t, 3, config.API.RetryCount)
	assert.Equal(t, "anthropic", config.Chat.Provider)
	assert.Equal(t, 100, config.Chat.Width)
	assert.Equal(t, 5, config.Usage.WarnThreshold)
	assert.Equal(t, "debug", config.Observability.LogLevel)
	assert.InDelta(t, 2.5, config.API.RateLimit, 1e-9)

	sources := loader.Sources()
	require.Len(t, sources, 4)
	assert.Equal(t, SourceUser, sources[1].Source)
	assert.Equal(t, "/work/.eventchat.toml", sources[2].Path)
	assert.Equal(t, SourceEnvironment, sources[3].Source)
}

func TestLoaderExplicitJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/tmp/custom.json", []byte(`{"api":{"stream_idle_timeout":"45s"},"storage":{"database_path":"/tmp/ec.db"}}`), 0o644))

	p := testPrecedence()
	p.ExplicitConfig = "/tmp/custom.json"
	config, err := NewLoader(fs, p).WithEnv(env(nil)).Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, config.API.StreamIdleTimeout.Std())
	assert.Equal(t, "/tmp/ec.db", config.Storage.DatabasePath)

	p.ExplicitConfig = "/tmp/missing.yaml"
	_, err = NewLoader(fs, p).WithEnv(env(nil)).Load()
	assert.Error(t, err)
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		env   map[string]string
	}{
		{name: "malformed yaml", files: map[string]string{"/work/.eventchat.yaml": "chat: [unterminated"}},
		{name: "bad duration", files: map[string]string{"/work/.eventchat.json": `{"api":{"timeout":"soon"}}`}},
		{name: "invalid value", files: map[string]string{"/work/.eventchat.json": `{"chat":{"provider":"skynet"}}`}},
		{name: "bad env duration", env: map[string]string{"EVENTCHAT_TIMEOUT": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for path, content := range tt.files {
				require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
			}
			_, err := NewLoader(fs, testPrecedence()).WithEnv(env(tt.env)).Load()
			assert.Error(t, err)
		})
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	loader := NewLoader(fs, ConfigPrecedence{ExplicitConfig: "/cfg/config.toml"}).WithEnv(env(nil))

	config := DefaultConfig()
	config.Chat.Provider = "gemini"
	config.API.RetryDelay = Duration(250 * time.Millisecond)
	require.NoError(t, loader.SaveFile(config, "/cfg/config.toml"))

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", loaded.Chat.Provider)
	assert.Equal(t, 250*time.Millisecond, loaded.API.RetryDelay.Std())

	assert.ErrorIs(t, loader.SaveFile(config, "/cfg/config.ini"), ErrUnknownFormat)
}

func TestEncodeYAMLUsesDurationStrings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, DefaultConfig(), FormatYAML))
	assert.Contains(t, buf.String(), "timeout: 30s")
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "api")
	assert.Contains(t, props, "chat")
	assert.Contains(t, string(data), `"stream_idle_timeout"`)
}
