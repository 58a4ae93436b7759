package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned for a file extension that is not json, yaml or toml
var ErrUnknownFormat = errors.New("unknown configuration format")

// extensions probed for a path given without extension, in order
var extensions = []string{".json", ".yaml", ".yml", ".toml"}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	fs         afero.Fs
	precedence ConfigPrecedence
	validator  *Validator
	lookupEnv  func(string) (string, bool)
	sources    []LoadedSource
}

// LoadedSource records a file or environment layer that contributed to the result
type LoadedSource struct {
	Source ConfigSource
	Path   string
}

// NewLoader creates a new configuration loader reading from fsys
func NewLoader(fsys afero.Fs, precedence ConfigPrecedence) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Loader{
		fs:         fsys,
		precedence: precedence,
		validator:  NewValidator(),
		lookupEnv:  os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	return l
}

// Sources lists the layers applied by the last Load
func (l *Loader) Sources() []LoadedSource {
	return l.sources
}

// Load loads configuration from all sources and merges them. Later layers
// override only the keys they set.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()
	l.sources = []LoadedSource{{Source: SourceDefault}}

	layers := []struct {
		base   string
		source ConfigSource
	}{
		{l.precedence.UserConfig, SourceUser},
		{l.precedence.ProjectConfig, SourceProject},
	}

	for _, layer := range layers {
		if layer.base == "" {
			continue
		}
		path, ok := l.find(layer.base)
		if !ok {
			continue
		}
		if err := l.loadInto(config, path); err != nil {
			return nil, fmt.Errorf("failed to load %s config from %s: %w", layer.source, path, err)
		}
		l.sources = append(l.sources, LoadedSource{Source: layer.source, Path: path})
	}

	if path := l.precedence.ExplicitConfig; path != "" {
		if err := l.loadInto(config, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		l.sources = append(l.sources, LoadedSource{Source: SourceExplicit, Path: path})
	}

	if l.precedence.EnvironmentPrefix != "" {
		applied, err := l.applyEnvironmentOverrides(config)
		if err != nil {
			return nil, err
		}
		if applied {
			l.sources = append(l.sources, LoadedSource{Source: SourceEnvironment})
		}
	}

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// find returns the first existing file for base with a supported extension
func (l *Loader) find(base string) (string, bool) {
	if _, err := FormatFromPath(base); err == nil {
		if ok, _ := afero.Exists(l.fs, base); ok {
			return base, true
		}
		return "", false
	}
	for _, ext := range extensions {
		path := base + ext
		if ok, _ := afero.Exists(l.fs, path); ok {
			return path, true
		}
	}
	return "", false
}

// loadInto decodes the file at path over config
func (l *Loader) loadInto(config *Config, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return err
	}

	next := *config
	if err := Decode(data, format, &next); err != nil {
		return err
	}
	*config = next
	return nil
}

// Decode parses data in the given format over config
func Decode(data []byte, format Format, config *Config) error {
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// Encode writes config to w in the given format
func Encode(w io.Writer, config *Config, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(config)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(config)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// SaveFile saves configuration to a file, choosing the format by extension
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if err := l.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, config, format); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(l.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) (bool, error) {
	prefix := l.precedence.EnvironmentPrefix + "_"
	applied := false

	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(prefix + key); ok && v != "" {
			*dst = v
			applied = true
		}
	}
	str("BASE_URL", &config.API.BaseURL)
	str("PROVIDER", &config.Chat.Provider)
	str("DB_PATH", &config.Storage.DatabasePath)
	str("LOG_LEVEL", &config.Observability.LogLevel)
	str("LOG_FORMAT", &config.Observability.LogFormat)
	str("LOG_FILE", &config.Observability.LogFile)

	if v, ok := l.lookupEnv(prefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return false, fmt.Errorf("invalid %sTIMEOUT: %w", prefix, err)
		}
		config.API.Timeout = Duration(d)
		applied = true
	}
	if v, ok := l.lookupEnv(prefix + "RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false, fmt.Errorf("invalid %sRATE_LIMIT: %w", prefix, err)
		}
		config.API.RateLimit = f
		applied = true
	}
	if v, ok := l.lookupEnv(prefix + "SHOW_STATUS"); ok && v != "" {
		config.Chat.ShowStatus = strings.EqualFold(v, "true") || v == "1"
		applied = true
	}

	return applied, nil
}
