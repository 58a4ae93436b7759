package config

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/swaggest/jsonschema-go"
)

// JSONSchema reflects the JSON Schema of the configuration file
func JSONSchema() ([]byte, error) {
	r := jsonschema.Reflector{}
	s, err := r.Reflect(Config{}, jsonschema.InlineRefs)
	if err != nil {
		return nil, fmt.Errorf("failed to reflect config schema: %w", err)
	}
	s.WithTitle("eventchat configuration")

	return json.MarshalIndent(s, "", "  ")
}
