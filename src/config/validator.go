package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

var (
	validProviders  = []string{"openai", "anthropic", "groq", "gemini", "ollama"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterValidation("provider", oneOf(validProviders))
	v.RegisterValidation("log_level", oneOf(validLogLevels))
	v.RegisterValidation("log_format", oneOf(validLogFormats))

	return &Validator{
		validate: v,
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	if config.Version == "" {
		config.Version = "1.0"
	}

	err := v.validate.Struct(config)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return ValidationError{
			Field:   e.Namespace(),
			Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
			Value:   e.Value(),
		}
	}
	return err
}

// oneOf accepts an empty value or one of allowed
func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return slices.Contains(allowed, value)
	}
}
