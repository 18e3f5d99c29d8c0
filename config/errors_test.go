package config

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		expected string
	}{
		{
			name:     "missing",
			err:      NewMissingFieldError("database.host", "DATABASE_HOST", "database.host"),
			expected: "config_missing: database.host required set DATABASE_HOST env var or add database.host to config.yaml",
		},
		{
			name:     "invalid_with_options",
			err:      NewInvalidFieldError("database.type", "invalid value", []string{"mysql", "sqlite"}),
			expected: "config_invalid: database.type invalid value must be one of: mysql, sqlite",
		},
		{
			name:     "invalid_without_options",
			err:      NewInvalidFieldError("log.level", "bad", nil),
			expected: "config_invalid: log.level bad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestConfigErrorUnwrapsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading: %w", NewMissingFieldError("database.database", "DATABASE_DATABASE", "database.database"))

	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "missing", cfgErr.Category)
	assert.Equal(t, "database.database", cfgErr.Field)
	assert.False(t, errors.Is(err, ErrUnknownConnection))
}
