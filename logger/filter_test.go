package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSensitiveDataFilterDefaults(t *testing.T) {
	f := NewSensitiveDataFilter(nil)
	assert.Equal(t, DefaultMaskValue, f.config.MaskValue)
	assert.Contains(t, f.config.SensitiveFields, "password")

	custom := NewSensitiveDataFilter(&FilterConfig{SensitiveFields: []string{"pin"}})
	assert.Equal(t, DefaultMaskValue, custom.config.MaskValue)
}

func TestFilterString(t *testing.T) {
	f := NewSensitiveDataFilter(nil)

	tests := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{name: "plain_field", key: "table", value: "users", expected: "users"},
		{name: "password", key: "Password", value: "hunter2", expected: DefaultMaskValue},
		{name: "empty_sensitive", key: "password", value: "", expected: ""},
		{
			name:     "dsn_keeps_structure",
			key:      "dsn",
			value:    "postgres://app:hunter2@db:5432/bow",
			expected: "postgres://app:***@db:5432/bow",
		},
		{
			name:     "dsn_without_password",
			key:      "dsn",
			value:    "postgres://app@db:5432/bow",
			expected: "postgres://app@db:5432/bow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.FilterString(tt.key, tt.value))
		})
	}
}

func TestFilterValueNested(t *testing.T) {
	f := NewSensitiveDataFilter(nil)

	in := map[string]any{
		"username": "app",
		"auth": map[string]any{
			"token": "abc",
			"scope": "read",
		},
		"args": []any{"x", map[string]any{"secret": 1}},
	}

	out, ok := f.FilterValue("payload", in).(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "app", out["username"])

	auth := out["auth"].(map[string]any)
	assert.Equal(t, DefaultMaskValue, auth["token"])
	assert.Equal(t, "read", auth["scope"])

	args := out["args"].([]any)
	assert.Equal(t, "x", args[0])
	assert.Equal(t, DefaultMaskValue, args[1].(map[string]any)["secret"])
}

func TestFilterValueSensitiveNonString(t *testing.T) {
	f := NewSensitiveDataFilter(nil)
	assert.Equal(t, DefaultMaskValue, f.FilterValue("api_key", 12345))
	assert.Equal(t, 42, f.FilterValue("count", 42))
}

func TestFilterFields(t *testing.T) {
	f := NewSensitiveDataFilter(&FilterConfig{SensitiveFields: []string{"pin"}, MaskValue: "[MASKED]"})
	out := f.FilterFields(map[string]any{"pin": "1234", "name": "bow"})
	assert.Equal(t, "[MASKED]", out["pin"])
	assert.Equal(t, "bow", out["name"])
}
