package logger

import (
	"net/url"
	"strings"
)

const (
	// DefaultMaskValue replaces sensitive values in log output
	DefaultMaskValue = "***"
	// DefaultMaxDepth bounds recursion into nested maps and slices
	DefaultMaxDepth = 8
)

// FilterConfig defines which fields are masked in logs.
type FilterConfig struct {
	// SensitiveFields are matched case-insensitively as substrings of the key
	SensitiveFields []string
	MaskValue       string
}

// DefaultFilterConfig masks credentials that commonly appear in connection
// settings and query arguments.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "pwd",
			"secret", "api_key", "apikey",
			"token", "authorization",
			"credential", "connectionstring", "dsn",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks values whose key names look sensitive.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a filter; nil config uses the defaults.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// FilterString masks value when key is sensitive. Connection URLs keep their
// structure with only the password replaced.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if !f.isSensitiveField(key) || value == "" {
		return value
	}
	if masked, ok := f.maskURL(value); ok {
		return masked
	}
	return f.config.MaskValue
}

// FilterValue masks value when key is sensitive and descends into maps and slices.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	return f.filterValue(key, value, DefaultMaxDepth)
}

// FilterFields filters every entry of fields.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		filtered[key] = f.FilterValue(key, value)
	}
	return filtered
}

func (f *SensitiveDataFilter) filterValue(key string, value any, depth int) any {
	if f.isSensitiveField(key) {
		if s, ok := value.(string); ok {
			return f.FilterString(key, s)
		}
		return f.config.MaskValue
	}
	if depth <= 0 {
		return value
	}

	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[k] = f.filterValue(k, inner, depth-1)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = f.filterValue(key, inner, depth-1)
		}
		return out
	default:
		return value
	}
}

func (f *SensitiveDataFilter) isSensitiveField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, sensitive := range f.config.SensitiveFields {
		if strings.Contains(lower, strings.ToLower(sensitive)) {
			return true
		}
	}
	return false
}

func (f *SensitiveDataFilter) maskURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") {
		return "", false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.User == nil {
		return "", false
	}
	if _, hasPassword := parsed.User.Password(); !hasPassword {
		return raw, true
	}
	parsed.User = url.UserPassword(parsed.User.Username(), f.config.MaskValue)
	// url.String escapes the mask, undo it for readability
	return strings.Replace(parsed.String(), url.QueryEscape(f.config.MaskValue), f.config.MaskValue, 1), true
}
