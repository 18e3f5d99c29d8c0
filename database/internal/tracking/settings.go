// Package tracking instruments database connections.
// Every query, prepared statement and transaction step is timed, traced as an
// OpenTelemetry span, counted in metrics and logged, with slow operations
// raised to warnings.
package tracking

import (
	"time"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	// DefaultSlowQueryThreshold is used when the configuration leaves the threshold unset.
	DefaultSlowQueryThreshold = 200 * time.Millisecond
	// DefaultMaxQueryLength bounds logged query text when the configuration leaves it unset.
	DefaultMaxQueryLength = 1000
)

// Settings controls what gets logged for a tracked operation.
type Settings struct {
	slowQueryThreshold time.Duration
	maxQueryLength     int
	logQueryParameters bool
}

// NewSettings reads tracking settings from cfg. Non-positive values fall back
// to the package defaults, and a nil cfg yields the defaults with parameter
// logging disabled.
func NewSettings(cfg *config.DatabaseConfig) Settings {
	settings := Settings{
		slowQueryThreshold: DefaultSlowQueryThreshold,
		maxQueryLength:     DefaultMaxQueryLength,
	}
	if cfg == nil {
		return settings
	}

	if cfg.Query.Slow.Threshold > 0 {
		settings.slowQueryThreshold = cfg.Query.Slow.Threshold
	}
	if cfg.Query.Log.MaxLength > 0 {
		settings.maxQueryLength = cfg.Query.Log.MaxLength
	}
	settings.logQueryParameters = cfg.Query.Log.Parameters

	return settings
}

// SlowQueryThreshold returns the duration above which an operation is logged as slow.
func (s Settings) SlowQueryThreshold() time.Duration { return s.slowQueryThreshold }

// MaxQueryLength returns the rune limit applied to logged query text.
func (s Settings) MaxQueryLength() int { return s.maxQueryLength }

// LogQueryParameters reports whether bound arguments are logged.
func (s Settings) LogQueryParameters() bool { return s.logQueryParameters }

// Context carries what every tracked operation of one connection shares.
type Context struct {
	Logger   logger.Logger
	Vendor   string
	Settings Settings

	// Server metadata for span attributes, empty when unknown.
	ServerAddress string
	ServerPort    int
	Namespace     string
}
