package config

import (
	"time"
)

// Config represents the configuration of the SQL layer.
type Config struct {
	App       AppConfig       `koanf:"app" json:"app" yaml:"app"`
	Database  DatabaseConfig  `koanf:"database" json:"database" yaml:"database"`
	// Connections holds additional named databases besides the default one.
	Connections map[string]DatabaseConfig `koanf:"connections" json:"connections" yaml:"connections"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log"`
	Migration MigrationConfig `koanf:"migration" json:"migration" yaml:"migration"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Env  string `koanf:"env" json:"env" yaml:"env" validate:"oneof=development staging production"`
}

// IsDevelopment reports whether the application runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Type     string `koanf:"type" json:"type" yaml:"type" validate:"omitempty,oneof=mysql sqlite postgresql pgsql oracle"`
	Host     string `koanf:"host" json:"host" yaml:"host"`
	Port     int    `koanf:"port" json:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Database string `koanf:"database" json:"database" yaml:"database"`
	Username string `koanf:"username" json:"username" yaml:"username"`
	Password string `koanf:"password" json:"-" yaml:"password"`

	// ConnectionString bypasses DSN construction from the individual fields.
	ConnectionString string `koanf:"connectionstring" json:"-" yaml:"connectionstring"`

	Pool    PoolConfig    `koanf:"pool" json:"pool" yaml:"pool"`
	Query   QueryConfig   `koanf:"query" json:"query" yaml:"query"`
	Builder BuilderConfig `koanf:"builder" json:"builder" yaml:"builder"`
	Oracle  OracleConfig  `koanf:"oracle" json:"oracle" yaml:"oracle"`
}

// PoolConfig holds connection pool settings.
// Defaults applied during validation:
//   - Max.Connections: 25
//   - Idle.Connections: 2
//   - Idle.Time: 5m
//   - Lifetime.Max: 30m
type PoolConfig struct {
	Max      PoolMaxConfig  `koanf:"max" json:"max" yaml:"max"`
	Idle     PoolIdleConfig `koanf:"idle" json:"idle" yaml:"idle"`
	Lifetime LifetimeConfig `koanf:"lifetime" json:"lifetime" yaml:"lifetime"`
}

// PoolMaxConfig holds maximum connections settings.
type PoolMaxConfig struct {
	Connections int32 `koanf:"connections" json:"connections" yaml:"connections" validate:"gte=0"`
}

// PoolIdleConfig holds idle connections settings.
type PoolIdleConfig struct {
	Connections int32         `koanf:"connections" json:"connections" yaml:"connections" validate:"gte=0"`
	Time        time.Duration `koanf:"time" json:"time" yaml:"time" validate:"gte=0"`
}

// LifetimeConfig holds maximum lifetime settings for connections.
type LifetimeConfig struct {
	Max time.Duration `koanf:"max" json:"max" yaml:"max" validate:"gte=0"`
}

// QueryConfig holds settings related to query logging and slow query detection.
type QueryConfig struct {
	Slow SlowQueryConfig `koanf:"slow" json:"slow" yaml:"slow"`
	Log  QueryLogConfig  `koanf:"log" json:"log" yaml:"log"`
}

// SlowQueryConfig holds settings for slow query detection.
type SlowQueryConfig struct {
	Threshold time.Duration `koanf:"threshold" json:"threshold" yaml:"threshold" validate:"gte=0"`
}

// QueryLogConfig holds settings for query logging.
type QueryLogConfig struct {
	Parameters bool `koanf:"parameters" json:"parameters" yaml:"parameters"`
	MaxLength  int  `koanf:"max" json:"max" yaml:"max" validate:"gte=0"`
}

// BuilderConfig holds query builder behaviour switches.
type BuilderConfig struct {
	// Strict makes terminal calls on a consumed builder fail instead of
	// running against the cleared state.
	Strict bool `koanf:"strict" json:"strict" yaml:"strict"`
	// StickyLimit restores the legacy coupling between Jump and Take.
	StickyLimit bool   `koanf:"stickylimit" json:"stickylimit" yaml:"stickylimit"`
	PrimaryKey  string `koanf:"primarykey" json:"primarykey" yaml:"primarykey"`
}

// OracleConfig holds Oracle-specific database settings.
type OracleConfig struct {
	Service ServiceConfig `koanf:"service" json:"service" yaml:"service"`
}

// ServiceConfig holds Oracle service connection settings.
type ServiceConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name"`
	SID  string `koanf:"sid" json:"sid" yaml:"sid"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// MigrationConfig holds settings for the schema migrator.
type MigrationConfig struct {
	Table   string        `koanf:"table" json:"table" yaml:"table" validate:"required"`
	AutoRun bool          `koanf:"autorun" json:"autorun" yaml:"autorun"`
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
}
