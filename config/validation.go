package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	defaultMaxQueryLength     = 1000
	defaultMaxConnections     = 25
	defaultIdleConnections    = 2
	defaultIdleTime           = 5 * time.Minute
	defaultConnectionLifetime = 30 * time.Minute
	defaultPrimaryKey         = "id"
)

// Database type constants
const (
	MySQL      = "mysql"
	SQLite     = "sqlite"
	PostgreSQL = "postgresql"
	Oracle     = "oracle"

	// PgSQL is accepted as an alias of PostgreSQL
	PgSQL = "pgsql"

	// DefaultConnection names the database configured under "database".
	DefaultConnection = "default"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var structValidator = newStructValidator()

// newStructValidator reports field paths with their koanf names, so errors
// point at "database.port" instead of "DatabaseConfig.Port".
func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks cfg and applies defaults for unset database pool and query
// settings. The first failure is returned as a *ConfigError.
func Validate(cfg *Config) error {
	if err := validateStruct(cfg); err != nil {
		return err
	}

	if err := validateDatabase(&cfg.Database); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	for name, conn := range cfg.Connections {
		if err := validateDatabase(&conn); err != nil {
			return fmt.Errorf("connection %q config: %w", name, err)
		}
		cfg.Connections[name] = conn
	}

	return nil
}

// Connection returns the configuration of the named database. An empty name
// or DefaultConnection selects cfg.Database.
func (cfg *Config) Connection(name string) (*DatabaseConfig, error) {
	if name == "" || name == DefaultConnection {
		return &cfg.Database, nil
	}
	conn, ok := cfg.Connections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
	}
	return &conn, nil
}

func validateStruct(cfg *Config) error {
	err := structValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	fe := validationErrors[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		envVar := strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
		return NewMissingFieldError(field, envVar, field)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value()), nil)
	}
}

// IsDatabaseConfigured determines if a database is intentionally configured.
func IsDatabaseConfigured(cfg *DatabaseConfig) bool {
	return cfg.ConnectionString != "" || cfg.Host != "" || cfg.Type != ""
}

// NormalizedType folds vendor aliases onto their canonical name.
func (cfg *DatabaseConfig) NormalizedType() string {
	if cfg.Type == PgSQL {
		return PostgreSQL
	}
	return cfg.Type
}

func validateDatabase(cfg *DatabaseConfig) error {
	if !IsDatabaseConfigured(cfg) {
		return nil
	}

	if cfg.Type == "" {
		return NewMissingFieldError("database.type", "DATABASE_TYPE", "database.type")
	}

	if cfg.ConnectionString == "" {
		if err := validateDatabaseCoreFields(cfg); err != nil {
			return err
		}
	}

	applyDatabaseDefaults(cfg)

	if cfg.Pool.Idle.Connections > cfg.Pool.Max.Connections {
		return NewInvalidFieldError("database.pool.idle.connections",
			fmt.Sprintf("%d exceeds database.pool.max.connections (%d)", cfg.Pool.Idle.Connections, cfg.Pool.Max.Connections), nil)
	}

	return nil
}

// validateDatabaseCoreFields checks the fields DSN construction needs.
// SQLite only needs a file path (or ":memory:").
func validateDatabaseCoreFields(cfg *DatabaseConfig) error {
	if cfg.Database == "" && !(cfg.NormalizedType() == Oracle && hasOracleService(cfg)) {
		return NewMissingFieldError("database.database", "DATABASE_DATABASE", "database.database")
	}

	if cfg.NormalizedType() == SQLite {
		return nil
	}

	if cfg.Host == "" {
		return NewMissingFieldError("database.host", "DATABASE_HOST", "database.host")
	}
	if cfg.Port == 0 {
		return NewMissingFieldError("database.port", "DATABASE_PORT", "database.port")
	}
	if cfg.Username == "" {
		return NewMissingFieldError("database.username", "DATABASE_USERNAME", "database.username")
	}

	return nil
}

func hasOracleService(cfg *DatabaseConfig) bool {
	return cfg.Oracle.Service.Name != "" || cfg.Oracle.Service.SID != ""
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Pool.Max.Connections == 0 {
		cfg.Pool.Max.Connections = defaultMaxConnections
	}
	if cfg.Pool.Idle.Connections == 0 {
		cfg.Pool.Idle.Connections = min(defaultIdleConnections, cfg.Pool.Max.Connections)
	}
	if cfg.Pool.Idle.Time == 0 {
		cfg.Pool.Idle.Time = defaultIdleTime
	}
	if cfg.Pool.Lifetime.Max == 0 {
		cfg.Pool.Lifetime.Max = defaultConnectionLifetime
	}
	if cfg.Query.Slow.Threshold == 0 {
		cfg.Query.Slow.Threshold = defaultSlowQueryThreshold
	}
	if cfg.Query.Log.MaxLength == 0 {
		cfg.Query.Log.MaxLength = defaultMaxQueryLength
	}
	if cfg.Builder.PrimaryKey == "" {
		cfg.Builder.PrimaryKey = defaultPrimaryKey
	}
}
