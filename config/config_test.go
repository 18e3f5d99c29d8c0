package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDatabaseType     = "DATABASE_TYPE"
	testDatabaseDatabase = "DATABASE_DATABASE"
	testSlowThreshold    = "DATABASE_QUERY_SLOW_THRESHOLD"
	sqliteYAML           = `
database:
  type: sqlite
  database: ":memory:"
`
)

func TestLoadWithDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "bow", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, "migrations", cfg.Migration.Table)
	assert.Equal(t, 5*time.Minute, cfg.Migration.Timeout)

	assert.False(t, IsDatabaseConfigured(&cfg.Database))
	assert.Equal(t, int32(0), cfg.Database.Pool.Max.Connections)
}

func TestLoadReadsConfigFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
app:
  env: staging
database:
  type: mysql
  host: localhost
  port: 3306
  database: bow
  username: root
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(`
database:
  port: 3307
`), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Env)
	assert.Equal(t, MySQL, cfg.Database.Type)
	assert.Equal(t, 3307, cfg.Database.Port)
}

func TestLoadBytesAppliesDatabaseDefaults(t *testing.T) {
	cfg, err := LoadBytes([]byte(sqliteYAML))
	require.NoError(t, err)

	db := cfg.Database
	assert.Equal(t, SQLite, db.NormalizedType())
	assert.Equal(t, int32(25), db.Pool.Max.Connections)
	assert.Equal(t, int32(2), db.Pool.Idle.Connections)
	assert.Equal(t, 5*time.Minute, db.Pool.Idle.Time)
	assert.Equal(t, 30*time.Minute, db.Pool.Lifetime.Max)
	assert.Equal(t, 200*time.Millisecond, db.Query.Slow.Threshold)
	assert.Equal(t, 1000, db.Query.Log.MaxLength)
	assert.Equal(t, "id", db.Builder.PrimaryKey)
	assert.False(t, db.Builder.Strict)
}

func TestLoadBytesBuilderSection(t *testing.T) {
	cfg, err := LoadBytes([]byte(sqliteYAML + `
  builder:
    strict: true
    stickylimit: true
    primarykey: uid
  query:
    slow:
      threshold: 1s
    log:
      parameters: true
      max: 64
`))
	require.NoError(t, err)

	assert.True(t, cfg.Database.Builder.Strict)
	assert.True(t, cfg.Database.Builder.StickyLimit)
	assert.Equal(t, "uid", cfg.Database.Builder.PrimaryKey)
	assert.Equal(t, time.Second, cfg.Database.Query.Slow.Threshold)
	assert.True(t, cfg.Database.Query.Log.Parameters)
	assert.Equal(t, 64, cfg.Database.Query.Log.MaxLength)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv(testDatabaseType, "pgsql")
	t.Setenv(testDatabaseDatabase, "from_env")
	t.Setenv("DATABASE_HOST", "db")
	t.Setenv("DATABASE_PORT", "5432")
	t.Setenv("DATABASE_USERNAME", "app")
	t.Setenv(testSlowThreshold, "750ms")

	cfg, err := LoadBytes([]byte(sqliteYAML))
	require.NoError(t, err)

	assert.Equal(t, PgSQL, cfg.Database.Type)
	assert.Equal(t, PostgreSQL, cfg.Database.NormalizedType())
	assert.Equal(t, "from_env", cfg.Database.Database)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.Query.Slow.Threshold)
}

func TestLoadBytesRejectsMalformedYAML(t *testing.T) {
	_, err := LoadBytes([]byte("database: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		field    string
		category string
	}{
		{
			name:     "unknown_database_type",
			yaml:     "database:\n  type: mssql\n",
			field:    "database.type",
			category: "invalid",
		},
		{
			name:     "invalid_environment",
			yaml:     "app:\n  env: qa\n",
			field:    "app.env",
			category: "invalid",
		},
		{
			name:     "invalid_log_level",
			yaml:     "log:\n  level: loud\n",
			field:    "log.level",
			category: "invalid",
		},
		{
			name:     "port_out_of_range",
			yaml:     "database:\n  type: mysql\n  port: 70000\n",
			field:    "database.port",
			category: "invalid",
		},
		{
			name:     "host_without_type",
			yaml:     "database:\n  host: localhost\n",
			field:    "database.type",
			category: "missing",
		},
		{
			name:     "mysql_missing_host",
			yaml:     "database:\n  type: mysql\n  database: bow\n",
			field:    "database.host",
			category: "missing",
		},
		{
			name:     "sqlite_missing_file",
			yaml:     "database:\n  type: sqlite\n",
			field:    "database.database",
			category: "missing",
		},
		{
			name:     "idle_exceeds_max",
			yaml:     sqliteYAML + "  pool:\n    max:\n      connections: 2\n    idle:\n      connections: 5\n",
			field:    "database.pool.idle.connections",
			category: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			require.Error(t, err)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tt.category, cfgErr.Category)
		})
	}
}

func TestOracleServiceReplacesDatabaseName(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
database:
  type: oracle
  host: ora
  port: 1521
  username: app
  oracle:
    service:
      name: FREEPDB1
`))
	require.NoError(t, err)
	assert.Equal(t, "FREEPDB1", cfg.Database.Oracle.Service.Name)
}

func TestConnectionStringSkipsCoreFields(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
database:
  type: postgresql
  connectionstring: postgres://app:secret@db:5432/bow
`))
	require.NoError(t, err)
	assert.True(t, IsDatabaseConfigured(&cfg.Database))
	assert.Equal(t, int32(25), cfg.Database.Pool.Max.Connections)
}

func TestNamedConnections(t *testing.T) {
	cfg, err := LoadBytes([]byte(`
database:
  type: sqlite
  database: ":memory:"
connections:
  reporting:
    type: postgresql
    host: replica.internal
    port: 5432
    database: reports
    username: reader
`))
	require.NoError(t, err)

	def, err := cfg.Connection("")
	require.NoError(t, err)
	assert.Equal(t, SQLite, def.Type)
	same, err := cfg.Connection(DefaultConnection)
	require.NoError(t, err)
	assert.Same(t, def, same)

	reporting, err := cfg.Connection("reporting")
	require.NoError(t, err)
	assert.Equal(t, "replica.internal", reporting.Host)
	assert.Equal(t, int32(25), reporting.Pool.Max.Connections, "defaults apply to named connections")

	_, err = cfg.Connection("archive")
	assert.ErrorIs(t, err, ErrUnknownConnection)
}

func TestNamedConnectionValidation(t *testing.T) {
	_, err := LoadBytes([]byte(`
connections:
  reporting:
    host: replica.internal
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `connection "reporting" config`)
}
