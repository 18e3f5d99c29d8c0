package migration

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database"
	"github.com/bowphp/framework-sub001/database/schema"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	createUsers = "2024_01_01_000000_create_users"
	createPosts = "2024_01_02_000000_create_posts"
	addBio      = "2024_02_01_000000_add_bio_to_users"
)

func openMemory(t *testing.T) *database.Connection {
	t.Helper()
	conn, err := database.NewConnection(&config.DatabaseConfig{Type: config.SQLite, Database: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func tableExists(t *testing.T, conn types.Interface, table string) bool {
	t.Helper()
	n, err := database.Table(conn, "sqlite_master").Where("type", "table").Where("name", table).Count(context.Background())
	require.NoError(t, err)
	return n > 0
}

func usersMigration() Migration {
	return Define(createUsers,
		func(ctx context.Context, r *Runner) error {
			return r.Create(ctx, "users", func(t *schema.Table) {
				t.AddIncrements("id").
					AddString("email", schema.ColumnOptions{Unique: true}).
					AddTimestamps()
			})
		},
		func(ctx context.Context, r *Runner) error {
			return r.DropIfExists(ctx, "users")
		},
	)
}

func postsMigration() Migration {
	return Define(createPosts,
		func(ctx context.Context, r *Runner) error {
			return r.Create(ctx, "posts", func(t *schema.Table) {
				t.AddIncrements("id").
					AddInteger("user_id").
					AddString("title", schema.ColumnOptions{Size: 120})
			})
		},
		func(ctx context.Context, r *Runner) error {
			return r.DropIfExists(ctx, "posts")
		},
	)
}

func bioMigration() Migration {
	return Define(addBio,
		func(ctx context.Context, r *Runner) error {
			return r.Alter(ctx, "users", func(t *schema.Table) {
				t.AddText("bio", schema.ColumnOptions{Nullable: true})
			})
		},
		func(ctx context.Context, r *Runner) error {
			return r.Alter(ctx, "users", func(t *schema.Table) {
				t.DropColumn("bio")
			})
		},
	)
}

func TestRegisterSortsAndRejectsDuplicates(t *testing.T) {
	m := New(openMemory(t), nil, nil)
	require.NoError(t, m.Register(bioMigration(), postsMigration(), usersMigration()))

	names := make([]string, 0, len(m.migrations))
	for _, mig := range m.migrations {
		names = append(names, mig.Name())
	}
	assert.Equal(t, []string{createUsers, createPosts, addBio}, names)

	err := m.Register(Define(createPosts, nil, nil))
	assert.ErrorIs(t, err, ErrDuplicateMigration)
}

func TestNewAppliesConfig(t *testing.T) {
	cfg := &config.Config{
		App:       config.AppConfig{Env: config.EnvProduction},
		Migration: config.MigrationConfig{Table: "schema_history", AutoRun: true, Timeout: time.Second},
	}
	m := New(openMemory(t), cfg, nil)
	assert.Equal(t, "schema_history", m.table)
	assert.Equal(t, time.Second, m.timeout)
	assert.True(t, m.autorun)
	assert.Equal(t, config.EnvProduction, m.env)

	m = New(openMemory(t), nil, nil)
	assert.Equal(t, defaultTable, m.table)
	assert.Equal(t, defaultTimeout, m.timeout)
}

func TestMigrateAndRollbackBatches(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	m := New(conn, nil, nil)
	runID := uuid.MustParse("0b8e7c58-3f39-4e55-9f5a-4b6c1c2d7e10")
	m.newRunID = func() uuid.UUID { return runID }

	require.NoError(t, m.Register(usersMigration(), postsMigration()))
	applied, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{createUsers, createPosts}, applied)
	assert.True(t, tableExists(t, conn, "users"))
	assert.True(t, tableExists(t, conn, "posts"))

	again, err := m.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, m.Register(bioMigration()))
	applied, err = m.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addBio}, applied)

	statuses, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Status{
		{Name: createUsers, Applied: true, Batch: 1},
		{Name: createPosts, Applied: true, Batch: 1},
		{Name: addBio, Applied: true, Batch: 2},
	}, statuses)

	row, err := database.Table(conn, defaultTable).Where(colMigration, createUsers).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID.String(), row[colRunID])

	reverted, err := m.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{addBio}, reverted)

	_, err = database.Table(conn, "users").Insert(ctx, map[string]any{"email": "a@bow.test", "bio": "x"})
	assert.Error(t, err)

	reverted, err = m.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{createPosts, createUsers}, reverted)
	assert.False(t, tableExists(t, conn, "users"))

	reverted, err = m.Rollback(ctx)
	require.NoError(t, err)
	assert.Empty(t, reverted)
}

func TestReset(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	m := New(conn, nil, nil)

	require.NoError(t, m.Register(usersMigration()))
	_, err := m.Migrate(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Register(postsMigration()))
	_, err = m.Migrate(ctx)
	require.NoError(t, err)

	reverted, err := m.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{createPosts, createUsers}, reverted)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{createUsers, createPosts}, pending)
}

func TestMigrateStopsAtFailure(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	m := New(conn, nil, nil)
	boom := errors.New("boom")

	require.NoError(t, m.Register(
		usersMigration(),
		Define("2024_01_03_000000_broken", func(context.Context, *Runner) error { return boom }, nil),
		Define("2024_01_04_000000_never", func(context.Context, *Runner) error {
			t.Fatal("migration after a failure must not run")
			return nil
		}, nil),
	))

	applied, err := m.Migrate(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "migration 2024_01_03_000000_broken failed")
	assert.Equal(t, []string{createUsers}, applied)

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestMigrationTimeout(t *testing.T) {
	cfg := &config.Config{Migration: config.MigrationConfig{Timeout: 10 * time.Millisecond}}
	m := New(openMemory(t), cfg, nil)

	require.NoError(t, m.Register(Define("2024_01_01_000000_slow", func(ctx context.Context, _ *Runner) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil)))

	_, err := m.Migrate(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRollbackUnknownMigration(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	m := New(conn, nil, nil)
	require.NoError(t, m.Register(usersMigration()))
	_, err := m.Migrate(ctx)
	require.NoError(t, err)

	other := New(conn, nil, nil)
	_, err = other.Rollback(ctx)
	assert.ErrorIs(t, err, ErrUnknownMigration)
}

func TestDataMigrationThroughBuilder(t *testing.T) {
	conn := openMemory(t)
	ctx := context.Background()
	m := New(conn, nil, nil)

	require.NoError(t, m.Register(usersMigration(), Define("2024_01_05_000000_seed_admin",
		func(ctx context.Context, r *Runner) error {
			_, err := r.Table("users").Insert(ctx, map[string]any{"email": "admin@bow.test"})
			return err
		},
		func(ctx context.Context, r *Runner) error {
			_, err := r.Table("users").Remove(ctx, "email", "admin@bow.test")
			return err
		},
	)))

	_, err := m.Migrate(ctx)
	require.NoError(t, err)

	exists, err := database.Table(conn, "users").Exists(ctx, "email", "admin@bow.test")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRunAtStartup(t *testing.T) {
	ctx := context.Background()

	t.Run("development migrates", func(t *testing.T) {
		conn := openMemory(t)
		m := New(conn, &config.Config{App: config.AppConfig{Env: config.EnvDevelopment}}, nil)
		require.NoError(t, m.Register(usersMigration()))

		require.NoError(t, m.RunAtStartup(ctx))
		assert.True(t, tableExists(t, conn, "users"))
	})

	t.Run("autorun migrates", func(t *testing.T) {
		conn := openMemory(t)
		m := New(conn, &config.Config{
			App:       config.AppConfig{Env: config.EnvProduction},
			Migration: config.MigrationConfig{AutoRun: true},
		}, nil)
		require.NoError(t, m.Register(usersMigration()))

		require.NoError(t, m.RunAtStartup(ctx))
		assert.True(t, tableExists(t, conn, "users"))
	})

	t.Run("production reports pending", func(t *testing.T) {
		var buf bytes.Buffer
		conn := openMemory(t)
		m := New(conn, &config.Config{App: config.AppConfig{Env: config.EnvProduction}}, logger.NewWithWriter(&buf, "info", false, nil))
		require.NoError(t, m.Register(usersMigration(), postsMigration()))

		require.NoError(t, m.RunAtStartup(ctx))
		assert.False(t, tableExists(t, conn, "users"))
		assert.Contains(t, buf.String(), "Pending migrations: "+createUsers+", "+createPosts)

		buf.Reset()
		_, err := m.Migrate(ctx)
		require.NoError(t, err)
		require.NoError(t, m.RunAtStartup(ctx))
		assert.Contains(t, buf.String(), "Database schema is up to date")
	})
}

// execRecorder captures statements run through Exec.
type execRecorder struct {
	types.Interface
	vendor     string
	statements []string
}

func (e *execRecorder) Exec(_ context.Context, query string, _ ...any) (sql.Result, error) {
	e.statements = append(e.statements, query)
	return nil, nil
}

func (e *execRecorder) DatabaseType() string { return e.vendor }

func TestRunnerStatementsPerDialect(t *testing.T) {
	ctx := context.Background()
	define := func(t *schema.Table) {
		t.AddIncrements("id").AddString("name")
	}

	t.Run("postgresql keeps terminator", func(t *testing.T) {
		rec := &execRecorder{vendor: types.PostgreSQL}
		r := NewRunner(rec, nil)
		require.NoError(t, r.Create(ctx, "tags", define))
		require.NoError(t, r.DropIfExists(ctx, "tags"))

		require.Len(t, rec.statements, 2)
		assert.Contains(t, rec.statements[0], `CREATE TABLE IF NOT EXISTS "tags" (`)
		assert.Equal(t, `DROP TABLE IF EXISTS "tags";`, rec.statements[1])
	})

	t.Run("oracle drops terminator", func(t *testing.T) {
		rec := &execRecorder{vendor: types.Oracle}
		r := NewRunner(rec, nil)
		require.NoError(t, r.DropIfExists(ctx, "tags"))
		require.NoError(t, r.Exec(ctx, "UPDATE tags SET name = 'x';  "))

		assert.NotContains(t, rec.statements[0], ";")
		assert.Equal(t, "UPDATE tags SET name = 'x'", rec.statements[1])
		assert.Equal(t, types.Oracle, r.Dialect().Name())
	})
}
