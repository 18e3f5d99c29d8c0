package migration

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database"
	"github.com/bowphp/framework-sub001/database/schema"
	"github.com/bowphp/framework-sub001/database/types"
	"github.com/bowphp/framework-sub001/logger"
)

const (
	defaultTable   = "migrations"
	defaultTimeout = 5 * time.Minute

	colMigration = "migration"
	colBatch     = "batch"
	colRunID     = "run_id"
)

// Status describes one registered migration.
type Status struct {
	Name    string
	Applied bool
	// Batch is 0 for pending migrations.
	Batch int
}

// Migrator applies registered migrations in batches. Every Migrate call
// that applies something opens a new batch, and Rollback reverts the last
// batch.
type Migrator struct {
	conn       types.Interface
	log        logger.Logger
	table      string
	timeout    time.Duration
	env        string
	autorun    bool
	migrations []Migration
	newRunID   func() uuid.UUID
}

// New creates a Migrator on conn configured by the migration section of cfg.
func New(conn types.Interface, cfg *config.Config, log logger.Logger) *Migrator {
	if log == nil {
		log = logger.Nop()
	}
	m := &Migrator{
		conn:     conn,
		log:      log,
		table:    defaultTable,
		timeout:  defaultTimeout,
		newRunID: uuid.New,
	}
	if cfg != nil {
		if cfg.Migration.Table != "" {
			m.table = cfg.Migration.Table
		}
		if cfg.Migration.Timeout > 0 {
			m.timeout = cfg.Migration.Timeout
		}
		m.env = cfg.App.Env
		m.autorun = cfg.Migration.AutoRun
	}
	return m
}

// Register adds migrations. Names must be unique.
func (m *Migrator) Register(migrations ...Migration) error {
	for _, mig := range migrations {
		if m.find(mig.Name()) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateMigration, mig.Name())
		}
		m.migrations = append(m.migrations, mig)
	}
	slices.SortFunc(m.migrations, func(a, b Migration) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return nil
}

func (m *Migrator) find(name string) Migration {
	for _, mig := range m.migrations {
		if mig.Name() == name {
			return mig
		}
	}
	return nil
}

func (m *Migrator) history() *database.Builder {
	return database.Table(m.conn, m.table, database.WithLogger(m.log))
}

// ensureHistory creates the history table when it does not exist.
func (m *Migrator) ensureHistory(ctx context.Context) error {
	return NewRunner(m.conn, m.log).Create(ctx, m.table, func(t *schema.Table) {
		t.AddIncrements("id").
			AddString(colMigration, schema.ColumnOptions{Unique: true}).
			AddInteger(colBatch).
			AddUUID(colRunID).
			AddDatetime("created_at", schema.ColumnOptions{Default: schema.CurrentTimestamp})
	})
}

// applied maps migration names to their batch.
func (m *Migrator) applied(ctx context.Context) (map[string]int, error) {
	rows, err := m.history().Select(colMigration, colBatch).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[fmt.Sprint(row[colMigration])] = toInt(row[colBatch])
	}
	return out, nil
}

func (m *Migrator) lastBatch(ctx context.Context) (int, error) {
	last, err := m.history().Max(ctx, colBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to read last migration batch: %w", err)
	}
	return int(last), nil
}

// Migrate applies every pending migration in one new batch and returns the
// names it applied.
func (m *Migrator) Migrate(ctx context.Context) ([]string, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migration history table: %w", err)
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	last, err := m.lastBatch(ctx)
	if err != nil {
		return nil, err
	}

	batch := last + 1
	runID := m.newRunID()
	var done []string
	for _, mig := range m.migrations {
		if _, ok := applied[mig.Name()]; ok {
			continue
		}
		ran, err := m.apply(ctx, mig, batch, runID)
		if err != nil {
			return done, err
		}
		if ran {
			done = append(done, mig.Name())
		}
	}

	if len(done) == 0 {
		m.log.Info().Msg("Nothing to migrate")
		return nil, nil
	}
	m.log.Info().Int("batch", batch).Int("count", len(done)).Str("run_id", runID.String()).Msg("Migrations applied")
	return done, nil
}

// apply runs one migration and records it. It reports false when another
// process recorded the migration after the history was read.
func (m *Migrator) apply(ctx context.Context, mig Migration, batch int, runID uuid.UUID) (bool, error) {
	recorded, err := m.history().Exists(ctx, colMigration, mig.Name())
	if err != nil {
		return false, fmt.Errorf("failed to read migration history: %w", err)
	}
	if recorded {
		m.log.Debug().Str("migration", mig.Name()).Msg("Migration already recorded, skipping")
		return false, nil
	}

	start := time.Now()
	if err := m.step(ctx, mig, mig.Up); err != nil {
		m.log.Error().Err(err).Str("migration", mig.Name()).Msg("Migration failed")
		return false, fmt.Errorf("migration %s failed: %w", mig.Name(), err)
	}

	_, err = m.history().Insert(ctx, map[string]any{
		colMigration: mig.Name(),
		colBatch:     batch,
		colRunID:     runID,
	})
	if err != nil {
		return false, fmt.Errorf("failed to record migration %s: %w", mig.Name(), err)
	}

	m.log.Info().Str("migration", mig.Name()).Int("batch", batch).Dur("duration", time.Since(start)).Msg("Migrated")
	return true, nil
}

func (m *Migrator) step(ctx context.Context, mig Migration, run func(context.Context, *Runner) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return run(stepCtx, NewRunner(m.conn, m.log.WithFields(map[string]any{"migration": mig.Name()})))
}

// Rollback reverts the last batch in reverse order and returns the names it
// reverted.
func (m *Migrator) Rollback(ctx context.Context) ([]string, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migration history table: %w", err)
	}
	batch, err := m.lastBatch(ctx)
	if err != nil {
		return nil, err
	}
	if batch == 0 {
		m.log.Info().Msg("Nothing to roll back")
		return nil, nil
	}

	rows, err := m.history().Where(colBatch, batch).OrderBy("id", "desc").Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration batch %d: %w", batch, err)
	}

	var reverted []string
	for _, row := range rows {
		name := fmt.Sprint(row[colMigration])
		mig := m.find(name)
		if mig == nil {
			return reverted, fmt.Errorf("%w: %s", ErrUnknownMigration, name)
		}
		if err := m.step(ctx, mig, mig.Down); err != nil {
			return reverted, fmt.Errorf("rollback of %s failed: %w", name, err)
		}
		if _, err := m.history().Remove(ctx, colMigration, name); err != nil {
			return reverted, fmt.Errorf("failed to forget migration %s: %w", name, err)
		}
		m.log.Info().Str("migration", name).Int("batch", batch).Msg("Rolled back")
		reverted = append(reverted, name)
	}
	return reverted, nil
}

// Reset rolls back every batch.
func (m *Migrator) Reset(ctx context.Context) ([]string, error) {
	var all []string
	for {
		reverted, err := m.Rollback(ctx)
		all = append(all, reverted...)
		if err != nil || len(reverted) == 0 {
			return all, err
		}
	}
}

// Status lists every registered migration with its batch.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	if err := m.ensureHistory(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migration history table: %w", err)
	}
	applied, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(m.migrations))
	for _, mig := range m.migrations {
		batch, ok := applied[mig.Name()]
		out = append(out, Status{Name: mig.Name(), Applied: ok, Batch: batch})
	}
	return out, nil
}

// Pending returns the names of the migrations not applied yet.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	statuses, err := m.Status(ctx)
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, s := range statuses {
		if !s.Applied {
			pending = append(pending, s.Name)
		}
	}
	return pending, nil
}

// RunAtStartup migrates in the development environment or when autorun is
// configured. Elsewhere it only reports pending migrations.
func (m *Migrator) RunAtStartup(ctx context.Context) error {
	if m.env == config.EnvDevelopment || m.autorun {
		m.log.Info().Str("env", m.env).Msg("Running automatic migrations")
		_, err := m.Migrate(ctx)
		return err
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		m.log.Warn().Str("env", m.env).Int("pending", len(pending)).Msgf("Pending migrations: %s", strings.Join(pending, ", "))
		return nil
	}
	m.log.Info().Str("env", m.env).Msg("Database schema is up to date")
	return nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int32:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		var out int
		_, _ = fmt.Sscan(n, &out)
		return out
	default:
		var out int
		_, _ = fmt.Sscan(fmt.Sprint(n), &out)
		return out
	}
}
