package database

import (
	"github.com/bowphp/framework-sub001/config"
	"github.com/bowphp/framework-sub001/database/dialect"
	"github.com/bowphp/framework-sub001/database/internal/builder"
	"github.com/bowphp/framework-sub001/database/schema"
	"github.com/bowphp/framework-sub001/logger"
)

// Builder is a single-statement query builder bound to one table.
type Builder = builder.Builder

// BuilderOption configures a Builder.
type BuilderOption = builder.Option

// Record is one result row keyed by column name.
type Record = builder.Row

// Records is an ordered result set.
type Records = builder.Rows

// Page is one page of a paginated SELECT.
type Page = builder.Page

// Aggregate selects the function run by Builder.Aggregate.
type Aggregate = builder.Aggregate

const (
	AggregateMax = builder.AggregateMax
	AggregateMin = builder.AggregateMin
	AggregateAvg = builder.AggregateAvg
	AggregateSum = builder.AggregateSum
)

// Builder options.
var (
	WithLogger      = builder.WithLogger
	WithPrimaryKey  = builder.WithPrimaryKey
	WithStrict      = builder.WithStrict
	WithStickyLimit = builder.WithStickyLimit
)

// DialectOf returns the dialect matching the vendor of conn. Unknown vendors
// fall back to the default dialect.
func DialectOf(conn Interface) dialect.Dialect {
	d, err := dialect.ByName(conn.DatabaseType())
	if err != nil {
		return dialect.Default()
	}
	return d
}

// Table starts a statement against table on conn, compiled for the
// connection's dialect.
func Table(conn Interface, table string, opts ...BuilderOption) *Builder {
	return builder.New(conn, DialectOf(conn), table, opts...)
}

// TableTx starts a statement against table inside tx. The dialect is taken
// from the connection that opened the transaction.
func TableTx(conn Interface, tx Tx, table string, opts ...BuilderOption) *Builder {
	return builder.New(tx, DialectOf(conn), table, opts...)
}

// BuilderOptions translates the builder section of cfg into options.
func BuilderOptions(cfg *config.DatabaseConfig, log logger.Logger) []BuilderOption {
	opts := []BuilderOption{WithLogger(log)}
	if cfg == nil {
		return opts
	}
	if cfg.Builder.Strict {
		opts = append(opts, WithStrict())
	}
	if cfg.Builder.StickyLimit {
		opts = append(opts, WithStickyLimit())
	}
	if cfg.Builder.PrimaryKey != "" {
		opts = append(opts, WithPrimaryKey(cfg.Builder.PrimaryKey))
	}
	return opts
}

// NewSchema starts a column specification for table, compiled for the
// connection's dialect.
func NewSchema(conn Interface, table string, mode schema.Mode, opts ...schema.Option) *schema.Table {
	opts = append([]schema.Option{schema.WithDialect(DialectOf(conn))}, opts...)
	return schema.New(table, mode, opts...)
}
