package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "bow/database"

	metricCalls        = "db.client.calls"
	metricDuration     = "db.client.operation.duration"
	metricRowsAffected = "db.rows.affected"
	metricPoolActive   = "db.connection.pool.active"
	metricPoolIdle     = "db.connection.pool.idle"
	metricPoolTotal    = "db.connection.pool.total"

	attrOperation = "db.operation.name"
	attrTable     = "db.sql.table"
)

// instruments are created lazily from the global meter provider.
type instruments struct {
	meter    metric.Meter
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	rows     metric.Int64Counter
}

var (
	instrumentsOnce sync.Once
	dbInstruments   *instruments
)

func logMetricError(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", name, err)
	}
}

func getInstruments() *instruments {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(meterName)
		in := &instruments{meter: meter}

		var err error
		in.calls, err = meter.Int64Counter(metricCalls,
			metric.WithDescription("Total number of database client calls"))
		logMetricError(metricCalls, err)

		in.duration, err = meter.Float64Histogram(metricDuration,
			metric.WithDescription("Duration of database operations in milliseconds"),
			metric.WithUnit("ms"))
		logMetricError(metricDuration, err)

		in.rows, err = meter.Int64Counter(metricRowsAffected,
			metric.WithDescription("Number of rows affected by database operations"))
		logMetricError(metricRowsAffected, err)

		dbInstruments = in
	})
	return dbInstruments
}

func recordMetrics(ctx context.Context, tc *Context, query string, elapsed time.Duration, affected int64, err error) {
	in := getInstruments()
	if in == nil {
		return
	}

	failed := err != nil && !errors.Is(err, sql.ErrNoRows)
	attrs := []attribute.KeyValue{
		attribute.String(attrDBSystemName, systemName(tc.Vendor)),
		attribute.String(attrOperation, operationName(query)),
		attribute.String(attrTable, tableName(query)),
	}

	if in.calls != nil {
		callAttrs := append(append([]attribute.KeyValue{}, attrs...), attribute.Bool("error", failed))
		in.calls.Add(ctx, 1, metric.WithAttributes(callAttrs...))
	}
	if in.duration != nil {
		in.duration.Record(ctx, float64(elapsed.Nanoseconds())/1e6, metric.WithAttributes(attrs...))
	}
	if in.rows != nil && affected > 0 && !failed {
		in.rows.Add(ctx, affected, metric.WithAttributes(attrs...))
	}
}

// StatsProvider is the part of a connection pool metrics are read from.
type StatsProvider interface {
	Stats() (map[string]any, error)
}

// RegisterPoolMetrics reports the pool of conn through observable gauges for
// active, idle and maximum connections. The returned function unregisters
// the callback and is safe to call when registration failed.
func RegisterPoolMetrics(conn StatsProvider, vendor string) func() {
	in := getInstruments()
	if in == nil || conn == nil {
		return func() {}
	}

	active, errActive := in.meter.Int64ObservableGauge(metricPoolActive,
		metric.WithDescription("Number of active database connections"))
	logMetricError(metricPoolActive, errActive)
	idle, errIdle := in.meter.Int64ObservableGauge(metricPoolIdle,
		metric.WithDescription("Number of idle database connections"))
	logMetricError(metricPoolIdle, errIdle)
	total, errTotal := in.meter.Int64ObservableGauge(metricPoolTotal,
		metric.WithDescription("Maximum number of database connections configured"))
	logMetricError(metricPoolTotal, errTotal)
	if errActive != nil || errIdle != nil || errTotal != nil {
		return func() {}
	}

	attrs := metric.WithAttributes(attribute.String(attrDBSystemName, systemName(vendor)))
	registration, err := in.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats, err := conn.Stats()
		if err != nil {
			return nil
		}
		o.ObserveInt64(active, statInt(stats, "in_use"), attrs)
		o.ObserveInt64(idle, statInt(stats, "idle"), attrs)
		o.ObserveInt64(total, statInt(stats, "max_open_connections"), attrs)
		return nil
	}, active, idle, total)
	if err != nil {
		logMetricError("pool_metrics_callback", err)
		return func() {}
	}

	return func() {
		if err := registration.Unregister(); err != nil {
			logMetricError("pool_metrics_unregister", err)
		}
	}
}

// statInt reads a numeric pool statistic, returning 0 for missing or non-numeric values.
func statInt(stats map[string]any, key string) int64 {
	switch v := stats[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint32:
		return int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0
		}
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
