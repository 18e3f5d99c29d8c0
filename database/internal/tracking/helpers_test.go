package tracking

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/bowphp/framework-sub001/database/internal/sqlconn"
)

const (
	querySelectUsers  = "SELECT * FROM users WHERE id = $1"
	queryInsertUsers  = "INSERT INTO users (name) VALUES ($1)"
	queryDeleteOrders = "DELETE FROM orders WHERE id = 1"
)

func newMockDB(t *testing.T, vendor string) (*sqlconn.Conn, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlconn.New(db, vendor, nil), mock
}

// setupTracer installs an in-memory tracer provider for the test.
func setupTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	original := otel.GetTracerProvider()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(original)
	})
	return exporter
}

// setupMeter installs a manual-reader meter provider and resets the cached instruments.
func setupMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	original := otel.GetMeterProvider()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	resetInstruments()
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		otel.SetMeterProvider(original)
		resetInstruments()
	})
	return reader
}

func resetInstruments() {
	instrumentsOnce = sync.Once{}
	dbInstruments = nil
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func gaugeInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok, "metric %s is not an int64 gauge", m.Name)
	require.NotEmpty(t, gauge.DataPoints)
	return gauge.DataPoints[0].Value
}
