package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/bowphp/framework-sub001/database/types"
)

const (
	defaultOperation = "query"
	unknownTable     = "unknown"

	tracerName        = "bow/database"
	maxQueryAttrLen   = 2000
	attrDBSystemName  = "db.system.name"
	prefixPrepare     = "PREPARE: "
	prefixTxPrepare   = "TX_PREPARE: "
	opBegin           = "BEGIN"
	opBeginTx         = "BEGIN_TX"
	opCommit          = "TX_COMMIT"
	opRollback        = "TX_ROLLBACK"
	stmtQueryPrefix   = "STMT_QUERY"
	stmtExecPrefix    = "STMT_EXEC"
	stmtQueryRowLabel = "STMT_QUERY_ROW"
)

// Operation describes one finished database call.
type Operation struct {
	Query        string
	Args         []any
	Start        time.Time
	RowsAffected int64
	Err          error
}

// Track records op as a span, as metrics and as a log entry. Failures other
// than sql.ErrNoRows are logged at error level, operations slower than the
// configured threshold at warn level, everything else at debug level.
// A nil tc or a tc without a logger makes Track a no-op.
func Track(ctx context.Context, tc *Context, op Operation) {
	if tc == nil || tc.Logger == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	elapsed := time.Since(op.Start)
	startSpan(ctx, tc, op)
	recordMetrics(ctx, tc, op.Query, elapsed, op.RowsAffected, op.Err)

	fields := map[string]any{
		"vendor":      tc.Vendor,
		"duration_ms": elapsed.Milliseconds(),
		"query":       TruncateString(op.Query, tc.Settings.MaxQueryLength()),
	}
	if tc.Settings.LogQueryParameters() && len(op.Args) > 0 {
		fields["args"] = SanitizeArgs(op.Args, tc.Settings.MaxQueryLength())
	}
	log := tc.Logger.WithContext(ctx).WithFields(fields)

	switch {
	case op.Err != nil && errors.Is(op.Err, sql.ErrNoRows):
		log.Debug().Msg("Database operation returned no rows")
	case op.Err != nil:
		log.Error().Err(op.Err).Msg("Database operation error")
	case elapsed > tc.Settings.SlowQueryThreshold():
		log.Warn().Dur("threshold", tc.Settings.SlowQueryThreshold()).Msgf("Slow database operation detected (%s)", elapsed)
	default:
		log.Debug().Msg("Database operation executed")
	}
}

func rowsAffected(result sql.Result, err error) int64 {
	if result == nil || err != nil {
		return 0
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// TruncateString shortens value to maxLen runes, ending with "..." when there
// is room for it. A non-positive maxLen leaves value untouched.
func TruncateString(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	r := []rune(value)
	if len(r) <= maxLen {
		return value
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SanitizeArgs renders bound arguments for logging. Byte slices are replaced
// by their length and everything else is printed and truncated to maxLen.
func SanitizeArgs(args []any, maxLen int) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			out[i] = TruncateString(v, maxLen)
		case []byte:
			out[i] = fmt.Sprintf("<bytes len=%d>", len(v))
		case nil:
			out[i] = nil
		default:
			out[i] = TruncateString(fmt.Sprintf("%v", v), maxLen)
		}
	}
	return out
}

func startSpan(ctx context.Context, tc *Context, op Operation) {
	operation := operationName(op.Query)

	_, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithTimestamp(op.Start),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String(attrDBSystemName, systemName(tc.Vendor)),
		semconv.DBQueryText(TruncateString(op.Query, maxQueryAttrLen)),
	}
	if operation != defaultOperation {
		attrs = append(attrs, semconv.DBOperationName(operation))
	}
	if table := tableName(op.Query); table != unknownTable {
		attrs = append(attrs, semconv.DBCollectionName(table))
	}
	if tc.Namespace != "" {
		attrs = append(attrs, semconv.DBNamespace(tc.Namespace))
	}
	if tc.ServerAddress != "" {
		attrs = append(attrs, semconv.ServerAddress(tc.ServerAddress))
	}
	if tc.ServerPort > 0 {
		attrs = append(attrs, semconv.ServerPort(tc.ServerPort))
	}
	span.SetAttributes(attrs...)

	if op.Err != nil && !errors.Is(op.Err, sql.ErrNoRows) {
		span.RecordError(op.Err)
		span.SetStatus(codes.Error, op.Err.Error())
	}
}

// operationName maps a tracked query label to a lowercase operation name.
func operationName(query string) string {
	query = strings.TrimSpace(query)
	switch {
	case query == "":
		return defaultOperation
	case strings.HasPrefix(query, prefixPrepare), strings.HasPrefix(query, prefixTxPrepare):
		return "prepare"
	case query == opBegin, query == opBeginTx:
		return "begin"
	case query == opCommit:
		return "commit"
	case query == opRollback:
		return "rollback"
	}

	query = stripStatementLabel(query)
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return defaultOperation
	}
	switch op := strings.ToLower(fields[0]); op {
	case "select", "insert", "update", "delete", "create", "drop", "alter", "truncate":
		return op
	default:
		return defaultOperation
	}
}

// stripStatementLabel removes the "STMT_*: " label prepended to prepared statement queries.
func stripStatementLabel(query string) string {
	if !strings.HasPrefix(query, "STMT_") {
		return query
	}
	if _, rest, ok := strings.Cut(query, ": "); ok {
		return rest
	}
	return query
}

var tablePatterns = map[string]*regexp.Regexp{
	"SELECT": regexp.MustCompile("(?i)\\bFROM\\s+(?:[`\"]?\\w+[`\"]?\\.)?[`\"]?(\\w+)[`\"]?"),
	"INSERT": regexp.MustCompile("(?i)INSERT\\s+INTO\\s+(?:[`\"]?\\w+[`\"]?\\.)?[`\"]?(\\w+)[`\"]?"),
	"UPDATE": regexp.MustCompile("(?i)UPDATE\\s+(?:[`\"]?\\w+[`\"]?\\.)?[`\"]?(\\w+)[`\"]?"),
	"DELETE": regexp.MustCompile("(?i)DELETE\\s+FROM\\s+(?:[`\"]?\\w+[`\"]?\\.)?[`\"]?(\\w+)[`\"]?"),
}

// tableName returns the first table a DML statement touches, or "unknown".
func tableName(query string) string {
	query = strings.TrimSpace(stripStatementLabel(strings.TrimPrefix(strings.TrimSpace(query), prefixPrepare)))
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return unknownTable
	}
	pattern, ok := tablePatterns[strings.ToUpper(fields[0])]
	if !ok {
		return unknownTable
	}
	if m := pattern.FindStringSubmatch(query); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return unknownTable
}

// systemName maps a vendor identifier to its OpenTelemetry db.system.name value.
func systemName(vendor string) string {
	switch v := strings.ToLower(vendor); v {
	case "postgres", "pgsql", types.PostgreSQL:
		return types.PostgreSQL
	case types.Oracle:
		return "oracle.db"
	case "sqlite3", types.SQLite:
		return types.SQLite
	default:
		return v
	}
}
