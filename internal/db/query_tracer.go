package db

import (
	"context"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
)

const maxQueryDescription = 512

type querySpanKey struct{}

// cacheQueryTracer records a Sentry span per cache query when the request is
// already traced.
type cacheQueryTracer struct{}

func newQueryTracer() *cacheQueryTracer {
	return &cacheQueryTracer{}
}

func (cacheQueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	if sentry.SpanFromContext(ctx) == nil {
		return ctx
	}

	statement := compactSQL(data.SQL)
	span := sentry.StartSpan(ctx, "db.sql.query",
		sentry.WithDescription(statement),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	span.SetData("db.system", "postgresql")
	if verb := sqlVerb(statement); verb != "" {
		span.SetData("db.operation", verb)
	}
	if table := sqlTable(statement); table != "" {
		span.SetData("db.sql.table", table)
	}

	return context.WithValue(span.Context(), querySpanKey{}, span)
}

func (cacheQueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(querySpanKey{}).(*sentry.Span)
	if !ok || span == nil {
		return
	}
	defer span.Finish()

	if data.Err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("db.error", data.Err.Error())
		return
	}
	span.Status = sentry.SpanStatusOK
	if rows := data.CommandTag.RowsAffected(); rows >= 0 {
		span.SetData("db.rows_affected", rows)
	}
}

// compactSQL collapses whitespace and caps the length for span descriptions.
func compactSQL(sql string) string {
	compact := strings.Join(strings.Fields(sql), " ")
	if compact == "" {
		return "sql.query"
	}
	if len(compact) > maxQueryDescription {
		return compact[:maxQueryDescription]
	}
	return compact
}

func sqlVerb(statement string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(statement), " ")
	return strings.ToUpper(verb)
}

// sqlTable returns the table following FROM, INTO or UPDATE.
func sqlTable(statement string) string {
	fields := strings.Fields(statement)
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE":
			return strings.Trim(fields[i+1], `"(;`)
		}
	}
	return ""
}
