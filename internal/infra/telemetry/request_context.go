package telemetry

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	RequestIDHeader     = "X-Request-ID"
	EvalRunIDHeader     = "X-Eval-Run-ID"
	EvalCaseIDHeader    = "X-Eval-Case-ID"
	TraceParentHeader   = "traceparent"
)

type requestContextKey struct{}

// RequestMeta carries the correlation id plus any caller-supplied tracing and
// evaluation identifiers for one request.
type RequestMeta struct {
	RequestID   string
	TraceID     string
	SpanID      string
	TraceParent string
	EvalRunID   string
	EvalCaseID  string
}

func (m RequestMeta) IsZero() bool {
	return m.RequestID == "" && m.TraceID == "" && m.SpanID == "" &&
		m.EvalRunID == "" && m.EvalCaseID == ""
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	if meta.IsZero() {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestContextKey{}, meta)
}

func RequestMetaFromContext(ctx context.Context) (RequestMeta, bool) {
	if ctx == nil {
		return RequestMeta{}, false
	}
	meta, ok := ctx.Value(requestContextKey{}).(RequestMeta)
	return meta, ok && !meta.IsZero()
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok || meta.RequestID == "" {
		return "", false
	}
	return meta.RequestID, true
}

func NewRequestID() string {
	return uuid.NewString()
}

func TraceSpanFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return "", ""
	}
	return spanCtx.TraceID().String(), spanCtx.SpanID().String()
}

// ContextWithTraceParent installs the remote span described by a W3C
// traceparent header. Malformed headers leave ctx untouched.
func ContextWithTraceParent(ctx context.Context, header string) (context.Context, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return ctx, false
	}
	carrier := propagation.HeaderCarrier(http.Header{})
	carrier.Set(TraceParentHeader, header)
	spanCtx := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), carrier))
	if !spanCtx.IsValid() {
		return ctx, false
	}
	return trace.ContextWithRemoteSpanContext(ctx, spanCtx), true
}

// EnsureRequestMeta merges incoming identifiers with what ctx already holds.
// Only the correlation id is generated; tracing ids are propagated, never invented.
func EnsureRequestMeta(ctx context.Context, incoming RequestMeta) (context.Context, RequestMeta) {
	if ctx == nil {
		ctx = context.Background()
	}
	meta := incoming
	if existing, ok := RequestMetaFromContext(ctx); ok {
		if meta.RequestID == "" {
			meta.RequestID = existing.RequestID
		}
		if meta.EvalRunID == "" {
			meta.EvalRunID = existing.EvalRunID
		}
		if meta.EvalCaseID == "" {
			meta.EvalCaseID = existing.EvalCaseID
		}
		if meta.TraceParent == "" {
			meta.TraceParent = existing.TraceParent
		}
	}
	if meta.TraceParent != "" {
		var ok bool
		if ctx, ok = ContextWithTraceParent(ctx, meta.TraceParent); !ok {
			meta.TraceParent = ""
		}
	}
	if meta.RequestID == "" {
		meta.RequestID = NewRequestID()
	}
	meta.TraceID, meta.SpanID = TraceSpanFromContext(ctx)
	return WithRequestMeta(ctx, meta), meta
}

// ResponseHeaders lists the identifiers echoed back to the caller.
func ResponseHeaders(meta RequestMeta) map[string]string {
	headers := map[string]string{}
	if meta.RequestID != "" {
		headers[CorrelationIDHeader] = meta.RequestID
	}
	if meta.EvalRunID != "" {
		headers[EvalRunIDHeader] = meta.EvalRunID
	}
	if meta.EvalCaseID != "" {
		headers[EvalCaseIDHeader] = meta.EvalCaseID
	}
	if meta.TraceParent != "" {
		headers[TraceParentHeader] = meta.TraceParent
	}
	return headers
}

func RequestFields(meta RequestMeta) []zap.Field {
	if meta.IsZero() {
		return nil
	}
	fields := make([]zap.Field, 0, 5)
	if meta.RequestID != "" {
		fields = append(fields, RequestIDField(meta.RequestID))
	}
	if meta.TraceID != "" {
		fields = append(fields, TraceIDField(meta.TraceID))
	}
	if meta.SpanID != "" {
		fields = append(fields, SpanIDField(meta.SpanID))
	}
	if meta.EvalRunID != "" {
		fields = append(fields, zap.String(FieldEvalRunID, meta.EvalRunID))
	}
	if meta.EvalCaseID != "" {
		fields = append(fields, zap.String(FieldEvalCaseID, meta.EvalCaseID))
	}
	return fields
}

func RequestFieldsFromContext(ctx context.Context) []zap.Field {
	meta, ok := RequestMetaFromContext(ctx)
	if !ok {
		return nil
	}
	return RequestFields(meta)
}

func LoggerWithRequest(ctx context.Context, base *zap.Logger) *zap.Logger {
	logger := base
	if logger == nil {
		logger = zap.NewNop()
	}
	fields := RequestFieldsFromContext(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
