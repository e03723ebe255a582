package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldSport      = "sport"
	FieldTool       = "tool"
	FieldCode       = "code"
	FieldDurationMs = "duration_ms"
	FieldEndpoint   = "endpoint"
	FieldCacheTier  = "cache_tier"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
	FieldEvalRunID  = "eval_run_id"
	FieldEvalCaseID = "eval_case_id"
)

const (
	EventToolStart        = "tool_start"
	EventToolEnd          = "tool_end"
	EventToolError        = "tool_error"
	EventUpstreamError    = "upstream_error"
	EventCacheHit         = "cache_hit"
	EventCacheParseFailed = "cache_parse_failed"
	EventCacheRefresh     = "cache_refresh"
	EventCacheWriteFailed = "cache_write_failed"
	EventEnrichmentFailed = "enrichment_failed"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func SportField(sport string) zap.Field {
	return zap.String(FieldSport, sport)
}

func ToolField(tool string) zap.Field {
	return zap.String(FieldTool, tool)
}

func CodeField(code string) zap.Field {
	return zap.String(FieldCode, code)
}

func EndpointField(endpoint string) zap.Field {
	return zap.String(FieldEndpoint, endpoint)
}

func CacheTierField(tier string) zap.Field {
	return zap.String(FieldCacheTier, tier)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
