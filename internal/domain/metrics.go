package domain

import "time"

// ToolStatus labels the outcome of a tool execution.
type ToolStatus string

const (
	// ToolStatusSuccess indicates the envelope reported success.
	ToolStatusSuccess ToolStatus = "success"
	// ToolStatusError indicates the envelope reported failure.
	ToolStatusError ToolStatus = "error"
)

// CacheTier names where a reference lookup was served from.
type CacheTier string

const (
	// CacheTierLocal is the process-local map.
	CacheTierLocal CacheTier = "local"
	// CacheTierDurable is the durable key-value store.
	CacheTierDurable CacheTier = "durable"
	// CacheTierUpstream means the catalog was refetched from the platform.
	CacheTierUpstream CacheTier = "upstream"
)

// ToolMetric captures one dispatched tool call.
type ToolMetric struct {
	Sport    string
	Tool     string
	Status   ToolStatus
	Code     ErrorCode
	Duration time.Duration
}

// UpstreamMetric captures one upstream HTTP call.
type UpstreamMetric struct {
	Endpoint string
	Status   int
	Code     ErrorCode
	Duration time.Duration
}

// Metrics records operational metrics for dispatch, upstream calls and the reference cache.
type Metrics interface {
	ObserveTool(metric ToolMetric)
	ObserveUpstream(metric UpstreamMetric)
	ObserveCacheLookup(sport string, tier CacheTier)
	ObserveCacheParseFailure(sport string)
}
