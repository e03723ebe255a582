package telemetry

import (
	"fantasygw/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveTool(_ domain.ToolMetric) {}

func (n *NoopMetrics) ObserveUpstream(_ domain.UpstreamMetric) {}

func (n *NoopMetrics) ObserveCacheLookup(_ string, _ domain.CacheTier) {}

func (n *NoopMetrics) ObserveCacheParseFailure(_ string) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
