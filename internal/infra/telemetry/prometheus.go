package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fantasygw/internal/domain"
)

type PrometheusMetrics struct {
	toolDuration       *prometheus.HistogramVec
	toolErrors         *prometheus.CounterVec
	upstreamDuration   *prometheus.HistogramVec
	cacheLookups       *prometheus.CounterVec
	cacheParseFailures *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fantasygw_tool_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"sport", "tool", "status"},
		),
		toolErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fantasygw_tool_errors_total",
				Help: "Total number of failed tool executions by error code",
			},
			[]string{"sport", "tool", "code"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fantasygw_upstream_request_duration_seconds",
				Help:    "Duration of upstream platform requests in seconds",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "status"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fantasygw_reference_cache_lookups_total",
				Help: "Reference catalog lookups by the tier that served them",
			},
			[]string{"sport", "tier"},
		),
		cacheParseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fantasygw_reference_cache_parse_failures_total",
				Help: "Durable reference cache values that failed to decode",
			},
			[]string{"sport"},
		),
	}
}

func (p *PrometheusMetrics) ObserveTool(metric domain.ToolMetric) {
	p.toolDuration.WithLabelValues(metric.Sport, metric.Tool, string(metric.Status)).Observe(metric.Duration.Seconds())
	if metric.Status == domain.ToolStatusError {
		p.toolErrors.WithLabelValues(metric.Sport, metric.Tool, string(metric.Code)).Inc()
	}
}

func (p *PrometheusMetrics) ObserveUpstream(metric domain.UpstreamMetric) {
	status := "error"
	if metric.Status > 0 {
		status = strconv.Itoa(metric.Status)
	} else if metric.Code.HasSuffix(domain.SuffixTimeout) {
		status = "timeout"
	}
	p.upstreamDuration.WithLabelValues(metric.Endpoint, status).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCacheLookup(sport string, tier domain.CacheTier) {
	p.cacheLookups.WithLabelValues(sport, string(tier)).Inc()
}

func (p *PrometheusMetrics) ObserveCacheParseFailure(sport string) {
	p.cacheParseFailures.WithLabelValues(sport).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
