package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/sports"
	"fantasygw/internal/infra/telemetry"
)

// unresolvedLabel replaces caller-supplied sport and tool names in metric
// labels until they match a registered handler.
const unresolvedLabel = "unknown"

type Options struct {
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics domain.Metrics
}

// Dispatcher is the single entry point for tool calls. Execute always
// returns an envelope; no error or panic crosses it.
type Dispatcher struct {
	registry *sports.Registry
	timeout  time.Duration
	logger   *zap.Logger
	metrics  domain.Metrics
}

// ToolEntry names one callable (sport, tool) pair.
type ToolEntry struct {
	Sport       string
	Tool        string
	Description string
}

func New(registry *sports.Registry, opts Options) *Dispatcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultToolTimeoutSeconds) * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Dispatcher{
		registry: registry,
		timeout:  timeout,
		logger:   logger.Named("dispatch"),
		metrics:  metrics,
	}
}

func (d *Dispatcher) Execute(ctx context.Context, req domain.ToolRequest) domain.ExecuteResponse {
	start := time.Now()
	ctx, _ = telemetry.EnsureRequestMeta(ctx, telemetry.RequestMeta{})

	tool := strings.TrimSpace(req.Tool)
	params := req.Params
	params.Sport = params.NormalizedSport()

	logger := telemetry.LoggerWithRequest(ctx, d.logger).With(
		telemetry.SportField(params.Sport),
		telemetry.ToolField(tool),
	)
	logger.Info("tool call started", telemetry.EventField(telemetry.EventToolStart))

	resp, labels := d.execute(ctx, logger, tool, params)
	duration := time.Since(start)

	metric := domain.ToolMetric{
		Sport:    labels.sport,
		Tool:     labels.tool,
		Status:   domain.ToolStatusSuccess,
		Duration: duration,
	}
	if resp.Success {
		logger.Info("tool call finished",
			telemetry.EventField(telemetry.EventToolEnd),
			telemetry.DurationField(duration),
		)
	} else {
		metric.Status = domain.ToolStatusError
		metric.Code = resp.Code
		logger.Warn("tool call failed",
			telemetry.EventField(telemetry.EventToolError),
			telemetry.CodeField(string(resp.Code)),
			telemetry.DurationField(duration),
			zap.String("error", resp.Error),
		)
	}
	d.metrics.ObserveTool(metric)
	return resp
}

type metricLabels struct {
	sport string
	tool  string
}

func (d *Dispatcher) execute(ctx context.Context, logger *zap.Logger, tool string, params domain.ToolParams) (domain.ExecuteResponse, metricLabels) {
	labels := metricLabels{sport: unresolvedLabel, tool: unresolvedLabel}
	if tool == "" {
		return domain.FailFromError(domain.MissingParam("dispatch", "tool")), labels
	}
	if params.Sport == "" {
		return domain.FailFromError(domain.MissingParam("dispatch", "params.sport")), labels
	}
	sport, ok := d.registry.Lookup(params.Sport)
	if !ok {
		return domain.Fail(domain.CodeSportNotSupported, fmt.Sprintf(
			"sport %q is not supported (supported: %s)", params.Sport, strings.Join(d.registry.Names(), ", "))), labels
	}
	labels.sport = sport.Name()
	handler, ok := sport.Handler(tool)
	if !ok {
		return domain.Fail(domain.CodeUnknownTool, fmt.Sprintf("unknown tool %q for sport %q", tool, params.Sport)), labels
	}
	labels.tool = tool

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return invoke(callCtx, logger, handler, params), labels
}

func invoke(ctx context.Context, logger *zap.Logger, handler domain.ToolHandler, params domain.ToolParams) (resp domain.ExecuteResponse) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool handler panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			resp = domain.Fail(domain.CodeInternal, fmt.Sprintf("tool handler panicked: %v", r))
		}
	}()
	resp = handler(ctx, params)
	if !resp.Success && resp.Code == "" {
		resp.Code = domain.CodeInternal
	}
	return resp
}

// Tools lists every registered (sport, tool) pair ordered by sport then tool.
func (d *Dispatcher) Tools() []ToolEntry {
	var out []ToolEntry
	for _, sport := range d.registry.Sports() {
		specs := sport.Tools()
		sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
		for _, spec := range specs {
			out = append(out, ToolEntry{Sport: sport.Name(), Tool: spec.Name, Description: spec.Description})
		}
	}
	return out
}

// Sports lists the supported sport keys.
func (d *Dispatcher) Sports() []string {
	return d.registry.Names()
}
