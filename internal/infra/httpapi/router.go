package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/telemetry"
)

const (
	ExecutePath = "/execute"
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Executor runs one tool request to completion.
type Executor interface {
	Execute(ctx context.Context, req domain.ToolRequest) domain.ExecuteResponse
	Sports() []string
}

type Options struct {
	Version     string
	CORSOrigins []string
	// MCPPath and MCPHandler mount the MCP surface when both are set.
	MCPPath    string
	MCPHandler http.Handler
	// Gatherer enables /metrics when non-nil.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

type HealthResponse struct {
	Status  string   `json:"status"`
	Service string   `json:"service"`
	Version string   `json:"version,omitempty"`
	Sports  []string `json:"sports"`
	Time    string   `json:"time"`
}

type notFoundResponse struct {
	Error     string            `json:"error"`
	Endpoints map[string]string `json:"endpoints"`
}

// NewRouter builds the inbound HTTP surface.
func NewRouter(exec Executor, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	engine := gin.New()
	engine.Use(gin.Recovery(), accessLog(logger), corsMiddleware(opts.CORSOrigins))

	engine.POST(ExecutePath, executeHandler(exec, logger))
	engine.GET(HealthPath, healthHandler(exec, opts.Version))
	if opts.Gatherer != nil {
		engine.GET(MetricsPath, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.MCPHandler != nil && opts.MCPPath != "" {
		engine.Any(opts.MCPPath, gin.WrapH(opts.MCPHandler))
	}
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, notFoundResponse{
			Error: "not found",
			Endpoints: map[string]string{
				"POST " + ExecutePath: "execute a tool: {\"tool\": string, \"params\": {\"sport\": string, ...}}",
				"GET " + HealthPath:   "service identity and liveness",
			},
		})
	})
	return engine
}

func executeHandler(exec Executor, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, meta := telemetry.EnsureRequestMeta(c.Request.Context(), requestMetaFromHeaders(c.Request.Header))
		for name, value := range telemetry.ResponseHeaders(meta) {
			c.Header(name, value)
		}

		var req domain.ToolRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			telemetry.LoggerWithRequest(ctx, logger).Warn("decode execute request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, domain.Fail(domain.CodeMissingParam, "invalid request body: "+err.Error()))
			return
		}

		resp := exec.Execute(ctx, req)
		status := http.StatusOK
		if !resp.Success {
			status = http.StatusInternalServerError
		}
		c.JSON(status, resp)
	}
}

func healthHandler(exec Executor, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Service: domain.ServiceName,
			Version: version,
			Sports:  exec.Sports(),
			Time:    time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func requestMetaFromHeaders(h http.Header) telemetry.RequestMeta {
	requestID := strings.TrimSpace(h.Get(telemetry.CorrelationIDHeader))
	if requestID == "" {
		requestID = strings.TrimSpace(h.Get(telemetry.RequestIDHeader))
	}
	return telemetry.RequestMeta{
		RequestID:   requestID,
		TraceParent: strings.TrimSpace(h.Get(telemetry.TraceParentHeader)),
		EvalRunID:   strings.TrimSpace(h.Get(telemetry.EvalRunIDHeader)),
		EvalCaseID:  strings.TrimSpace(h.Get(telemetry.EvalCaseIDHeader)),
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			telemetry.CorrelationIDHeader, telemetry.RequestIDHeader,
			telemetry.EvalRunIDHeader, telemetry.EvalCaseIDHeader, telemetry.TraceParentHeader,
			"Mcp-Session-Id", "Mcp-Protocol-Version",
		},
		ExposeHeaders: []string{
			telemetry.CorrelationIDHeader, telemetry.EvalRunIDHeader,
			telemetry.EvalCaseIDHeader, telemetry.TraceParentHeader, "Mcp-Session-Id",
		},
		MaxAge: 12 * time.Hour,
	}
	allowAll := len(origins) == 0
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			telemetry.DurationField(time.Since(start)),
		)
	}
}
