package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/config"
	"fantasygw/internal/infra/dispatch"
	"fantasygw/internal/infra/httpapi"
)

// Gateway is the fully wired runtime: the dispatcher plus the HTTP surface
// that fronts it.
type Gateway struct {
	cfg        config.Config
	logger     *zap.Logger
	dispatcher *dispatch.Dispatcher
	handler    http.Handler
}

func NewGateway(cfg config.Config, logger *zap.Logger, dispatcher *dispatch.Dispatcher, handler http.Handler) *Gateway {
	return &Gateway{
		cfg:        cfg,
		logger:     logger.Named("gateway"),
		dispatcher: dispatcher,
		handler:    handler,
	}
}

// Run serves HTTP until ctx is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("gateway starting",
		zap.String("version", Version),
		zap.Strings("sports", g.dispatcher.Sports()),
		zap.Int("tools", len(g.dispatcher.Tools())),
		zap.Bool("mcp", g.cfg.Server.MCP.Enabled),
	)
	return httpapi.Serve(ctx, g.cfg.Server.ListenAddress, g.handler, g.logger)
}

// Execute runs one tool call in-process.
func (g *Gateway) Execute(ctx context.Context, req domain.ToolRequest) domain.ExecuteResponse {
	return g.dispatcher.Execute(ctx, req)
}

// Handler exposes the HTTP surface.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}
