package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/config"
)

type App struct {
	logger *zap.Logger
}

// LogOverrides replace the configured log section when set from flags.
type LogOverrides struct {
	Level       string
	Development bool
}

type ServeConfig struct {
	ConfigPath string
	Log        LogOverrides
}

type ExecConfig struct {
	ConfigPath string
	Log        LogOverrides
	Request    domain.ToolRequest
	Out        io.Writer
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		logger: logger.Named("app"),
	}
}

func (a *App) Serve(ctx context.Context, cfg ServeConfig) error {
	runtimeCfg, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	logger, err := a.runtimeLogger(runtimeCfg.Log, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("config", cfg.ConfigPath),
		zap.String("cache_backend", runtimeCfg.Cache.Backend),
		zap.String("listen", runtimeCfg.Server.ListenAddress),
	)

	gateway, cleanup, err := InitializeGateway(ctx, runtimeCfg, logger)
	if err != nil {
		return fmt.Errorf("initialize gateway: %w", err)
	}
	defer cleanup()

	return gateway.Run(ctx)
}

// Exec runs a single tool call without the HTTP surface and writes the
// envelope to cfg.Out. A failed envelope is reported as an error after it is
// written.
func (a *App) Exec(ctx context.Context, cfg ExecConfig) error {
	runtimeCfg, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}
	runtimeCfg.Server.MCP.Enabled = false
	logger, err := a.runtimeLogger(runtimeCfg.Log, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gateway, cleanup, err := InitializeGateway(ctx, runtimeCfg, logger)
	if err != nil {
		return fmt.Errorf("initialize gateway: %w", err)
	}
	defer cleanup()

	resp := gateway.Execute(ctx, cfg.Request)
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if err := writeJSON(out, resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("tool %s failed: %s", cfg.Request.Tool, resp.Code)
	}
	return nil
}

func (a *App) runtimeLogger(base config.LogConfig, overrides LogOverrides) (*zap.Logger, error) {
	if overrides.Level != "" {
		base.Level = overrides.Level
	}
	if overrides.Development {
		base.Development = true
	}
	return NewLogger(base)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
