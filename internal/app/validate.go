package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fantasygw/internal/infra/config"
)

type ValidateConfig struct {
	ConfigPath string
	// Print writes the effective configuration as YAML. Secrets are omitted.
	Print bool
	Out   io.Writer
}

// ValidateConfig loads and validates the configuration without opening any
// store or listener.
func (a *App) ValidateConfig(ctx context.Context, cfg ValidateConfig) error {
	runtimeCfg, err := config.NewLoader(a.logger).Load(ctx, cfg.ConfigPath)
	if err != nil {
		return err
	}

	a.logger.Info("configuration validated",
		zap.String("config", cfg.ConfigPath),
		zap.String("cache_backend", runtimeCfg.Cache.Backend),
		zap.Bool("mcp", runtimeCfg.Server.MCP.Enabled),
	)

	if !cfg.Print || cfg.Out == nil {
		return nil
	}
	data, err := yaml.Marshal(runtimeCfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = cfg.Out.Write(data)
	return err
}
