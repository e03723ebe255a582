//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"fantasygw/internal/infra/config"
)

func InitializeGateway(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Gateway, func(), error) {
	wire.Build(AppSet)
	return nil, nil, nil
}
