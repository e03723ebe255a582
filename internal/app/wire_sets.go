//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
)

var CoreInfraSet = wire.NewSet(
	NewMetricsRegistry,
	NewMetrics,
	NewUpstreamClient,
	NewKVStore,
	NewCatalogCache,
)

var ToolSet = wire.NewSet(
	NewSportRegistry,
	NewDispatcher,
	NewMCPServer,
	NewHTTPHandler,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	ToolSet,
	NewGateway,
)
