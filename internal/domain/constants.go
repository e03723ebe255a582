package domain

import "fmt"

const (
	ServiceName                = "fantasygw"
	DefaultListenAddress       = "0.0.0.0:8787"
	DefaultUpstreamBaseURL     = "https://api.sleeper.app/v1"
	DefaultUpstreamUserAgent   = "fantasygw/1.0 (+https://github.com/fantasygw)"
	DefaultUpstreamTimeoutSecs = 10
	DefaultToolTimeoutSeconds  = 30
	DefaultCacheTTLSeconds     = 24 * 60 * 60
	DefaultCacheBackend        = "bolt"
	DefaultCachePath           = "data/fantasygw-cache.db"
	DefaultMCPPath             = "/mcp"
	DefaultFreeAgentCount      = 25
	MaxFreeAgentCount          = 100
	DefaultSearchCount         = 10
	MaxSearchCount             = 25
	DefaultTransactionCount    = 50
	MaxTransactionCount        = 100
	PlatformSleeper            = "sleeper"
	playerCatalogKeyVersion    = "v1"
)

// PlayerCatalogKey is the durable cache key for a sport's player catalog.
func PlayerCatalogKey(sport string) string {
	return fmt.Sprintf("players:%s:%s", sport, playerCatalogKeyVersion)
}
