package config

import "time"

// Config is the normalized runtime configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Tools    ToolsConfig    `yaml:"tools"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	ListenAddress  string    `yaml:"listenAddress"`
	CORSOrigins    []string  `yaml:"corsOrigins"`
	MCP            MCPConfig `yaml:"mcp"`
	MetricsEnabled bool      `yaml:"metricsEnabled"`
}

type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type UpstreamConfig struct {
	BaseURL    string        `yaml:"baseURL"`
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"userAgent"`
	AuthHeader string        `yaml:"authHeader,omitempty"`
	// AuthToken is never printed.
	AuthToken string `yaml:"-"`
}

type CacheConfig struct {
	Backend  string        `yaml:"backend"`
	Path     string        `yaml:"path,omitempty"`
	DSN      string        `yaml:"-"`
	TTL      time.Duration `yaml:"ttl"`
	LocalTTL time.Duration `yaml:"localTTL"`
}

type ToolsConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}
