package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/kvstore"
)

// EnvPrefix namespaces environment overrides, e.g. FANTASYGW_UPSTREAM_TIMEOUTSECONDS.
const EnvPrefix = "FANTASYGW"

type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Every key needs a default so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listenAddress", domain.DefaultListenAddress)
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("server.mcp.enabled", true)
	v.SetDefault("server.mcp.path", domain.DefaultMCPPath)
	v.SetDefault("server.metrics.enabled", true)
	v.SetDefault("upstream.baseURL", domain.DefaultUpstreamBaseURL)
	v.SetDefault("upstream.timeoutSeconds", domain.DefaultUpstreamTimeoutSecs)
	v.SetDefault("upstream.userAgent", domain.DefaultUpstreamUserAgent)
	v.SetDefault("upstream.authHeader", "")
	v.SetDefault("upstream.authToken", "")
	v.SetDefault("cache.backend", domain.DefaultCacheBackend)
	v.SetDefault("cache.path", domain.DefaultCachePath)
	v.SetDefault("cache.dsn", "")
	v.SetDefault("cache.ttlSeconds", domain.DefaultCacheTTLSeconds)
	v.SetDefault("cache.localTTLSeconds", 0)
	v.SetDefault("tools.timeoutSeconds", domain.DefaultToolTimeoutSeconds)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

type rawConfig struct {
	Server   rawServerConfig   `mapstructure:"server"`
	Upstream rawUpstreamConfig `mapstructure:"upstream"`
	Cache    rawCacheConfig    `mapstructure:"cache"`
	Tools    rawToolsConfig    `mapstructure:"tools"`
	Log      rawLogConfig      `mapstructure:"log"`
}

type rawServerConfig struct {
	ListenAddress string           `mapstructure:"listenAddress"`
	CORSOrigins   []string         `mapstructure:"corsOrigins"`
	MCP           rawMCPConfig     `mapstructure:"mcp"`
	Metrics       rawMetricsConfig `mapstructure:"metrics"`
}

type rawMCPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type rawMetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type rawUpstreamConfig struct {
	BaseURL        string `mapstructure:"baseURL"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
	UserAgent      string `mapstructure:"userAgent"`
	AuthHeader     string `mapstructure:"authHeader"`
	AuthToken      string `mapstructure:"authToken"`
}

type rawCacheConfig struct {
	Backend         string `mapstructure:"backend"`
	Path            string `mapstructure:"path"`
	DSN             string `mapstructure:"dsn"`
	TTLSeconds      int    `mapstructure:"ttlSeconds"`
	LocalTTLSeconds int    `mapstructure:"localTTLSeconds"`
}

type rawToolsConfig struct {
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type rawLogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads the optional YAML file at path, applies environment overrides
// and validates the result. An empty path means defaults plus environment.
func (l *Loader) Load(ctx context.Context, path string) (Config, error) {
	v := newViper()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		expanded, missing := expandEnv(string(data))
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
		}
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}

	cfg, errs := normalize(raw)
	if len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

func normalize(raw rawConfig) (Config, []string) {
	var errs []string

	listen := strings.TrimSpace(raw.Server.ListenAddress)
	if listen == "" {
		errs = append(errs, "server.listenAddress is required")
	}

	origins := make([]string, 0, len(raw.Server.CORSOrigins))
	for _, origin := range raw.Server.CORSOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Sprintf("server.corsOrigins: %q must be \"*\" or start with http:// or https://", origin))
			continue
		}
		origins = append(origins, origin)
	}

	mcpPath := strings.TrimSpace(raw.Server.MCP.Path)
	if raw.Server.MCP.Enabled && !strings.HasPrefix(mcpPath, "/") {
		errs = append(errs, fmt.Sprintf("server.mcp.path: %q must start with /", mcpPath))
	}

	baseURL := strings.TrimRight(strings.TrimSpace(raw.Upstream.BaseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		errs = append(errs, fmt.Sprintf("upstream.baseURL: %q must be an http(s) URL", baseURL))
	}
	if raw.Upstream.TimeoutSeconds <= 0 {
		errs = append(errs, "upstream.timeoutSeconds must be > 0")
	}
	authHeader := strings.TrimSpace(raw.Upstream.AuthHeader)
	if authHeader != "" && strings.TrimSpace(raw.Upstream.AuthToken) == "" {
		errs = append(errs, "upstream.authToken is required when upstream.authHeader is set")
	}

	backend := strings.ToLower(strings.TrimSpace(raw.Cache.Backend))
	switch backend {
	case kvstore.BackendBolt:
		if strings.TrimSpace(raw.Cache.Path) == "" {
			errs = append(errs, "cache.path is required for the bolt backend")
		}
	case kvstore.BackendPostgres:
		if strings.TrimSpace(raw.Cache.DSN) == "" {
			errs = append(errs, "cache.dsn is required for the postgres backend")
		}
	case kvstore.BackendMemory:
	default:
		errs = append(errs, fmt.Sprintf("cache.backend: unsupported value %q (bolt, postgres, memory)", raw.Cache.Backend))
	}
	if raw.Cache.TTLSeconds <= 0 {
		errs = append(errs, "cache.ttlSeconds must be > 0")
	}
	if raw.Cache.LocalTTLSeconds < 0 {
		errs = append(errs, "cache.localTTLSeconds must be >= 0")
	}
	if raw.Cache.LocalTTLSeconds > raw.Cache.TTLSeconds {
		errs = append(errs, "cache.localTTLSeconds must not exceed cache.ttlSeconds")
	}
	localTTL := raw.Cache.LocalTTLSeconds
	if localTTL == 0 {
		localTTL = raw.Cache.TTLSeconds
	}

	if raw.Tools.TimeoutSeconds <= 0 {
		errs = append(errs, "tools.timeoutSeconds must be > 0")
	}

	level := strings.ToLower(strings.TrimSpace(raw.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level: unsupported value %q (debug, info, warn, error)", raw.Log.Level))
	}

	return Config{
		Server: ServerConfig{
			ListenAddress: listen,
			CORSOrigins:   origins,
			MCP: MCPConfig{
				Enabled: raw.Server.MCP.Enabled,
				Path:    mcpPath,
			},
			MetricsEnabled: raw.Server.Metrics.Enabled,
		},
		Upstream: UpstreamConfig{
			BaseURL:    baseURL,
			Timeout:    seconds(raw.Upstream.TimeoutSeconds),
			UserAgent:  strings.TrimSpace(raw.Upstream.UserAgent),
			AuthHeader: authHeader,
			AuthToken:  strings.TrimSpace(raw.Upstream.AuthToken),
		},
		Cache: CacheConfig{
			Backend:  backend,
			Path:     strings.TrimSpace(raw.Cache.Path),
			DSN:      strings.TrimSpace(raw.Cache.DSN),
			TTL:      seconds(raw.Cache.TTLSeconds),
			LocalTTL: seconds(localTTL),
		},
		Tools: ToolsConfig{Timeout: seconds(raw.Tools.TimeoutSeconds)},
		Log: LogConfig{
			Level:       level,
			Development: raw.Log.Development,
		},
	}, errs
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// expandEnv substitutes ${VAR} references and reports the ones that are unset.
func expandEnv(data string) (string, []string) {
	var missing []string
	seen := make(map[string]struct{})
	expanded := os.Expand(data, func(name string) string {
		value, ok := os.LookupEnv(name)
		if !ok {
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				missing = append(missing, name)
			}
		}
		return value
	})
	return expanded, missing
}
