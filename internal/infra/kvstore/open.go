package kvstore

import (
	"context"
	"fmt"
	"strings"

	"fantasygw/internal/domain"
)

const (
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures the durable backend.
type Options struct {
	Backend string
	Path    string
	DSN     string
}

// Open returns the configured durable store.
func Open(ctx context.Context, opts Options) (domain.KVStore, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendBolt:
		return OpenBoltStore(opts.Path)
	case BackendPostgres:
		return OpenPostgresStore(ctx, opts.DSN)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", opts.Backend)
	}
}
