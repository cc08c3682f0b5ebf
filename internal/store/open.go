package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config selects and addresses a KV backend.
type Config struct {
	Backend     string
	DBPath      string
	PostgresDSN string
	RedisAddr   string
}

// Open creates the KV named by cfg.Backend. An empty backend means SQLite.
func Open(ctx context.Context, cfg Config) (KV, error) {
	switch cfg.Backend {
	case "", BackendSQLite:
		return New(cfg.DBPath)
	case BackendMemory:
		return NewMemory(), nil
	case BackendPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		return NewPostgres(ctx, cfg.PostgresDSN)
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires an address")
		}
		return NewRedis(ctx, cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
