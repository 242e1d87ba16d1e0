// Package storage provides the key-value backends the task store persists to.
package storage

import (
	"context"
	"fmt"
	"strings"
)

const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DarkModeKey holds the TUI theme flag as "true" or "false".
const DarkModeKey = "darkMode"

// Provider is a string key-value store. Get reports ok=false for a missing key.
type Provider interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Options struct {
	Backend string
	Path    string
	Redis   RedisOptions
}

// Open returns the backend named by opts.Backend. An empty name selects sqlite.
func Open(ctx context.Context, opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		return OpenSQLite(opts.Path)
	case BackendBolt:
		return OpenBolt(opts.Path)
	case BackendRedis:
		return OpenRedis(ctx, opts.Redis)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// GetBool reads a "true"/"false" flag. Missing keys read as false.
func GetBool(ctx context.Context, p Provider, key string) (bool, error) {
	v, ok, err := p.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return v == "true", nil
}

func SetBool(ctx context.Context, p Provider, key string, v bool) error {
	if v {
		return p.Set(ctx, key, "true")
	}
	return p.Set(ctx, key, "false")
}
