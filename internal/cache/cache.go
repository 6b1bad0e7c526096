// Package cache stores rendered dashboard views keyed by selection.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// Drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverNone   = "none"
)

// Cache stores encoded views. A miss returns (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	// Invalidate drops every entry whose key starts with prefix + "/".
	Invalidate(ctx context.Context, prefix string) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats contains cache performance statistics.
type Stats struct {
	Driver     string  `json:"driver"`
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries,omitempty"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// Options configures New.
type Options struct {
	Driver     string
	MaxEntries int
	TTL        time.Duration
	RedisAddr  string
	RedisDB    int
	KeyPrefix  string
}

// New builds the cache named by opts.Driver. The none driver returns a nil
// Cache, which callers treat as caching disabled.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverMemory, "":
		return NewMemory(opts.MaxEntries, opts.TTL), nil
	case DriverRedis:
		return NewRedis(ctx, opts)
	case DriverNone:
		return nil, nil
	default:
		return nil, eris.Wrapf(model.ErrConfiguration, "cache: unknown driver %q", opts.Driver)
	}
}

func hitRate(hits, misses int64) float64 {
	if total := hits + misses; total > 0 {
		return float64(hits) / float64(total)
	}
	return 0
}
