// Package cache holds read-through caches for records served by the API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Cache is implemented by every backend.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Backend names accepted in configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// TTL applies when Set is called with a zero ttl.
	TTL    time.Duration
	Prefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultConfig returns an in-memory cache with a five minute TTL.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		TTL:     5 * time.Minute,
		Prefix:  "testbench:",
	}
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(cfg), nil
	case BackendRedis:
		return NewRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// RecordKey is the key a single record of kind is cached under.
func RecordKey(kind, id string) string {
	return kind + ":" + id
}

// Records is a typed read-through view over a Cache. Backend failures are
// logged and fall through to the loader.
type Records[T any] struct {
	cache  Cache
	kind   string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRecords returns a read-through cache for records of kind.
func NewRecords[T any](c Cache, kind string, ttl time.Duration, logger *zap.Logger) *Records[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Records[T]{cache: c, kind: kind, ttl: ttl, logger: logger}
}

// Get returns the cached record for id, or calls load and caches its result.
func (r *Records[T]) Get(ctx context.Context, id string, load func(context.Context) (*T, error)) (*T, error) {
	key := RecordKey(r.kind, id)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return &v, nil
		}
		r.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	case !errors.Is(err, ErrMiss):
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		r.logger.Warn("failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// Invalidate drops the cached record for id.
func (r *Records[T]) Invalidate(ctx context.Context, id string) {
	key := RecordKey(r.kind, id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
