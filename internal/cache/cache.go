// Package cache stores analysis snapshots with a time-to-live in a shared
// key-value backend.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/internal/monitoring"
)

// ErrCache marks a failed cache write.
var ErrCache = eris.New("cache: operation failed")

// Backend is a byte-level store with expiration.
type Backend interface {
	// Get returns ok=false for a missing or expired key.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Cache is what the aggregator needs from a snapshot cache.
type Cache interface {
	Get(ctx context.Context, key string) (*model.Analysis, error)
	Set(ctx context.Context, key string, a *model.Analysis, ttl time.Duration) error
}

// ResultCache JSON-encodes snapshots into a Backend.
type ResultCache struct {
	backend Backend
	name    string
}

// New wraps backend. name labels metrics and logs.
func New(backend Backend, name string) *ResultCache {
	return &ResultCache{backend: backend, name: name}
}

// Key builds the snapshot key for a user and range.
func Key(userID int64, r model.DateRange) string {
	return fmt.Sprintf("analise:%d:%s:%s", userID, r.Start, r.End)
}

// Get returns the cached snapshot, or nil on a miss. Read and decode
// failures are logged and reported as a miss.
func (c *ResultCache) Get(ctx context.Context, key string) (*model.Analysis, error) {
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		zap.L().Warn("cache: read failed, treating as miss",
			zap.String("backend", c.name), zap.String("key", key), zap.Error(err))
		monitoring.CacheError(c.name)
		return nil, nil
	}
	if !ok {
		monitoring.CacheMiss(c.name)
		return nil, nil
	}

	var a model.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		zap.L().Warn("cache: undecodable entry, treating as miss",
			zap.String("backend", c.name), zap.String("key", key), zap.Error(err))
		monitoring.CacheError(c.name)
		return nil, nil
	}
	a.Normalize()
	monitoring.CacheHit(c.name)
	return &a, nil
}

// Set stores a snapshot. Every failure matches ErrCache.
func (c *ResultCache) Set(ctx context.Context, key string, a *model.Analysis, ttl time.Duration) error {
	data, err := json.Marshal(a)
	if err != nil {
		monitoring.CacheWriteError(c.name)
		return &writeError{cause: eris.Wrap(err, "cache: encode snapshot")}
	}
	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		monitoring.CacheWriteError(c.name)
		return &writeError{cause: err}
	}
	return nil
}

// Close releases the backend.
func (c *ResultCache) Close() error {
	return c.backend.Close()
}

type writeError struct{ cause error }

func (e *writeError) Error() string   { return "cache: write failed: " + e.cause.Error() }
func (e *writeError) Unwrap() []error { return []error{ErrCache, e.cause} }
