package cache

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/crm-assistant/internal/config"
)

// Open builds the backend named by cfg.Backend and wraps it in a ResultCache.
func Open(ctx context.Context, cfg config.CacheConfig) (*ResultCache, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, eris.Wrapf(err, "cache: open %s", cfg.Backend)
	}
	return New(b, cfg.Backend), nil
}

func openBackend(ctx context.Context, cfg config.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedis(cfg.RedisURL)
	case "postgres":
		p, err := NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := p.Migrate(ctx); err != nil {
			p.Close() //nolint:errcheck
			return nil, err
		}
		return p, nil
	case "sqlite":
		return NewSQLite(ctx, cfg.SQLitePath)
	case "memory":
		return NewMemory(), nil
	}
	return nil, eris.Errorf("cache: unknown backend %q", cfg.Backend)
}

// TTL returns the configured snapshot lifetime.
func TTL(cfg config.CacheConfig) time.Duration {
	if cfg.TTLSecs <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(cfg.TTLSecs) * time.Second
}
