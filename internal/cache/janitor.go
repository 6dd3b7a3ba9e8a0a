package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper is implemented by backends that keep expired rows until removed.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// Sweep removes expired entries when the backend needs it. ok is false for
// backends that expire keys on their own.
func (c *ResultCache) Sweep(ctx context.Context) (removed int64, ok bool, err error) {
	s, ok := c.backend.(Sweeper)
	if !ok {
		return 0, false, nil
	}
	removed, err = s.DeleteExpired(ctx)
	return removed, true, err
}

// RunJanitor sweeps c every interval until ctx is cancelled. It returns at
// once for backends that need no sweeping.
func RunJanitor(ctx context.Context, c *ResultCache, interval time.Duration) {
	if _, ok := c.backend.(Sweeper); !ok {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	log := zap.L().With(zap.String("component", "cache.janitor"), zap.String("backend", c.name))
	log.Info("starting cache janitor", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("cache janitor stopped")
			return
		case <-ticker.C:
			removed, _, err := c.Sweep(ctx)
			if err != nil {
				log.Error("cache: sweep failed", zap.Error(err))
				continue
			}
			log.Debug("cache: sweep complete", zap.Int64("removed", removed))
		}
	}
}
