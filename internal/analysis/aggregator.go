// Package analysis builds CRM snapshots from the Sankhya gateway.
package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/crm-assistant/internal/cache"
	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/internal/monitoring"
	"github.com/sells-group/crm-assistant/pkg/sankhya"
)

// RecordLoader runs one loadRecords query. *sankhya.Client implements it.
type RecordLoader interface {
	LoadRecords(ctx context.Context, q sankhya.Query) ([]sankhya.Record, error)
}

// Fetcher produces snapshots. *Aggregator implements it.
type Fetcher interface {
	FetchAnalysis(ctx context.Context, r model.DateRange, userID int64, isAdmin bool) (*model.Analysis, error)
}

// Aggregator fetches, assembles and caches snapshots.
type Aggregator struct {
	loader RecordLoader
	cache  cache.Cache
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	group   singleflight.Group
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTTL sets the snapshot cache lifetime.
func WithTTL(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.ttl = d
		}
	}
}

// WithBuildTimeout bounds a shared gateway fetch. The fetch outlives the
// caller that started it so joined callers still get a result.
func WithBuildTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// New creates an Aggregator.
func New(loader RecordLoader, c cache.Cache, opts ...Option) *Aggregator {
	a := &Aggregator{
		loader: loader,
		cache:  c,
		ttl:     30 * time.Minute,
		timeout: 60 * time.Second,
		now:     time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// FetchAnalysis returns the snapshot for (userID, r), from cache when
// present. Concurrent misses for the same key share one computation.
//
// A failed category query yields an empty collection. A failed lead-products
// query or cache write fails the call with a *sankhya.FetchError. A fetch
// that hits its build timeout fails and is never cached.
func (a *Aggregator) FetchAnalysis(ctx context.Context, r model.DateRange, userID int64, isAdmin bool) (*model.Analysis, error) {
	from, to, err := r.Bounds()
	if err != nil {
		return nil, eris.Wrap(err, "analysis: date range")
	}

	key := cache.Key(userID, r)
	cached, err := a.cache.Get(ctx, key)
	if err != nil {
		zap.L().Warn("analysis: cache read failed", zap.String("key", key), zap.Error(err))
	}
	if cached != nil {
		zap.L().Debug("analysis: cache hit", zap.String("key", key))
		return cached, nil
	}

	ch := a.group.DoChan(key, func() (any, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()
		return a.build(bctx, key, r, from, to, userID, isAdmin)
	})
	select {
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "analysis: fetch abandoned")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			zap.L().Debug("analysis: joined in-flight fetch", zap.String("key", key))
		}
		return res.Val.(*model.Analysis), nil
	}
}

func (a *Aggregator) build(ctx context.Context, key string, r model.DateRange, from, to time.Time, userID int64, isAdmin bool) (*model.Analysis, error) {
	start := time.Now()
	log := zap.L().With(zap.String("key", key), zap.Int64("user_id", userID), zap.Bool("admin", isAdmin))
	log.Info("analysis: fetching from gateway")

	out := model.EmptyAnalysis(r)

	var g errgroup.Group
	g.Go(func() error {
		out.Leads = model.MapRecords(a.load(ctx, leadsQuery(from, to, userID, isAdmin)), model.LeadFromRecord)
		return nil
	})
	g.Go(func() error {
		out.Activities = model.MapRecords(a.load(ctx, activitiesQuery(from, to)), model.ActivityFromRecord)
		return nil
	})
	g.Go(func() error {
		out.Funnels = model.MapRecords(a.load(ctx, funnelsQuery()), model.FunnelFromRecord)
		return nil
	})
	g.Go(func() error {
		out.Stages = model.MapRecords(a.load(ctx, stagesQuery()), model.StageFromRecord)
		return nil
	})
	g.Go(func() error {
		out.Orders = model.MapRecords(a.load(ctx, ordersQuery(from, to)), model.OrderFromRecord)
		return nil
	})
	g.Go(func() error {
		out.Products = model.MapRecords(a.load(ctx, productsQuery()), model.ProductFromRecord)
		return nil
	})
	g.Go(func() error {
		out.Customers = model.MapRecords(a.load(ctx, customersQuery()), model.CustomerFromRecord)
		return nil
	})
	_ = g.Wait() // category goroutines absorb their errors
	if err := ctx.Err(); err != nil {
		log.Warn("analysis: fetch interrupted, not caching", zap.Error(err))
		return nil, eris.Wrap(err, "analysis: snapshot fetch interrupted")
	}

	if len(out.Leads) > 0 {
		if q, ok := leadProductsQuery(out.Leads); ok {
			recs, err := a.loader.LoadRecords(ctx, q)
			monitoring.ObserveQuery(q.Entity, err)
			if err != nil {
				log.Error("analysis: lead products query failed", zap.Error(err))
				var fe *sankhya.FetchError
				if !errors.As(err, &fe) {
					err = &sankhya.FetchError{Entity: q.Entity, Err: err}
				}
				return nil, err
			}
			out.LeadProducts = model.MapRecords(recs, model.LeadProductFromRecord)
		}
	}

	out.GeneratedAt = a.now().UTC()

	if err := a.cache.Set(ctx, key, out, a.ttl); err != nil {
		log.Error("analysis: cache write failed", zap.Error(err))
		return nil, &sankhya.FetchError{Entity: "cache", Err: err}
	}

	monitoring.ObserveAggregation(time.Since(start))
	log.Info("analysis: snapshot cached",
		zap.Int("leads", len(out.Leads)),
		zap.Int("lead_products", len(out.LeadProducts)),
		zap.Int("activities", len(out.Activities)),
		zap.Int("funnels", len(out.Funnels)),
		zap.Int("stages", len(out.Stages)),
		zap.Int("orders", len(out.Orders)),
		zap.Int("products", len(out.Products)),
		zap.Int("customers", len(out.Customers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// load runs one category query. Failures are logged and yield no records.
func (a *Aggregator) load(ctx context.Context, q sankhya.Query) []sankhya.Record {
	recs, err := a.loader.LoadRecords(ctx, q)
	monitoring.ObserveQuery(q.Entity, err)
	if err != nil {
		zap.L().Warn("analysis: category query failed, using empty result",
			zap.String("entity", q.Entity), zap.Error(err))
		return nil
	}
	return recs
}
