// Package dataset loads the tabular and hierarchy datasets once per process
// and shares them with every session.
package dataset

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/madu12/metro-interstate-traffic-volume/internal/domain"
	"github.com/madu12/metro-interstate-traffic-volume/internal/errs"
	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

// Dataset names, used as metric labels and singleflight keys.
const (
	Tabular   = "tabular"
	Hierarchy = "hierarchy"
)

// Sources names where each dataset lives.
type Sources struct {
	TabularURL   string
	HierarchyURL string
	// Location interprets CSV timestamps without an offset. Nil means UTC.
	Location *time.Location
}

// Cache memoizes each dataset for the lifetime of the process. Concurrent
// misses share a single load. A failed load is not memoized and is not
// retried until the next request.
type Cache struct {
	fetcher Fetcher
	sources Sources
	logger  *slog.Logger
	metrics *observability.Metrics
	group   singleflight.Group

	mu        sync.RWMutex
	records   []domain.Record
	recordsOK bool
	hierarchy *domain.HierarchyNode
}

// NewCache creates an empty cache reading from sources through fetcher.
func NewCache(fetcher Fetcher, sources Sources, logger *slog.Logger, metrics *observability.Metrics) *Cache {
	if sources.Location == nil {
		sources.Location = time.UTC
	}
	return &Cache{
		fetcher: fetcher,
		sources: sources,
		logger:  logger,
		metrics: metrics,
	}
}

// Records returns the tabular dataset, loading it on first use.
func (c *Cache) Records(ctx context.Context) ([]domain.Record, error) {
	if recs, ok := c.cachedRecords(); ok {
		c.metrics.DatasetCache.WithLabelValues(Tabular, "hit").Inc()
		return recs, nil
	}
	c.metrics.DatasetCache.WithLabelValues(Tabular, "miss").Inc()

	v, err := c.load(ctx, Tabular, func(lctx context.Context) (any, error) {
		if recs, ok := c.cachedRecords(); ok {
			return recs, nil
		}
		data, err := c.fetcher.Fetch(lctx, c.sources.TabularURL)
		if err != nil {
			return nil, err
		}
		recs, err := ParseRecords(bytes.NewReader(data), c.sources.Location)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.records, c.recordsOK = recs, true
		c.mu.Unlock()
		return recs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Record), nil
}

// Hierarchy returns the tree dataset, loading it on first use.
func (c *Cache) Hierarchy(ctx context.Context) (domain.HierarchyNode, error) {
	if root, ok := c.cachedHierarchy(); ok {
		c.metrics.DatasetCache.WithLabelValues(Hierarchy, "hit").Inc()
		return root, nil
	}
	c.metrics.DatasetCache.WithLabelValues(Hierarchy, "miss").Inc()

	v, err := c.load(ctx, Hierarchy, func(lctx context.Context) (any, error) {
		if root, ok := c.cachedHierarchy(); ok {
			return root, nil
		}
		data, err := c.fetcher.Fetch(lctx, c.sources.HierarchyURL)
		if err != nil {
			return nil, err
		}
		root, err := ParseHierarchy(data)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.hierarchy = &root
		c.mu.Unlock()
		return root, nil
	})
	if err != nil {
		return domain.HierarchyNode{}, err
	}
	return v.(domain.HierarchyNode), nil
}

// Warm loads the tabular dataset, which the first tab needs.
func (c *Cache) Warm(ctx context.Context) error {
	_, err := c.Records(ctx)
	return err
}

// CheckReadiness returns nil once the tabular dataset is memoized.
func (c *Cache) CheckReadiness(_ context.Context) error {
	if _, ok := c.cachedRecords(); !ok {
		return errors.New("tabular dataset not loaded yet")
	}
	return nil
}

// load runs fn at most once at a time per dataset. The load itself is
// detached from ctx; a caller whose ctx ends stops waiting but the load still
// finishes and is memoized for the next caller.
func (c *Cache) load(ctx context.Context, dataset string, fn func(context.Context) (any, error)) (any, error) {
	ch := c.group.DoChan(dataset, func() (any, error) {
		start := time.Now()
		v, err := fn(context.WithoutCancel(ctx))
		c.metrics.DatasetLoadDuration.WithLabelValues(dataset).Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.DatasetLoads.WithLabelValues(dataset, "error").Inc()
			c.logger.Error("dataset load failed", "dataset", dataset, "error", err)
			return nil, errs.NewLoadError(dataset, err)
		}
		c.metrics.DatasetLoads.WithLabelValues(dataset, "success").Inc()
		c.logger.Info("dataset loaded", "dataset", dataset, "duration", time.Since(start))
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) cachedRecords() ([]domain.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records, c.recordsOK
}

func (c *Cache) cachedHierarchy() (domain.HierarchyNode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.hierarchy == nil {
		return domain.HierarchyNode{}, false
	}
	return *c.hierarchy, true
}
