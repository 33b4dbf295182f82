package memory

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"simulado-service/internal/domain"
	"simulado-service/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// listRebuildConcurrency bounds parallel document loads during a rebuild.
const listRebuildConcurrency = 8

// ListCache caches the ordered listing of simulado summaries. Rebuilds load
// full documents through the ContentCache so later single-document requests
// hit warm entries. A file that fails to load is skipped and logged; one
// corrupt quiz must not take down the whole listing.
type ListCache struct {
	source Source
	docs   *ContentCache
	ttl    time.Duration
	clock  func() time.Time

	mu        sync.Mutex
	summaries []domain.Summary
	builtAt   time.Time
	built     bool
}

func NewListCache(source Source, docs *ContentCache, ttl time.Duration) *ListCache {
	return &ListCache{
		source: source,
		docs:   docs,
		ttl:    ttl,
		clock:  time.Now,
	}
}

// List returns summaries for every loadable simulado, ordered by id
// ascending. The cached slice is shared; callers treat it as read-only.
func (c *ListCache) List(ctx context.Context) ([]domain.Summary, error) {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built && (c.ttl <= 0 || now.Sub(c.builtAt) < c.ttl) {
		metrics.ListCacheHits.Inc()
		return c.summaries, nil
	}
	metrics.ListCacheMisses.Inc()

	summaries, err := c.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	c.summaries = summaries
	c.builtAt = now
	c.built = true
	return summaries, nil
}

func (c *ListCache) rebuild(ctx context.Context) ([]domain.Summary, error) {
	ids, err := c.source.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Summary, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listRebuildConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			doc, err := c.docs.Get(gctx, id)
			if err != nil {
				// skip-and-log: the rest of the listing still serves
				log.Printf("list rebuild: skipping %q: %v", id, err)
				return nil
			}
			summary := doc.Summarize()
			results[i] = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := make([]domain.Summary, 0, len(ids))
	for _, s := range results {
		if s != nil {
			summaries = append(summaries, *s)
		}
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

// Invalidate forces the next List call to rebuild.
func (c *ListCache) Invalidate() {
	c.mu.Lock()
	c.built = false
	c.summaries = nil
	c.mu.Unlock()
	metrics.CacheInvalidations.Inc()
}
