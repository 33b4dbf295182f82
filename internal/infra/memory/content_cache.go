// Package memory holds the in-process caches that sit between the content
// source and the request handlers.
package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"simulado-service/internal/domain"
	"simulado-service/internal/metrics"
)

// Source provides simulado content from a backing store (content directory,
// Postgres, etc).
type Source interface {
	Load(ctx context.Context, id string) (domain.Simulado, error)
	List(ctx context.Context) ([]string, error)
	Fingerprint(ctx context.Context, id string) (string, error)
}

// ContentCache caches parsed documents by id with TTL expiry and optional
// per-lookup fingerprint checks. Concurrent misses for the same id may load
// redundantly; loading one JSON file is cheap enough that serializing misses
// behind a per-key lock isn't worth the machinery.
type ContentCache struct {
	source           Source
	ttl              time.Duration
	checkFingerprint bool
	clock            func() time.Time
	rnd              *rand.Rand

	mu      sync.RWMutex
	entries map[string]contentEntry
}

type contentEntry struct {
	doc         domain.Simulado
	fingerprint string
	cachedAt    time.Time
	expiresAt   time.Time
}

// NewContentCache builds a cache over source. A zero ttl disables expiry;
// checkFingerprint re-stats the underlying file on every lookup so edits are
// picked up before the TTL runs out.
func NewContentCache(source Source, ttl time.Duration, checkFingerprint bool) *ContentCache {
	return &ContentCache{
		source:           source,
		ttl:              ttl,
		checkFingerprint: checkFingerprint,
		clock:            time.Now,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
		entries:          make(map[string]contentEntry),
	}
}

// Get returns the cached document for id, loading it on a miss or when the
// cached entry is no longer valid. The returned document is shared read-only
// state; callers must Clone before mutating. Load failures are never cached.
func (c *ContentCache) Get(ctx context.Context, id string) (domain.Simulado, error) {
	now := c.clock()

	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && c.valid(ctx, id, entry, now) {
		metrics.ContentCacheHits.Inc()
		return entry.doc, nil
	}
	metrics.ContentCacheMisses.Inc()

	doc, err := c.source.Load(ctx, id)
	if err != nil {
		return domain.Simulado{}, err
	}

	fingerprint := ""
	if c.checkFingerprint {
		// Best effort: a failed stat right after a successful read just means
		// the next lookup reloads.
		fingerprint, _ = c.source.Fingerprint(ctx, id)
	}

	c.mu.Lock()
	c.entries[id] = contentEntry{
		doc:         doc,
		fingerprint: fingerprint,
		cachedAt:    now,
		expiresAt:   now.Add(c.ttlWithJitter()),
	}
	c.mu.Unlock()
	return doc, nil
}

func (c *ContentCache) valid(ctx context.Context, id string, entry contentEntry, now time.Time) bool {
	if c.ttl > 0 && !entry.expiresAt.After(now) {
		return false
	}
	if c.checkFingerprint {
		current, err := c.source.Fingerprint(ctx, id)
		if err != nil || current != entry.fingerprint {
			return false
		}
	}
	return true
}

// Invalidate drops the entry for one id.
func (c *ContentCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	metrics.CacheInvalidations.Inc()
}

// InvalidateAll drops every entry.
func (c *ContentCache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]contentEntry)
	c.mu.Unlock()
	metrics.CacheInvalidations.Inc()
}

// Len reports the number of cached entries.
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
