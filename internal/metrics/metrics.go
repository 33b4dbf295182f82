// Package metrics exposes Prometheus counters for the caching layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ContentCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_content_cache_hits_total",
		Help: "Content cache lookups served from memory.",
	})
	ContentCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_content_cache_misses_total",
		Help: "Content cache lookups that required a source load.",
	})
	ListCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_list_cache_hits_total",
		Help: "List cache lookups served from memory.",
	})
	ListCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_list_cache_misses_total",
		Help: "List cache lookups that required a rebuild.",
	})
	RedisCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_redis_cache_hits_total",
		Help: "Lookups served from the external Redis cache.",
	})
	RedisCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_redis_cache_misses_total",
		Help: "Lookups that missed the external Redis cache.",
	})
	CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulado_cache_invalidations_total",
		Help: "Explicit or watcher-driven cache invalidations.",
	})
)
