// Package redis layers an external key-value cache in front of the in-process
// content caches. Every operation is best-effort: a Redis error degrades to a
// miss and the caller falls back to memory/disk.
package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"simulado-service/internal/domain"
	"simulado-service/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const listKey = "simulados_list"

// ContentCache stores marshaled documents at simulado:{id} and the listing at
// simulados_list, each with its own TTL.
type ContentCache struct {
	client  *redis.Client
	ttl     time.Duration
	listTTL time.Duration
}

func NewContentCache(client *redis.Client, ttl, listTTL time.Duration) *ContentCache {
	return &ContentCache{client: client, ttl: ttl, listTTL: listTTL}
}

func simuladoKey(id string) string {
	return "simulado:" + id
}

// GetSimulado returns the cached document for id, or ok=false on miss or error.
func (c *ContentCache) GetSimulado(ctx context.Context, id string) (domain.Simulado, bool) {
	data, err := c.client.Get(ctx, simuladoKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis get %s: %v", simuladoKey(id), err)
		}
		metrics.RedisCacheMisses.Inc()
		return domain.Simulado{}, false
	}
	var doc domain.Simulado
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("redis unmarshal %s: %v", simuladoKey(id), err)
		metrics.RedisCacheMisses.Inc()
		return domain.Simulado{}, false
	}
	doc.ID = id
	metrics.RedisCacheHits.Inc()
	return doc, true
}

// SetSimulado caches a document under its id.
func (c *ContentCache) SetSimulado(ctx context.Context, doc domain.Simulado) {
	data, err := json.Marshal(doc)
	if err != nil {
		log.Printf("redis marshal simulado %q: %v", doc.ID, err)
		return
	}
	if err := c.client.Set(ctx, simuladoKey(doc.ID), data, c.ttl).Err(); err != nil {
		log.Printf("redis set %s: %v", simuladoKey(doc.ID), err)
	}
}

// GetList returns the cached listing, or ok=false on miss or error.
func (c *ContentCache) GetList(ctx context.Context) ([]domain.Summary, bool) {
	data, err := c.client.Get(ctx, listKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("redis get %s: %v", listKey, err)
		}
		metrics.RedisCacheMisses.Inc()
		return nil, false
	}
	var summaries []domain.Summary
	if err := json.Unmarshal(data, &summaries); err != nil {
		log.Printf("redis unmarshal %s: %v", listKey, err)
		metrics.RedisCacheMisses.Inc()
		return nil, false
	}
	metrics.RedisCacheHits.Inc()
	return summaries, true
}

// SetList caches the listing.
func (c *ContentCache) SetList(ctx context.Context, summaries []domain.Summary) {
	data, err := json.Marshal(summaries)
	if err != nil {
		log.Printf("redis marshal list: %v", err)
		return
	}
	if err := c.client.Set(ctx, listKey, data, c.listTTL).Err(); err != nil {
		log.Printf("redis set %s: %v", listKey, err)
	}
}

// Invalidate removes one cached document and the listing that may mention it.
func (c *ContentCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, simuladoKey(id), listKey).Err(); err != nil {
		log.Printf("redis del %s: %v", simuladoKey(id), err)
	}
}

// InvalidateAll removes the listing and every cached document.
func (c *ContentCache) InvalidateAll(ctx context.Context) {
	if err := c.client.Del(ctx, listKey).Err(); err != nil {
		log.Printf("redis del %s: %v", listKey, err)
	}
	iter := c.client.Scan(ctx, 0, simuladoKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			log.Printf("redis del %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Printf("redis scan %s: %v", simuladoKey("*"), err)
	}
}
