// cache.go — in-memory LRU-кэш наборов находок с TTL.
// Наборы неизменяемы после создания, поэтому кэш не требует инвалидации:
// устаревание по TTL ограничивает только объём памяти.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/logsight/internal/domain/model"
)

// Метрики кэша находок.
var (
	insightCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_insight_cache_hits_total",
		Help: "Количество попаданий в кэш наборов находок",
	})
	insightCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ls_insight_cache_misses_total",
		Help: "Количество промахов кэша наборов находок",
	})
)

// InsightCache — LRU-кэш наборов находок по fingerprint.
type InsightCache struct {
	lru *expirable.LRU[string, *model.InsightSet]
}

// NewInsightCache создаёт кэш заданного размера с TTL.
func NewInsightCache(size int, ttl time.Duration) *InsightCache {
	return &InsightCache{
		lru: expirable.NewLRU[string, *model.InsightSet](size, nil, ttl),
	}
}

// Get возвращает набор находок из кэша.
func (c *InsightCache) Get(fingerprint string) (*model.InsightSet, bool) {
	set, ok := c.lru.Get(fingerprint)
	if ok {
		insightCacheHits.Inc()
	} else {
		insightCacheMisses.Inc()
	}
	return set, ok
}

// Add добавляет набор находок в кэш.
func (c *InsightCache) Add(fingerprint string, set *model.InsightSet) {
	c.lru.Add(fingerprint, set)
}

// Len возвращает текущее количество записей в кэше.
func (c *InsightCache) Len() int {
	return c.lru.Len()
}
