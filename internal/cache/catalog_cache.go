package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kirana-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Stats holds catalog cache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	TotalKeys     int
}

// CatalogCache is a two-level cache for per-shop product catalogs: L1 is
// a local map, L2 is Redis. The resolver reads the full catalog on every
// fuzzy match, so keeping it hot matters.
type CatalogCache struct {
	l1Cache map[string][]*models.Product
	l1Mutex sync.RWMutex

	redisClient *redis.Client

	maxL1Size int
	ttl       time.Duration

	logger *zap.Logger

	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewCatalogCache creates the cache. A nil redisClient degrades to
// L1-only operation (used by tests).
func NewCatalogCache(redisClient *redis.Client, maxL1Size int, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{
		l1Cache:     make(map[string][]*models.Product),
		redisClient: redisClient,
		maxL1Size:   maxL1Size,
		ttl:         ttl,
		logger:      logger,
	}
}

// GetStats returns the cache counters.
func (cc *CatalogCache) GetStats() Stats {
	cc.statsMutex.RLock()
	defer cc.statsMutex.RUnlock()

	cc.l1Mutex.RLock()
	totalKeys := len(cc.l1Cache)
	cc.l1Mutex.RUnlock()

	return Stats{
		Hits:          cc.hits,
		Misses:        cc.misses,
		TotalRequests: cc.hits + cc.misses,
		TotalKeys:     totalKeys,
	}
}

// GetCatalog returns a shop's cached catalog, or nil on a miss.
func (cc *CatalogCache) GetCatalog(ctx context.Context, shopID string) []*models.Product {
	start := time.Now()

	if catalog := cc.getFromL1(shopID); catalog != nil {
		cc.recordHit()
		cc.logger.Debug("L1 catalog cache hit",
			zap.String("shop_id", shopID),
			zap.Duration("latency", time.Since(start)))
		return catalog
	}

	if catalog := cc.getFromL2(ctx, shopID); catalog != nil {
		cc.setToL1(shopID, catalog)
		cc.recordHit()
		cc.logger.Debug("L2 catalog cache hit",
			zap.String("shop_id", shopID),
			zap.Duration("latency", time.Since(start)))
		return catalog
	}

	cc.recordMiss()
	return nil
}

// SetCatalog stores a shop's catalog in both levels.
func (cc *CatalogCache) SetCatalog(ctx context.Context, shopID string, catalog []*models.Product) {
	cc.setToL1(shopID, catalog)
	cc.setToL2(ctx, shopID, catalog)
}

// Invalidate drops a shop's catalog from both levels. Called after every
// catalog mutation (stock changes keep the cached copy; only structural
// changes invalidate).
func (cc *CatalogCache) Invalidate(ctx context.Context, shopID string) {
	cc.l1Mutex.Lock()
	delete(cc.l1Cache, shopID)
	cc.l1Mutex.Unlock()

	if cc.redisClient != nil {
		if err := cc.redisClient.Del(ctx, catalogKey(shopID)).Err(); err != nil {
			cc.logger.Warn("failed to invalidate catalog in Redis",
				zap.String("shop_id", shopID), zap.Error(err))
		}
	}
}

func catalogKey(shopID string) string {
	return fmt.Sprintf("catalog:%s", shopID)
}

func (cc *CatalogCache) recordHit() {
	cc.statsMutex.Lock()
	cc.hits++
	cc.statsMutex.Unlock()
}

func (cc *CatalogCache) recordMiss() {
	cc.statsMutex.Lock()
	cc.misses++
	cc.statsMutex.Unlock()
}

func (cc *CatalogCache) getFromL1(shopID string) []*models.Product {
	cc.l1Mutex.RLock()
	defer cc.l1Mutex.RUnlock()
	return cc.l1Cache[shopID]
}

func (cc *CatalogCache) setToL1(shopID string, catalog []*models.Product) {
	cc.l1Mutex.Lock()
	defer cc.l1Mutex.Unlock()

	if len(cc.l1Cache) >= cc.maxL1Size {
		// Simple eviction: drop an arbitrary entry.
		for key := range cc.l1Cache {
			delete(cc.l1Cache, key)
			break
		}
	}
	cc.l1Cache[shopID] = catalog
}

func (cc *CatalogCache) getFromL2(ctx context.Context, shopID string) []*models.Product {
	if cc.redisClient == nil {
		return nil
	}
	data, err := cc.redisClient.Get(ctx, catalogKey(shopID)).Result()
	if err != nil {
		return nil
	}
	var catalog []*models.Product
	if err := json.Unmarshal([]byte(data), &catalog); err != nil {
		cc.logger.Warn("corrupt catalog entry in Redis, dropping",
			zap.String("shop_id", shopID), zap.Error(err))
		cc.redisClient.Del(ctx, catalogKey(shopID))
		return nil
	}
	return catalog
}

func (cc *CatalogCache) setToL2(ctx context.Context, shopID string, catalog []*models.Product) {
	if cc.redisClient == nil {
		return
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		return
	}
	if err := cc.redisClient.Set(ctx, catalogKey(shopID), data, cc.ttl).Err(); err != nil {
		cc.logger.Warn("failed to store catalog in Redis",
			zap.String("shop_id", shopID), zap.Error(err))
	}
}
