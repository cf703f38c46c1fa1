package db

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"finax-server/src/models"
)

// CachedCategories memoizes single-category lookups. Categories are never edited once
// seeded, so entries cannot go stale; listings always hit the store.
type CachedCategories struct {
	CategoryStore
	cache *ristretto.Cache[string, models.Category]
}

func NewCachedCategories(store CategoryStore, maxEntries int64) (*CachedCategories, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, models.Category]{
		NumCounters: maxEntries * 10, // number of keys to track frequency of
		MaxCost:     maxEntries,
		BufferItems: 64, // number of keys per Get buffer
		// cost is entry count
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize category cache: %w", err)
	}
	return &CachedCategories{CategoryStore: store, cache: cache}, nil
}

func categoryCacheKey(userID, id string) string {
	return userID + ":" + id
}

func (c *CachedCategories) GetCategory(ctx context.Context, userID, id string) (*models.Category, error) {
	key := categoryCacheKey(userID, id)
	if cat, ok := c.cache.Get(key); ok {
		return &cat, nil
	}

	cat, err := c.CategoryStore.GetCategory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, *cat, 1)
	return cat, nil
}

// Wait blocks until buffered writes are visible to Get.
func (c *CachedCategories) Wait() {
	c.cache.Wait()
}

func (c *CachedCategories) Close() {
	c.cache.Close()
}
