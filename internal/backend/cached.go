package backend

import (
	"context"
	"time"

	"finboard/internal/cache"
	"finboard/internal/core"
)

const categoriesKey = "categories"

// CachedCategories serves ListCategories from a TTL cache and passes every
// other call through to the wrapped backend.
type CachedCategories struct {
	Backend
	cats *cache.LRU[[]core.Category]
}

// WithCategoryCache wraps b so category listings are reused for ttl.
func WithCategoryCache(b Backend, ttl time.Duration) *CachedCategories {
	return &CachedCategories{Backend: b, cats: cache.NewLRU[[]core.Category](1, ttl)}
}

// ListCategories returns a copy of the cached list, loading it on a miss.
func (c *CachedCategories) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := c.cats.GetOrLoad(ctx, categoriesKey, c.Backend.ListCategories)
	if err != nil {
		return nil, err
	}
	return append([]core.Category(nil), cats...), nil
}

// Invalidate drops the cached category list.
func (c *CachedCategories) Invalidate() {
	c.cats.Delete(categoriesKey)
}
