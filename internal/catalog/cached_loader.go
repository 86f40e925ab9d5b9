package catalog

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedLoader loads the catalog once per session. Concurrent first loads
// share a single call to the underlying loader, which runs detached from the
// cancellation of whichever caller started it; failures are not cached.
type CachedLoader struct {
	next Loader
	sfg  singleflight.Group

	mu       sync.RWMutex
	products []domain.Product
}

func NewCachedLoader(next Loader) *CachedLoader {
	return &CachedLoader{next: next}
}

func (c *CachedLoader) Load(ctx context.Context) ([]domain.Product, error) {
	if p := c.cached(); p != nil {
		return p, nil
	}

	v, err, _ := c.sfg.Do("catalog", func() (interface{}, error) {
		if p := c.cached(); p != nil {
			return p, nil
		}
		products, err := c.next.Load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.mu.Lock()
		c.products = products
		c.mu.Unlock()
		return products, nil
	})
	if err != nil {
		return nil, err
	}

	products := v.([]domain.Product)
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	return cp, nil
}

// Invalidate drops the cached list; the next Load goes to the source.
func (c *CachedLoader) Invalidate() {
	c.mu.Lock()
	c.products = nil
	c.mu.Unlock()
}

func (c *CachedLoader) cached() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.products == nil {
		return nil
	}
	cp := make([]domain.Product, len(c.products))
	copy(cp, c.products)
	return cp
}
