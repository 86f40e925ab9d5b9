package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
)

var ErrInvalidProduct = errors.New("invalid product")

// Loader fetches the product list for a session.
type Loader interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

// Catalog is read-only reference data indexed by product id.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidProduct, p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func validate(p domain.Product) error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidProduct)
	case p.PriceCents < 0:
		return fmt.Errorf("%w: %q has negative price", ErrInvalidProduct, p.ID)
	case p.Rating.Stars < 0 || p.Rating.Stars > 5:
		return fmt.Errorf("%w: %q rating %.1f out of range", ErrInvalidProduct, p.ID, p.Rating.Stars)
	case p.Rating.Count < 0:
		return fmt.Errorf("%w: %q has negative rating count", ErrInvalidProduct, p.ID)
	}
	return nil
}

func (c *Catalog) Product(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %q", domain.ErrProductNotFound, id)
	}
	return c.products[i], nil
}

// Products returns the products in load order.
func (c *Catalog) Products() []domain.Product {
	cp := make([]domain.Product, len(c.products))
	copy(cp, c.products)
	return cp
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Build loads products through l and indexes them.
func Build(ctx context.Context, l Loader) (*Catalog, error) {
	products, err := l.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return New(products)
}
