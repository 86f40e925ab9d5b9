package catalog

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
)

var demoProducts = []domain.Product{
	{
		ID:         "e43638ce-6aa0-4b85-b27f-e1d07eb678c6",
		Name:       "Black and Gray Athletic Cotton Socks - 6 Pairs",
		Image:      "images/products/athletic-cotton-socks-6-pairs.jpg",
		Rating:     domain.Rating{Stars: 4.5, Count: 87},
		PriceCents: 1090,
	},
	{
		ID:         "15b6fc6f-327a-4ec4-896f-486349e85a3d",
		Name:       "Intermediate Size Basketball",
		Image:      "images/products/intermediate-composite-basketball.jpg",
		Rating:     domain.Rating{Stars: 4, Count: 127},
		PriceCents: 2095,
	},
	{
		ID:         "83d4ca15-0f35-48f5-b7a3-1ea210004f2e",
		Name:       "Adults Plain Cotton T-Shirt - 2 Pack",
		Image:      "images/products/adults-plain-cotton-tshirt-2-pack-teal.jpg",
		Rating:     domain.Rating{Stars: 4.5, Count: 56},
		PriceCents: 799,
	},
	{
		ID:         "54e0eccd-8f36-462b-b68a-8182611d9add",
		Name:       "2 Slot Toaster - Black",
		Image:      "images/products/black-2-slot-toaster.jpg",
		Rating:     domain.Rating{Stars: 5, Count: 2197},
		PriceCents: 1899,
	},
	{
		ID:         "3ebe75dc-64d2-4137-8860-1f5a963e534b",
		Name:       "6 Piece White Dinner Plate Set",
		Image:      "images/products/6-piece-white-dinner-plate-set.jpg",
		Rating:     domain.Rating{Stars: 4, Count: 37},
		PriceCents: 2067,
	},
}

// StaticLoader serves a fixed product list.
type StaticLoader struct {
	products []domain.Product
}

// NewStaticLoader with no products serves the built-in demo catalog.
func NewStaticLoader(products ...domain.Product) *StaticLoader {
	if len(products) == 0 {
		products = demoProducts
	}
	return &StaticLoader{products: products}
}

func (s *StaticLoader) Load(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := make([]domain.Product, len(s.products))
	copy(cp, s.products)
	return cp, nil
}
