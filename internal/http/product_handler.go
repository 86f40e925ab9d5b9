package http

import (
	"log/slog"
	"net/http"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/money"
)

type ProductHandler struct {
	loader catalog.Loader
	logger *slog.Logger
}

func NewProductHandler(loader catalog.Loader, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{loader: loader, logger: logger}
}

type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	RatingStars float64 `json:"rating_stars"`
	RatingCount int     `json:"rating_count"`
	PriceCents  int64   `json:"price_cents"`
	Price       string  `json:"price"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	cat, err := catalog.Build(r.Context(), h.loader)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load products", slog.Any("error", err))
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "products are not available right now")
		return
	}

	products := make([]ProductResponse, 0, cat.Len())
	for _, p := range cat.Products() {
		products = append(products, ProductResponse{
			ID:          p.ID,
			Name:        p.Name,
			Image:       p.Image,
			RatingStars: p.Rating.Stars,
			RatingCount: p.Rating.Count,
			PriceCents:  p.PriceCents,
			Price:       money.FormatCents(p.PriceCents),
		})
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}
