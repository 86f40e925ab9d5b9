package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

// CartService is the part of the cart store the handlers drive.
type CartService interface {
	Items() []domain.CartItem
	TotalQuantity() int
	AddItem(ctx context.Context, productID string) error
	RemoveItem(ctx context.Context, productID string) error
	SetDeliveryOption(ctx context.Context, productID, deliveryOptionID string) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Clear(ctx context.Context) error
}

type CartHandler struct {
	cart   CartService
	loader catalog.Loader
	logger *slog.Logger
}

func NewCartHandler(cart CartService, loader catalog.Loader, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, loader: loader, logger: logger}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type SetDeliveryOptionRequestDTO struct {
	DeliveryOptionID string `json:"delivery_option_id"`
}

type CartResponseDTO struct {
	Items         []domain.CartItem `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int) {
	items := h.cart.Items()
	if items == nil {
		items = []domain.CartItem{}
	}
	respondJSON(w, status, CartResponseDTO{Items: items, TotalQuantity: h.cart.TotalQuantity()})
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	cat, err := catalog.Build(r.Context(), h.loader)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load products", slog.Any("error", err))
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "products are not available right now")
		return
	}
	if _, err := cat.Product(req.ProductID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if err := h.cart.AddItem(r.Context(), req.ProductID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.respondCart(w, http.StatusCreated)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")
	if err := h.cart.RemoveItem(r.Context(), productID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 1 || req.Quantity > cart.MaxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), productID, req.Quantity); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

// PUT /api/v1/cart/items/{product_id}/delivery-option
func (h *CartHandler) SetDeliveryOption(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	var req SetDeliveryOptionRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.DeliveryOptionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_delivery_option", "delivery_option_id is required")
		return
	}

	if err := h.cart.SetDeliveryOption(r.Context(), productID, req.DeliveryOptionID); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context()); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	h.respondCart(w, http.StatusOK)
}
