package http

import (
	"log/slog"
	"net/http"

	"github.com/fjod/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type OrderHistory interface {
	List() []domain.Order
	Get(id string) (domain.Order, error)
}

type OrdersHandler struct {
	orders OrderHistory
	logger *slog.Logger
}

func NewOrdersHandler(orders OrderHistory, logger *slog.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, logger: logger}
}

// GET /api/v1/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	list := h.orders.List()
	dtos := make([]OrderResponseDTO, 0, len(list))
	for _, o := range list {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "order_id")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "missing_order_id", "order_id is required")
		return
	}

	order, err := h.orders.Get(orderID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, convertOrder(order))
}
