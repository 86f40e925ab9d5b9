package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/delivery"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/money"
	"github.com/fjod/storefront/internal/pricing"
)

// CheckoutService is implemented by checkout.Orchestrator.
type CheckoutService interface {
	State() checkout.State
	Start(ctx context.Context) error
	OrderSummary() ([]checkout.LineSummary, error)
	PaymentSummary() (pricing.Breakdown, error)
	PlaceOrder(ctx context.Context) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	logger   *slog.Logger
}

func NewCheckoutHandler(svc CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc, logger: logger}
}

type DeliveryChoiceDTO struct {
	ID           string `json:"id"`
	DeliveryDays int    `json:"delivery_days"`
	PriceCents   int64  `json:"price_cents"`
	Price        string `json:"price"`
	DeliveryDate string `json:"delivery_date"`
	Selected     bool   `json:"selected"`
}

type CheckoutLineDTO struct {
	ProductID        string              `json:"product_id"`
	ProductName      string              `json:"product_name"`
	Image            string              `json:"image"`
	Quantity         int                 `json:"quantity"`
	PriceCents       int64               `json:"price_cents"`
	LineTotal        string              `json:"line_total"`
	DeliveryOptionID string              `json:"delivery_option_id"`
	DeliveryDate     string              `json:"delivery_date"`
	DeliveryOptions  []DeliveryChoiceDTO `json:"delivery_options"`
}

type CheckoutResponseDTO struct {
	State   string            `json:"state"`
	Items   []CheckoutLineDTO `json:"items"`
	Payment pricing.Formatted `json:"payment"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	state := h.checkout.State()
	if !state.HasReferenceData() || state == checkout.StateSubmitted {
		if err := h.checkout.Start(r.Context()); err != nil && !errors.Is(err, checkout.ErrInvalidState) {
			h.logger.ErrorContext(r.Context(), "failed to load checkout", slog.Any("error", err))
			respondError(w, http.StatusBadGateway, "checkout_unavailable", "checkout is not available right now")
			return
		}
	}

	lines, err := h.checkout.OrderSummary()
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	payment, err := h.checkout.PaymentSummary()
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	items := make([]CheckoutLineDTO, 0, len(lines))
	for _, l := range lines {
		items = append(items, convertLine(l))
	}
	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		State:   h.checkout.State().String(),
		Items:   items,
		Payment: payment.Format(),
	})
}

func convertLine(l checkout.LineSummary) CheckoutLineDTO {
	choices := make([]DeliveryChoiceDTO, 0, len(l.Choices))
	for _, c := range l.Choices {
		choices = append(choices, DeliveryChoiceDTO{
			ID:           c.Option.ID,
			DeliveryDays: c.Option.DeliveryDays,
			PriceCents:   c.Option.PriceCents,
			Price:        shippingLabel(c.Option.PriceCents),
			DeliveryDate: delivery.FormatDeliveryDate(c.Date),
			Selected:     c.Selected,
		})
	}
	return CheckoutLineDTO{
		ProductID:        l.Product.ID,
		ProductName:      l.Product.Name,
		Image:            l.Product.Image,
		Quantity:         l.Quantity,
		PriceCents:       l.Product.PriceCents,
		LineTotal:        money.FormatCents(l.LineTotalCents),
		DeliveryOptionID: l.DeliveryOption.ID,
		DeliveryDate:     delivery.FormatDeliveryDate(l.DeliveryDate),
		DeliveryOptions:  choices,
	}
}

func shippingLabel(cents int64) string {
	if cents == 0 {
		return "FREE Shipping"
	}
	return "$" + money.FormatCents(cents) + " - Shipping"
}

// POST /api/v1/checkout/orders
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if !h.checkout.State().HasReferenceData() {
		if err := h.checkout.Start(r.Context()); err != nil && !errors.Is(err, checkout.ErrInvalidState) {
			h.logger.ErrorContext(r.Context(), "failed to load checkout", slog.Any("error", err))
			respondError(w, http.StatusBadGateway, "checkout_unavailable", "checkout is not available right now")
			return
		}
	}

	order, err := h.checkout.PlaceOrder(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, convertOrder(*order))
}

// OrderResponseDTO is shared with the orders endpoints.
type OrderResponseDTO struct {
	ID             string            `json:"id"`
	OrderTime      time.Time         `json:"order_time"`
	TotalCostCents int64             `json:"total_cost_cents"`
	Total          string            `json:"total"`
	Products       []OrderProductDTO `json:"products"`
}

type OrderProductDTO struct {
	ProductID             string    `json:"product_id"`
	Quantity              int       `json:"quantity"`
	EstimatedDeliveryTime time.Time `json:"estimated_delivery_time"`
}

func convertOrder(o domain.Order) OrderResponseDTO {
	products := make([]OrderProductDTO, 0, len(o.Products))
	for _, p := range o.Products {
		products = append(products, OrderProductDTO{
			ProductID:             p.ProductID,
			Quantity:              p.Quantity,
			EstimatedDeliveryTime: p.EstimatedDeliveryTime,
		})
	}
	return OrderResponseDTO{
		ID:             o.ID,
		OrderTime:      o.OrderTime,
		TotalCostCents: o.TotalCostCents,
		Total:          money.FormatCents(o.TotalCostCents),
		Products:       products,
	}
}
