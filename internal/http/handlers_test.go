package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/delivery"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	socksID      = "e43638ce-6aa0-4b85-b27f-e1d07eb678c6"
	basketballID = "15b6fc6f-327a-4ec4-896f-486349e85a3d"
)

type stubOrderClient struct {
	order *domain.Order
	err   error
}

func (s *stubOrderClient) SubmitOrder(_ context.Context, items []domain.CartItem) (*domain.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	o := *s.order
	return &o, nil
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) ([]domain.Product, error) {
	return nil, errors.New("catalog endpoint down")
}

type testServer struct {
	handler http.Handler
	cart    *cart.Store
	orders  *orders.Store
	client  *stubOrderClient
}

func setupTestServer(t *testing.T, loader catalog.Loader) *testServer {
	t.Helper()
	if loader == nil {
		loader = catalog.NewCachedLoader(catalog.NewStaticLoader())
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := storage.NewMemoryStore()
	registry := delivery.NewRegistry()

	cartStore := cart.NewStore(mem, "", registry, logger)
	require.NoError(t, cartStore.Load(context.Background()))
	orderStore := orders.NewStore(mem, "", logger)

	client := &stubOrderClient{order: &domain.Order{
		ID:             "27cba69d-4c3d-4098-b42d-ac7fa62b7664",
		OrderTime:      time.Date(2024, time.June, 14, 10, 0, 0, 0, time.UTC),
		TotalCostCents: 5251,
		Products: []domain.OrderProduct{
			{ProductID: socksID, Quantity: 2},
			{ProductID: basketballID, Quantity: 1},
		},
	}}
	orch := checkout.NewOrchestrator(checkout.Options{
		Catalog:  loader,
		Delivery: registry,
		Cart:     cartStore,
		Orders:   orderStore,
		Client:   client,
		Logger:   logger,
	})

	handler := NewRouter(Handlers{
		Products: NewProductHandler(loader, logger),
		Cart:     NewCartHandler(cartStore, loader, logger),
		Checkout: NewCheckoutHandler(orch, logger),
		Orders:   NewOrdersHandler(orderStore, logger),
	}, logger, 5*time.Second)

	return &testServer{handler: handler, cart: cartStore, orders: orderStore, client: client}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestID_Propagated(t *testing.T) {
	s := setupTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestListProducts(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/v1/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProductsResponse](t, rec)
	require.Len(t, resp.Products, 5)
	assert.Equal(t, socksID, resp.Products[0].ID)
	assert.Equal(t, "10.90", resp.Products[0].Price)
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	s := setupTestServer(t, failingLoader{})
	rec := s.do(t, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "catalog_unavailable", decode[ErrorResponse](t, rec).Code)
}

func TestGetCart_Default(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[CartResponseDTO](t, rec)
	assert.Equal(t, 3, resp.TotalQuantity)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, socksID, resp.Items[0].ProductID)
}

func TestAddItem(t *testing.T) {
	s := setupTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+socksID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[CartResponseDTO](t, rec)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.Equal(t, 4, resp.TotalQuantity)
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"invalid json", `{`, http.StatusBadRequest, "invalid_request"},
		{"unknown field", `{"productId":"x"}`, http.StatusBadRequest, "invalid_request"},
		{"missing id", `{}`, http.StatusBadRequest, "invalid_product_id"},
		{"unknown product", `{"product_id":"nope"}`, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, nil)
			rec := s.do(t, http.MethodPost, "/api/v1/cart/items", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, rec).Code)
			assert.Len(t, s.cart.Items(), 2)
		})
	}
}

func TestRemoveItem(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodDelete, "/api/v1/cart/items/"+socksID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[CartResponseDTO](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, basketballID, resp.Items[0].ProductID)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/items/"+socksID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateQuantity(t *testing.T) {
	s := setupTestServer(t, nil)

	rec := s.do(t, http.MethodPut, "/api/v1/cart/items/"+basketballID, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[CartResponseDTO](t, rec).TotalQuantity)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/"+basketballID, `{"quantity":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/unknown", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetDeliveryOption(t *testing.T) {
	s := setupTestServer(t, nil)

	rec := s.do(t, http.MethodPut, "/api/v1/cart/items/"+socksID+"/delivery-option", `{"delivery_option_id":"3"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", s.cart.Items()[0].DeliveryOptionID)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/unknown/delivery-option", `{"delivery_option_id":"3"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/cart/items/"+socksID+"/delivery-option", `{"delivery_option_id":"9"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "3", s.cart.Items()[0].DeliveryOptionID)
}

func TestClearCart(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[CartResponseDTO](t, rec)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
	assert.Zero(t, resp.TotalQuantity)
}

func TestGetCheckout(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[CheckoutResponseDTO](t, rec)
	assert.Equal(t, checkout.StateReady.String(), resp.State)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "21.80", resp.Items[0].LineTotal)
	require.Len(t, resp.Items[0].DeliveryOptions, 3)
	assert.Equal(t, "FREE Shipping", resp.Items[0].DeliveryOptions[0].Price)
	assert.Equal(t, "$4.99 - Shipping", resp.Items[0].DeliveryOptions[1].Price)
	assert.True(t, resp.Items[1].DeliveryOptions[1].Selected)

	assert.Equal(t, 3, resp.Payment.ItemCount)
	assert.Equal(t, "42.75", resp.Payment.ItemsTotal)
	assert.Equal(t, "4.99", resp.Payment.ShippingTotal)
	assert.Equal(t, "47.74", resp.Payment.TotalBeforeTax)
	assert.Equal(t, "4.77", resp.Payment.EstimatedTax)
	assert.Equal(t, "52.51", resp.Payment.GrandTotal)
}

func TestGetCheckout_CatalogUnavailable(t *testing.T) {
	s := setupTestServer(t, failingLoader{})
	rec := s.do(t, http.MethodGet, "/api/v1/checkout", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	s := setupTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/orders", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[OrderResponseDTO](t, rec)
	assert.Equal(t, "27cba69d-4c3d-4098-b42d-ac7fa62b7664", order.ID)
	assert.Equal(t, "52.51", order.Total)

	rec = s.do(t, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]OrderResponseDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, order.ID, list[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[OrderResponseDTO](t, rec).Products, 2)
}

func TestPlaceOrder_FailureIsGeneric(t *testing.T) {
	s := setupTestServer(t, nil)
	s.client.err = &checkout.StatusError{StatusCode: http.StatusServiceUnavailable}

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/orders", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "order_failed", resp.Code)
	assert.Equal(t, submitFailedMessage, resp.Error)

	assert.Len(t, s.cart.Items(), 2)
	assert.Empty(t, s.orders.List())
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	s := setupTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/v1/cart", "").Code)

	rec := s.do(t, http.MethodPost, "/api/v1/checkout/orders", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_cart", decode[ErrorResponse](t, rec).Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/v1/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrders_Empty(t *testing.T) {
	s := setupTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestAddItem_AtMaxQuantity(t *testing.T) {
	s := setupTestServer(t, nil)
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPut, "/api/v1/cart/items/"+socksID, `{"quantity":99}`).Code)

	rec := s.do(t, http.MethodPost, "/api/v1/cart/items", `{"product_id":"`+socksID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_quantity", decode[ErrorResponse](t, rec).Code)
	assert.Equal(t, 99, s.cart.Items()[0].Quantity)
}
