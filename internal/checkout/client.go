package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxOrderResponseBytes = 1 << 20

// OrderClient submits a cart to the order endpoint.
type OrderClient interface {
	SubmitOrder(ctx context.Context, items []domain.CartItem) (*domain.Order, error)
}

type submitOrderRequest struct {
	Cart []domain.CartItem `json:"cart"`
}

// HTTPOrderClient posts the cart as JSON. Consecutive network or 5xx failures
// open the breaker and later calls fail fast until it half-opens again.
type HTTPOrderClient struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker[*domain.Order]
}

func NewHTTPOrderClient(endpoint string, client *http.Client) *HTTPOrderClient {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	breaker := gobreaker.NewCircuitBreaker[*domain.Order](gobreaker.Settings{
		Name:    "order-endpoint",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isEndpointFault(err)
		},
	})
	return &HTTPOrderClient{endpoint: endpoint, client: client, breaker: breaker}
}

func isEndpointFault(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return errors.Is(err, ErrNetwork)
}

func (c *HTTPOrderClient) SubmitOrder(ctx context.Context, items []domain.CartItem) (*domain.Order, error) {
	order, err := c.breaker.Execute(func() (*domain.Order, error) {
		return c.submit(ctx, items)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return order, err
}

func (c *HTTPOrderClient) submit(ctx context.Context, items []domain.CartItem) (*domain.Order, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	body, err := json.Marshal(submitOrderRequest{Cart: items})
	if err != nil {
		return nil, fmt.Errorf("marshal order request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxOrderResponseBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var order domain.Order
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOrderResponseBytes)).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseDecode, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrResponseDecode)
	}
	return &order, nil
}

// BreakerState is exposed for health reporting.
func (c *HTTPOrderClient) BreakerState() string {
	return c.breaker.State().String()
}
