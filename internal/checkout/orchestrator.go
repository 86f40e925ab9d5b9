package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/delivery"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSubmitTimeout  = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	defaultRecordTimeout  = 5 * time.Second
)

type CartStore interface {
	Load(ctx context.Context) error
	Items() []domain.CartItem
}

type OrderHistory interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, order domain.Order) error
}

type Options struct {
	Catalog       catalog.Loader
	Delivery      *delivery.Registry
	Cart          CartStore
	Orders        OrderHistory
	Client        OrderClient
	Publisher     Publisher
	SubmitTimeout time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// Orchestrator drives one checkout page: load reference data and the cart,
// render summaries, place the order.
type Orchestrator struct {
	loader        catalog.Loader
	delivery      *delivery.Registry
	cart          CartStore
	orders        OrderHistory
	client        OrderClient
	publisher     Publisher
	submitTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu        sync.RWMutex
	state     State
	catalog   *catalog.Catalog
	lastErr   error
	lastOrder *domain.Order
}

func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		loader:        opts.Catalog,
		delivery:      opts.Delivery,
		cart:          opts.Cart,
		orders:        opts.Orders,
		client:        opts.Client,
		publisher:     opts.Publisher,
		submitTimeout: opts.SubmitTimeout,
		logger:        opts.Logger,
		now:           opts.Now,
		state:         StateIdle,
	}
	if o.delivery == nil {
		o.delivery = delivery.NewRegistry()
	}
	if o.publisher == nil {
		o.publisher = NopPublisher{}
	}
	if o.submitTimeout <= 0 {
		o.submitTimeout = defaultSubmitTimeout
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// LastError is the cause of the most recent failed load or submission.
func (o *Orchestrator) LastError() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastErr
}

func (o *Orchestrator) LastOrder() (domain.Order, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.lastOrder == nil {
		return domain.Order{}, false
	}
	return *o.lastOrder, true
}

// setState must be called with mu held.
func (o *Orchestrator) setState(ctx context.Context, next State) {
	o.logger.DebugContext(ctx, "checkout state change",
		slog.String("from", o.state.String()), slog.String("to", next.String()))
	o.state = next
}

// Start loads the catalog, the cart and the order history concurrently and
// moves to Ready once all of them succeeded. Any failure leaves the
// orchestrator Idle.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateLoadingReferenceData || o.state == StateSubmitting {
		state := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: cannot load checkout while %s", ErrInvalidState, state)
	}
	o.setState(ctx, StateLoadingReferenceData)
	o.mu.Unlock()

	var cat *catalog.Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := catalog.Build(gctx, o.loader)
		if err != nil {
			return err
		}
		cat = c
		return nil
	})
	g.Go(func() error {
		return o.cart.Load(gctx)
	})
	g.Go(func() error {
		return o.orders.Load(gctx)
	})
	err := g.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.catalog = nil
		o.lastErr = err
		o.setState(ctx, StateIdle)
		o.logger.ErrorContext(ctx, "failed to load checkout", slog.Any("error", err))
		return fmt.Errorf("failed to load checkout: %w", err)
	}

	o.catalog = cat
	o.lastErr = nil
	o.setState(ctx, StateReady)
	o.logger.InfoContext(ctx, "checkout ready",
		slog.Int("products", cat.Len()), slog.Int("cart_items", len(o.cart.Items())))
	return nil
}

func (o *Orchestrator) referenceData() (*catalog.Catalog, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.state.HasReferenceData() || o.catalog == nil {
		return nil, fmt.Errorf("%w: checkout is %s", ErrInvalidState, o.state)
	}
	return o.catalog, nil
}

// Catalog returns the loaded catalog, or ErrInvalidState before Start.
func (o *Orchestrator) Catalog() (*catalog.Catalog, error) {
	return o.referenceData()
}

// PaymentSummary prices the current cart.
func (o *Orchestrator) PaymentSummary() (pricing.Breakdown, error) {
	cat, err := o.referenceData()
	if err != nil {
		return pricing.Breakdown{}, err
	}
	return pricing.Calculate(o.cart.Items(), cat, o.delivery)
}

// OrderSummary describes each cart line as the checkout page shows it.
func (o *Orchestrator) OrderSummary() ([]LineSummary, error) {
	cat, err := o.referenceData()
	if err != nil {
		return nil, err
	}
	return buildOrderSummary(o.cart.Items(), cat, o.delivery, o.now())
}

// PlaceOrder submits the cart once. On failure the cart is left as it was,
// the orchestrator goes back to Ready and the error wraps ErrSubmitFailed.
// There is no automatic retry.
func (o *Orchestrator) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	o.mu.Lock()
	switch o.state {
	case StateReady:
	case StateSubmitting:
		o.mu.Unlock()
		return nil, ErrSubmissionInProgress
	default:
		state := o.state
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot place order while %s", ErrInvalidState, state)
	}
	o.setState(ctx, StateSubmitting)
	cat := o.catalog
	o.mu.Unlock()

	items := o.cart.Items()
	if len(items) == 0 {
		o.backToReady(ctx, ErrEmptyCart)
		return nil, ErrEmptyCart
	}
	if _, err := pricing.Calculate(items, cat, o.delivery); err != nil {
		o.backToReady(ctx, err)
		return nil, err
	}

	sctx, cancel := context.WithTimeout(ctx, o.submitTimeout)
	order, err := o.client.SubmitOrder(sctx, items)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrNetwork) {
			err = fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		o.submitFailed(ctx, err)
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	// The endpoint has accepted the order at this point. Recording it must
	// outlive the caller, and a local history write failure must not invite
	// a second submission.
	rctx, rcancel := context.WithTimeout(context.WithoutCancel(ctx), defaultRecordTimeout)
	if err := o.orders.Add(rctx, *order); err != nil {
		o.logger.ErrorContext(ctx, "order placed but not recorded locally",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}
	rcancel()

	pctx, pcancel := context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTimeout)
	if err := o.publisher.PublishOrderPlaced(pctx, *order); err != nil {
		o.logger.WarnContext(ctx, "failed to publish order placed event",
			slog.String("order_id", order.ID), slog.Any("error", err))
	}
	pcancel()

	o.mu.Lock()
	o.lastOrder = order
	o.lastErr = nil
	o.setState(ctx, StateSubmitted)
	o.mu.Unlock()

	o.logger.InfoContext(ctx, "order placed", slog.String("order_id", order.ID))
	return order, nil
}

func (o *Orchestrator) submitFailed(ctx context.Context, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = err
	o.setState(ctx, StateSubmitFailed)
	o.logger.ErrorContext(ctx, "order submission failed", slog.Any("error", err))
	o.setState(ctx, StateReady)
}

func (o *Orchestrator) backToReady(ctx context.Context, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = err
	o.setState(ctx, StateReady)
}
