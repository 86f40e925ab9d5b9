package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/storefront/internal/delivery"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

const (
	DefaultKey  = "cart"
	MaxQuantity = 99
)

// defaultItems is what a first visit sees instead of an empty cart.
var defaultItems = []domain.CartItem{
	{ProductID: "e43638ce-6aa0-4b85-b27f-e1d07eb678c6", Quantity: 2, DeliveryOptionID: "1"},
	{ProductID: "15b6fc6f-327a-4ec4-896f-486349e85a3d", Quantity: 1, DeliveryOptionID: "2"},
}

// DeliveryOptions validates delivery option ids chosen by the shopper and
// names the tier new lines start with.
type DeliveryOptions interface {
	Lookup(id string) (domain.DeliveryOption, error)
	Default() domain.DeliveryOption
}

// Store owns the cart of one session and writes a snapshot to the backing
// store after every mutation.
type Store struct {
	mu      sync.RWMutex
	store   storage.Store
	key     string
	options DeliveryOptions
	logger  *slog.Logger
	items   []domain.CartItem
}

func NewStore(store storage.Store, key string, options DeliveryOptions, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		store:   store,
		key:     key,
		options: options,
		logger:  logger,
	}
}

// Load replaces the in-memory cart with the stored snapshot. A missing or
// unreadable snapshot installs the default cart and persists it at once.
// Lines without a product id or with a non-positive quantity are dropped and
// the cleaned cart is written back.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, s.key)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	if err == nil {
		items, dropped, decodeErr := decode(raw)
		if decodeErr == nil {
			s.items = items
			if len(dropped) == 0 {
				return nil
			}
			s.logger.WarnContext(ctx, "dropped invalid cart lines",
				slog.String("key", s.key), slog.Int("dropped", len(dropped)),
				slog.Any("lines", dropped))
			return s.persist(ctx)
		}
		s.logger.WarnContext(ctx, "stored cart is unreadable, using default cart",
			slog.String("key", s.key), slog.Any("error", decodeErr))
	}

	s.items = cloneItems(defaultItems)
	return s.persist(ctx)
}

func decode(raw string) (items, dropped []domain.CartItem, err error) {
	var stored []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, nil, err
	}
	if stored == nil {
		return nil, nil, errors.New("cart snapshot is null")
	}
	items = make([]domain.CartItem, 0, len(stored))
	for _, it := range stored {
		if it.ProductID == "" || it.Quantity <= 0 {
			dropped = append(dropped, it)
			continue
		}
		items = append(items, it)
	}
	return items, dropped, nil
}

// AddItem bumps the quantity of an existing line or appends a new one with
// quantity 1 and the default delivery option. A line already at MaxQuantity
// is left alone and ErrInvalidQuantity is returned.
func (s *Store) AddItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, func() error {
		if i := s.indexOf(productID); i >= 0 {
			if s.items[i].Quantity >= MaxQuantity {
				return fmt.Errorf("%w: %q already at %d", domain.ErrInvalidQuantity, productID, MaxQuantity)
			}
			s.items[i].Quantity++
			return nil
		}
		s.items = append(s.items, domain.CartItem{
			ProductID:        productID,
			Quantity:         1,
			DeliveryOptionID: s.defaultOptionID(),
		})
		return nil
	})
}

// RemoveItem drops the line for productID. Removing an absent product is not
// an error.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	return s.mutate(ctx, func() error {
		kept := make([]domain.CartItem, 0, len(s.items))
		for _, it := range s.items {
			if it.ProductID != productID {
				kept = append(kept, it)
			}
		}
		s.items = kept
		return nil
	})
}

func (s *Store) SetDeliveryOption(ctx context.Context, productID, deliveryOptionID string) error {
	return s.mutate(ctx, func() error {
		i := s.indexOf(productID)
		if i < 0 {
			return fmt.Errorf("%w: %q", domain.ErrCartItemNotFound, productID)
		}
		if s.options != nil {
			if _, err := s.options.Lookup(deliveryOptionID); err != nil {
				return err
			}
		}
		s.items[i].DeliveryOptionID = deliveryOptionID
		return nil
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 || quantity > MaxQuantity {
		return domain.ErrInvalidQuantity
	}
	return s.mutate(ctx, func() error {
		i := s.indexOf(productID)
		if i < 0 {
			return fmt.Errorf("%w: %q", domain.ErrCartItemNotFound, productID)
		}
		s.items[i].Quantity = quantity
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func() error {
		s.items = []domain.CartItem{}
		return nil
	})
}

// mutate applies fn and persists the result. The in-memory cart is restored
// if fn or the write fails, so memory never runs ahead of the snapshot.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := cloneItems(s.items)
	if err := fn(); err != nil {
		s.items = prev
		return err
	}
	if err := s.persist(ctx); err != nil {
		s.items = prev
		return err
	}
	return nil
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

func (s *Store) TotalQuantity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *Store) defaultOptionID() string {
	if s.options == nil {
		return delivery.DefaultOptionID
	}
	return s.options.Default().ID
}

func (s *Store) indexOf(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist cart", slog.String("key", s.key), slog.Any("error", err))
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	cp := make([]domain.CartItem, len(items))
	copy(cp, items)
	return cp
}
