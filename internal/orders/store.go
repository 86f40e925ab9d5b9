package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/storage"
)

const DefaultKey = "orders"

var (
	ErrOrderNotFound = fmt.Errorf("order %w", domain.ErrNotFound)
	ErrInvalidOrder  = errors.New("order must have an id")
)

// Store is the placed-order history, most recent first.
type Store struct {
	mu     sync.RWMutex
	store  storage.Store
	key    string
	logger *slog.Logger
	orders []domain.Order
}

func NewStore(store storage.Store, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{store: store, key: key, logger: logger}
}

// Load reads the stored history. Nothing stored, or something unreadable,
// means no orders yet.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, s.key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		s.orders = []domain.Order{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load orders: %w", err)
	}

	var orders []domain.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil || orders == nil {
		s.logger.WarnContext(ctx, "stored orders are unreadable, starting with empty history",
			slog.String("key", s.key), slog.Any("error", err))
		orders = []domain.Order{}
	}
	s.orders = orders
	return nil
}

// Add puts the order at the front of the history and persists it.
func (s *Store) Add(ctx context.Context, order domain.Order) error {
	if order.ID == "" {
		return ErrInvalidOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Order, 0, len(s.orders)+1)
	next = append(next, order)
	next = append(next, s.orders...)

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal orders failed: %w", err)
	}
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("failed to persist orders: %w", err)
	}

	s.orders = next
	return nil
}

func (s *Store) List() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]domain.Order, len(s.orders))
	copy(cp, s.orders)
	return cp
}

func (s *Store) Get(id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: %q", ErrOrderNotFound, id)
}
