package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

var (
	ErrProductNotFound        = fmt.Errorf("product %w", ErrNotFound)
	ErrDeliveryOptionNotFound = fmt.Errorf("delivery option %w", ErrNotFound)
	ErrCartItemNotFound       = fmt.Errorf("item %w in cart", ErrNotFound)
	ErrInvalidQuantity        = errors.New("quantity must be between 1 and 99")
)
