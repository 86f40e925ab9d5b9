package delivery

import (
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
)

const DefaultOptionID = "1"

// dateLayout matches the checkout page: "Tuesday, June 21".
const dateLayout = "Monday, January 2"

var standardOptions = []domain.DeliveryOption{
	{ID: "1", DeliveryDays: 7, PriceCents: 0},
	{ID: "2", DeliveryDays: 3, PriceCents: 499},
	{ID: "3", DeliveryDays: 1, PriceCents: 999},
}

// Registry holds the shipping tiers. The first tier is the default and is
// returned by Get for ids it does not know.
type Registry struct {
	options []domain.DeliveryOption
}

func NewRegistry() *Registry {
	return NewRegistryWithOptions(standardOptions)
}

// NewRegistryWithOptions panics on an empty tier list: a registry without a
// default cannot serve Get.
func NewRegistryWithOptions(options []domain.DeliveryOption) *Registry {
	if len(options) == 0 {
		panic("delivery: at least one delivery option is required")
	}
	cp := make([]domain.DeliveryOption, len(options))
	copy(cp, options)
	return &Registry{options: cp}
}

func (r *Registry) Options() []domain.DeliveryOption {
	cp := make([]domain.DeliveryOption, len(r.options))
	copy(cp, r.options)
	return cp
}

func (r *Registry) Default() domain.DeliveryOption {
	return r.options[0]
}

// Lookup is the strict variant of Get.
func (r *Registry) Lookup(id string) (domain.DeliveryOption, error) {
	for _, o := range r.options {
		if o.ID == id {
			return o, nil
		}
	}
	return domain.DeliveryOption{}, fmt.Errorf("%w: %q", domain.ErrDeliveryOptionNotFound, id)
}

// Get returns the matching option or the default one, so a stale id in a
// stored cart still renders.
func (r *Registry) Get(id string) domain.DeliveryOption {
	o, err := r.Lookup(id)
	if err != nil {
		return r.Default()
	}
	return o
}

func DeliveryDate(option domain.DeliveryOption, now time.Time) time.Time {
	return now.AddDate(0, 0, option.DeliveryDays)
}

func FormatDeliveryDate(t time.Time) string {
	return t.Format(dateLayout)
}
