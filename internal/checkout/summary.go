package checkout

import (
	"time"

	"github.com/fjod/storefront/internal/delivery"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/pricing"
)

type DeliveryChoice struct {
	Option   domain.DeliveryOption
	Date     time.Time
	Selected bool
}

type LineSummary struct {
	Product        domain.Product
	Quantity       int
	DeliveryOption domain.DeliveryOption
	DeliveryDate   time.Time
	LineTotalCents int64
	Choices        []DeliveryChoice
}

func buildOrderSummary(items []domain.CartItem, products pricing.ProductLookup, options *delivery.Registry, now time.Time) ([]LineSummary, error) {
	lines := make([]LineSummary, 0, len(items))
	for _, it := range items {
		p, err := products.Product(it.ProductID)
		if err != nil {
			return nil, err
		}
		selected := options.Get(it.DeliveryOptionID)

		choices := make([]DeliveryChoice, 0, len(options.Options()))
		for _, opt := range options.Options() {
			choices = append(choices, DeliveryChoice{
				Option:   opt,
				Date:     delivery.DeliveryDate(opt, now),
				Selected: opt.ID == selected.ID,
			})
		}

		lines = append(lines, LineSummary{
			Product:        p,
			Quantity:       it.Quantity,
			DeliveryOption: selected,
			DeliveryDate:   delivery.DeliveryDate(selected, now),
			LineTotalCents: pricing.LineTotal(it, p),
			Choices:        choices,
		})
	}
	return lines, nil
}
