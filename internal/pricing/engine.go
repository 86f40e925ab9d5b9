// Package pricing derives the payment summary of a cart. It is a pure
// function of the cart lines and the reference data.
package pricing

import (
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/money"
	"github.com/shopspring/decimal"
)

// TaxRate is the flat estimated tax applied to the total before tax.
var TaxRate = decimal.RequireFromString("0.1")

type ProductLookup interface {
	Product(id string) (domain.Product, error)
}

// OptionLookup resolves delivery options, falling back to a default tier.
type OptionLookup interface {
	Get(id string) domain.DeliveryOption
}

// Breakdown is in cents. Tax and grand total keep their fraction until
// display.
type Breakdown struct {
	ItemCount      int
	ItemsTotal     int64
	ShippingTotal  int64
	TotalBeforeTax int64
	EstimatedTax   decimal.Decimal
	GrandTotal     decimal.Decimal
}

type Formatted struct {
	ItemCount      int    `json:"itemCount"`
	ItemsTotal     string `json:"itemsTotal"`
	ShippingTotal  string `json:"shippingTotal"`
	TotalBeforeTax string `json:"totalBeforeTax"`
	EstimatedTax   string `json:"estimatedTax"`
	GrandTotal     string `json:"grandTotal"`
}

func Calculate(items []domain.CartItem, products ProductLookup, options OptionLookup) (Breakdown, error) {
	var b Breakdown
	for _, it := range items {
		p, err := products.Product(it.ProductID)
		if err != nil {
			return Breakdown{}, fmt.Errorf("failed to price cart: %w", err)
		}
		b.ItemCount += it.Quantity
		b.ItemsTotal += p.PriceCents * int64(it.Quantity)
		// shipping is charged per line, not per unit
		b.ShippingTotal += options.Get(it.DeliveryOptionID).PriceCents
	}

	b.TotalBeforeTax = b.ItemsTotal + b.ShippingTotal
	before := decimal.NewFromInt(b.TotalBeforeTax)
	b.EstimatedTax = before.Mul(TaxRate)
	b.GrandTotal = before.Add(b.EstimatedTax)
	return b, nil
}

// LineTotal is the item cost of a single line, without shipping.
func LineTotal(item domain.CartItem, product domain.Product) int64 {
	return product.PriceCents * int64(item.Quantity)
}

func (b Breakdown) Format() Formatted {
	return Formatted{
		ItemCount:      b.ItemCount,
		ItemsTotal:     money.FormatCents(b.ItemsTotal),
		ShippingTotal:  money.FormatCents(b.ShippingTotal),
		TotalBeforeTax: money.FormatCents(b.TotalBeforeTax),
		EstimatedTax:   money.FormatCurrency(b.EstimatedTax),
		GrandTotal:     money.FormatCurrency(b.GrandTotal),
	}
}
