package domain

type DeliveryOption struct {
	ID           string `json:"id"`
	DeliveryDays int    `json:"deliveryDays"`
	PriceCents   int64  `json:"priceCents"`
}
