package domain

import "time"

type OrderProduct struct {
	ProductID             string    `json:"productId"`
	Quantity              int       `json:"quantity"`
	EstimatedDeliveryTime time.Time `json:"estimatedDeliveryTime"`
}

// Order is the record returned by the order endpoint after a successful
// submission.
type Order struct {
	ID             string         `json:"id"`
	OrderTime      time.Time      `json:"orderTime"`
	TotalCostCents int64          `json:"totalCostCents"`
	Products       []OrderProduct `json:"products"`
}
