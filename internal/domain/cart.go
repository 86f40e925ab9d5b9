package domain

// CartItem is one line of the cart. The JSON shape is the persisted snapshot
// format and the body of an order submission.
type CartItem struct {
	ProductID        string `json:"productId"`
	Quantity         int    `json:"quantity"`
	DeliveryOptionID string `json:"deliveryOptionId"`
}
