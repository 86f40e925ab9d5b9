package domain

type Rating struct {
	Stars float64 `json:"stars"`
	Count int     `json:"count"`
}

// Product is catalog reference data. Prices are in cents.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Rating     Rating `json:"rating"`
	PriceCents int64  `json:"priceCents"`
}
