package models

// PricingRequestLine is one line sent to the cart pricing service
type PricingRequestLine struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// PricingRequest is the body of POST /cart/calculate
type PricingRequest struct {
	Items []PricingRequestLine `json:"items"`
}

// PricingLine represents pricing information for a single cart line
type PricingLine struct {
	ItemID       int64   `json:"itemId"`
	Title        string  `json:"title"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"totalPrice"`
}

// PricingBreakdown represents the complete pricing calculation result.
// Items and TotalPrice are nil when the service omitted them.
type PricingBreakdown struct {
	Items      []PricingLine `json:"items"`
	TotalPrice *float64      `json:"totalPrice"`
}
