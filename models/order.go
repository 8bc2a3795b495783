package models

// OrderRequest is the body of POST /orders
type OrderRequest struct {
	Items []PricingRequestLine `json:"items"`
}

// OrderResult is the opaque object returned by the orders service
type OrderResult map[string]interface{}
