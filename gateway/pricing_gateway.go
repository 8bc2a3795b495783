package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"audiobook-storefront/models"
)

// PricingGateway talks to the cart pricing service
type PricingGateway struct {
	client client
}

// NewPricingGateway creates a PricingGateway for baseURL
func NewPricingGateway(baseURL string, httpClient *http.Client, logger *zap.Logger) *PricingGateway {
	return &PricingGateway{client: newClient(baseURL, httpClient, logger)}
}

var _ PricingGatewayInterface = (*PricingGateway)(nil)

// Calculate handles POST /cart/calculate. All lines go in one request.
// A response without items or totalPrice is a ShapeError.
func (g *PricingGateway) Calculate(ctx context.Context, req models.PricingRequest) (*models.PricingBreakdown, error) {
	const op = "calculate cart"
	if req.Items == nil {
		req.Items = []models.PricingRequestLine{}
	}

	var breakdown models.PricingBreakdown
	if err := g.client.doJSON(ctx, request{
		Op:     op,
		Method: http.MethodPost,
		Path:   "/cart/calculate",
		Body:   req,
	}, &breakdown); err != nil {
		return nil, err
	}
	if err := ValidateBreakdown(op, &breakdown); err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// ValidateBreakdown checks the fields the cart page needs
func ValidateBreakdown(op string, b *models.PricingBreakdown) error {
	if b == nil {
		return &ShapeError{Op: op, Reason: "empty response"}
	}
	if b.TotalPrice == nil {
		return &ShapeError{Op: op, Reason: "missing totalPrice"}
	}
	if b.Items == nil {
		return &ShapeError{Op: op, Reason: "missing items"}
	}
	return nil
}
