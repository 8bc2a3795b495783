package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"audiobook-storefront/models"
)

// OrderGateway talks to the orders service
type OrderGateway struct {
	client client
}

// NewOrderGateway creates an OrderGateway for baseURL
func NewOrderGateway(baseURL string, httpClient *http.Client, logger *zap.Logger) *OrderGateway {
	return &OrderGateway{client: newClient(baseURL, httpClient, logger)}
}

var _ OrderGatewayInterface = (*OrderGateway)(nil)

// Submit handles POST /orders with a bearer token
func (g *OrderGateway) Submit(ctx context.Context, token string, req models.OrderRequest) (models.OrderResult, error) {
	const op = "submit order"
	if token == "" {
		return nil, models.ErrNotAuthenticated
	}

	data, err := g.client.do(ctx, request{
		Op:      op,
		Method:  http.MethodPost,
		Path:    "/orders",
		Body:    req,
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		return nil, err
	}

	result := models.OrderResult{}
	if len(data) > 0 {
		// The body is opaque; anything that is not a JSON object is kept verbatim.
		if err := json.Unmarshal(data, &result); err != nil {
			result = models.OrderResult{"raw": string(data)}
		}
	}
	if result == nil {
		result = models.OrderResult{}
	}
	return result, nil
}
