package gateway

import (
	"context"

	"audiobook-storefront/models"
)

// CatalogGatewayInterface defines the contract for the remote catalog service
type CatalogGatewayInterface interface {
	ListItems(ctx context.Context) ([]models.CatalogItem, error)
	Search(ctx context.Context, term string, limit int) ([]models.CatalogItem, error)
	GetItem(ctx context.Context, id int) (*models.CatalogItem, error)
}

// PricingGatewayInterface defines the contract for the remote cart pricing service
type PricingGatewayInterface interface {
	Calculate(ctx context.Context, req models.PricingRequest) (*models.PricingBreakdown, error)
}

// OrderGatewayInterface defines the contract for the remote orders service
type OrderGatewayInterface interface {
	Submit(ctx context.Context, token string, req models.OrderRequest) (models.OrderResult, error)
}

// AuthGatewayInterface defines the contract for the remote auth service
type AuthGatewayInterface interface {
	Login(ctx context.Context, username, password string) (*models.TokenResponse, error)
}
