package service

import (
	"context"

	"audiobook-storefront/models"
)

// CoverServiceInterface defines the contract for cover thumbnails
type CoverServiceInterface interface {
	Cover(ctx context.Context, itemID int) ([]byte, error)
	Prefetch(ctx context.Context, items []models.CatalogItem) error
}
