package repository

import (
	"context"

	"audiobook-storefront/models"
)

// KeyValueRepositoryInterface is the storage port: string keys mapped to opaque values.
// Get reports ok=false for a missing key.
type KeyValueRepositoryInterface interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CartRepositoryInterface defines the contract for the persisted local cart
type CartRepositoryInterface interface {
	Load(ctx context.Context) ([]models.CartLine, error)
	Save(ctx context.Context, lines []models.CartLine) error
	Clear(ctx context.Context) error
}

// SessionRepositoryInterface defines the contract for the persisted auth session
type SessionRepositoryInterface interface {
	Get(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Clear(ctx context.Context) error
}
