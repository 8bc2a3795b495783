package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"audiobook-storefront/models"
)

// CartKey is the storage key holding the JSON array of cart lines
const CartKey = "cart"

// CartRepository persists the local cart as a JSON array under CartKey
type CartRepository struct {
	store KeyValueRepositoryInterface
}

// NewCartRepository creates a new CartRepository
func NewCartRepository(store KeyValueRepositoryInterface) *CartRepository {
	return &CartRepository{store: store}
}

var _ CartRepositoryInterface = (*CartRepository)(nil)

// Load reads the stored cart. A missing key is an empty cart. Stored entries that do
// not decode as a cart line are left out; only a value that is not a JSON array fails.
func (r *CartRepository) Load(ctx context.Context) ([]models.CartLine, error) {
	data, ok, err := r.store.Get(ctx, CartKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !ok || len(data) == 0 {
		return []models.CartLine{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	lines := make([]models.CartLine, 0, len(raw))
	for _, entry := range raw {
		var line models.CartLine
		if err := json.Unmarshal(entry, &line); err != nil {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Save replaces the stored cart with lines
func (r *CartRepository) Save(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := r.store.Set(ctx, CartKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Clear removes the stored cart
func (r *CartRepository) Clear(ctx context.Context) error {
	if err := r.store.Remove(ctx, CartKey); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
