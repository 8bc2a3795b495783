package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
	"audiobook-storefront/repository"
)

// Checkout submits the stored cart as an order
type Checkout struct {
	store    *Store
	sessions repository.SessionRepositoryInterface
	orders   gateway.OrderGatewayInterface
	logger   *zap.Logger
}

// NewCheckout creates a new Checkout
func NewCheckout(store *Store, sessions repository.SessionRepositoryInterface, orders gateway.OrderGatewayInterface, logger *zap.Logger) *Checkout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checkout{store: store, sessions: sessions, orders: orders, logger: logger}
}

// Submit places an order for the cart. It needs a non-empty cart and a stored auth
// token; both are checked before any network call. A successful order clears the
// cart, a failed one leaves it untouched.
func (c *Checkout) Submit(ctx context.Context) (models.OrderResult, error) {
	lines, err := c.store.Lines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, models.ErrEmptyCart
	}

	session, err := c.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !session.Authenticated() {
		return nil, models.ErrNotAuthenticated
	}

	priced, dropped := BuildPricingRequest(lines)
	for _, line := range dropped {
		c.logger.Warn("cart line has no valid item id, left out of the order", zap.String("id", string(line.ID)))
	}
	if len(priced.Items) == 0 {
		return nil, models.NewValidationError("cart", "no cart line has a valid item id")
	}

	result, err := c.orders.Submit(ctx, session.Token, models.OrderRequest{Items: priced.Items})
	if err != nil {
		c.logger.Error("order submission failed", zap.Error(err))
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	// The order is placed; a failure to clear is only logged.
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error("order placed but cart could not be cleared", zap.Error(err))
	}
	c.logger.Info("order placed", zap.Int("lines", len(priced.Items)), zap.String("email", session.Email))
	return result, nil
}
