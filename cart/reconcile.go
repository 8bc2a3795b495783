package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
	"audiobook-storefront/pricing"
)

// NoticeDegraded is shown above a cart priced from the locally cached prices
const NoticeDegraded = "Prices could not be confirmed by the server. Showing the prices saved in your cart."

const opCalculate = "calculate cart"

// BuildPricingRequest maps cart lines to pricing request lines. Lines whose id is not
// a positive integer are returned as dropped.
func BuildPricingRequest(lines []models.CartLine) (req models.PricingRequest, dropped []models.CartLine) {
	req.Items = make([]models.PricingRequestLine, 0, len(lines))
	for _, line := range lines {
		itemID, ok := line.ID.ItemID()
		if !ok {
			dropped = append(dropped, line)
			continue
		}
		req.Items = append(req.Items, models.PricingRequestLine{ItemID: itemID, Quantity: line.Quantity})
	}
	return req, dropped
}

// Resolve maps the pricing call result for lines to an Outcome. An empty cart is Ok
// whatever the call returned. A failed call or a breakdown missing its fields yields
// a Degraded outcome priced from the cached line prices.
func Resolve(lines []models.CartLine, breakdown *models.PricingBreakdown, callErr error) Outcome {
	if len(lines) == 0 {
		return Ok(pricing.Quote{}.View())
	}
	if callErr != nil {
		return Degraded(pricing.LocalQuote(lines).View(), callErr)
	}
	if err := gateway.ValidateBreakdown(opCalculate, breakdown); err != nil {
		return Degraded(pricing.LocalQuote(lines).View(), err)
	}
	return Ok(pricing.RemoteQuote(breakdown, lines).View())
}

// Reconciler prices the stored cart through the pricing service
type Reconciler struct {
	store   *Store
	gateway gateway.PricingGatewayInterface
	logger  *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(store *Store, gw gateway.PricingGatewayInterface, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, gateway: gw, logger: logger}
}

// Run reads the cart and prices it with a single pricing request. Run never returns
// an error; failures are carried by the Outcome.
func (r *Reconciler) Run(ctx context.Context) Outcome {
	lines, err := r.store.Lines(ctx)
	if err != nil {
		r.logger.Error("failed to read cart", zap.Error(err))
		return Failed(fmt.Errorf("failed to read cart: %w", err))
	}
	if len(lines) == 0 {
		return Resolve(lines, nil, nil)
	}

	req, dropped := BuildPricingRequest(lines)
	for _, line := range dropped {
		r.logger.Warn("cart line has no valid item id, not sent for pricing", zap.String("id", string(line.ID)))
	}
	if len(req.Items) == 0 {
		return Resolve(lines, nil, models.NewValidationError("cart", "no cart line has a valid item id"))
	}

	breakdown, err := r.gateway.Calculate(ctx, req)
	if err != nil {
		r.logger.Warn("pricing gateway failed, using local cart", zap.Error(err))
	}
	outcome := Resolve(lines, breakdown, err)
	r.logger.Debug("cart reconciled", zap.String("outcome", string(outcome.Kind)), zap.Float64("total", outcome.View.Total))
	return outcome
}
