package controller

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"audiobook-storefront/cart"
	"audiobook-storefront/models"
	"audiobook-storefront/render"
	"audiobook-storefront/service"
)

// CartController serves the cart page, line mutations and checkout
type CartController struct {
	pages
}

// NewCartController creates a new CartController
func NewCartController(storefront service.StorefrontServiceInterface, renderer render.Renderer, logger *zap.Logger) *CartController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartController{pages: pages{storefront: storefront, renderer: renderer, logger: logger}}
}

// ShowCart handles GET /cart
func (c *CartController) ShowCart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	c.writeCart(w, r, c.storefront.ShowCart(r.Context()))
}

// AddItem handles POST /cart/items with form field id.
// Redirects back to the referring page, or to the cart.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	raw := strings.TrimSpace(r.FormValue("id"))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		c.fail(w, r, models.NewValidationError("id", "item id must be a positive integer, got %q", raw))
		return
	}

	if _, err := c.storefront.AddToCart(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}

	target := "/cart"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// UpdateLine handles POST /cart/items/{id}/{action} where action is increment,
// decrement or remove
func (c *CartController) UpdateLine(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var mutate func(context.Context, string) (cart.Outcome, error)
	switch r.PathValue("action") {
	case "increment":
		mutate = c.storefront.IncrementLine
	case "decrement":
		mutate = c.storefront.DecrementLine
	case "remove":
		mutate = c.storefront.RemoveLine
	default:
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	outcome, err := mutate(r.Context(), r.PathValue("id"))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.writeCart(w, r, outcome)
}

// Clear handles POST /cart/clear
func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	outcome, err := c.storefront.ClearCart(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.writeCart(w, r, outcome)
}

// Checkout handles POST /checkout
func (c *CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	result, err := c.storefront.Checkout(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.write(w, r, http.StatusOK, c.page(r, "Order placed"), func(out io.Writer, page render.Page) error {
		return c.renderer.Order(out, page, result)
	})
}

// writeCart renders outcome. A failed outcome is still a cart page, served with 500.
func (c *CartController) writeCart(w http.ResponseWriter, r *http.Request, outcome cart.Outcome) {
	status := http.StatusOK
	if outcome.Kind == cart.OutcomeFailed {
		status = http.StatusInternalServerError
		c.logger.Error("failed to show cart", zap.Error(outcome.Reason))
	} else if outcome.Kind == cart.OutcomeDegraded {
		c.logger.Warn("cart shown with saved prices", zap.Error(outcome.Reason))
	}
	c.write(w, r, status, c.page(r, "Cart"), func(out io.Writer, page render.Page) error {
		return c.renderer.Cart(out, page, outcome)
	})
}
