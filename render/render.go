// Package render turns catalog, cart and order data into pages. The CLI renders
// to a terminal, the HTTP front renders HTML; both go through Renderer.
package render

import (
	"errors"
	"fmt"
	"io"

	"audiobook-storefront/cart"
	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
)

// Page carries what every page shows besides its own content
type Page struct {
	Title string
	// Badge is the total item count of the cart
	Badge int
	Email string
	// Print hides interactive controls, for exported pages
	Print bool
}

// Renderer is the rendering port
type Renderer interface {
	Catalog(w io.Writer, page Page, view models.CatalogView) error
	Item(w io.Writer, page Page, item models.CatalogItem) error
	Cart(w io.Writer, page Page, outcome cart.Outcome) error
	Order(w io.Writer, page Page, result models.OrderResult) error
	Message(w io.Writer, page Page, message string) error
	Error(w io.Writer, page Page, err error) error
}

// UserMessage converts an error into the text shown to the shopper
func UserMessage(err error) string {
	var verr *models.ValidationError
	var httpErr *gateway.HTTPError
	var shapeErr *gateway.ShapeError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, models.ErrNotAuthenticated):
		return "Please log in to place an order."
	case errors.Is(err, models.ErrItemNotFound):
		return "This audiobook was not found."
	case errors.Is(err, models.ErrLineNotFound):
		return "This audiobook is not in your cart."
	case errors.Is(err, models.ErrInvalidCredentials):
		return "Wrong email or password."
	case errors.As(err, &verr):
		return verr.Error()
	case gateway.IsUnavailable(err):
		return "The service is unavailable. Please try again later."
	case errors.As(err, &httpErr):
		if httpErr.StatusCode == 401 || httpErr.StatusCode == 403 {
			return "Your session has expired. Please log in again."
		}
		return fmt.Sprintf("The server rejected the request (HTTP %d).", httpErr.StatusCode)
	case errors.As(err, &shapeErr):
		return "The server sent an unexpected response."
	default:
		return "Something went wrong."
	}
}

func ratingLabel(item models.CatalogItem) string {
	if item.Rating == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *item.Rating)
}
