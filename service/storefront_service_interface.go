package service

import (
	"context"

	"audiobook-storefront/cart"
	"audiobook-storefront/models"
	"audiobook-storefront/render"
)

// StorefrontServiceInterface defines the contract for the storefront pages
type StorefrontServiceInterface interface {
	ShowCatalog(ctx context.Context, query CatalogQuery) (models.CatalogView, error)
	ShowItem(ctx context.Context, id int) (*models.CatalogItem, error)
	AddToCart(ctx context.Context, id int) (*models.CatalogItem, error)
	ShowCart(ctx context.Context) cart.Outcome
	IncrementLine(ctx context.Context, id string) (cart.Outcome, error)
	DecrementLine(ctx context.Context, id string) (cart.Outcome, error)
	RemoveLine(ctx context.Context, id string) (cart.Outcome, error)
	ClearCart(ctx context.Context) (cart.Outcome, error)
	Checkout(ctx context.Context) (models.OrderResult, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Page(ctx context.Context, title string) render.Page
}
