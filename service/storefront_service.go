package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"audiobook-storefront/cart"
	"audiobook-storefront/catalog"
	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
	"audiobook-storefront/render"
	"audiobook-storefront/repository"
)

// CatalogQuery is one request for a listing page. An empty Term shows the full
// catalog.
type CatalogQuery struct {
	Term    string
	Filters models.FilterState
	Page    int
}

// StorefrontService drives the catalog page, the cart page and the session
type StorefrontService struct {
	catalog    gateway.CatalogGatewayInterface
	auth       gateway.AuthGatewayInterface
	snapshot    *catalog.Snapshot
	searchLimit int
	store       *cart.Store
	reconciler  *cart.Reconciler
	checkout    *cart.Checkout
	sessions    repository.SessionRepositoryInterface
	logger      *zap.Logger
}

// NewStorefrontService creates a new StorefrontService
func NewStorefrontService(
	catalogGateway gateway.CatalogGatewayInterface,
	pricingGateway gateway.PricingGatewayInterface,
	orderGateway gateway.OrderGatewayInterface,
	authGateway gateway.AuthGatewayInterface,
	cartRepo repository.CartRepositoryInterface,
	sessions repository.SessionRepositoryInterface,
	searchLimit int,
	logger *zap.Logger,
) *StorefrontService {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cart.NewStore(cartRepo, logger.Named("cart"))
	return &StorefrontService{
		catalog:     catalogGateway,
		auth:        authGateway,
		snapshot:    catalog.NewSnapshot(),
		searchLimit: searchLimit,
		store:       store,
		reconciler:  cart.NewReconciler(store, pricingGateway, logger.Named("pricing")),
		checkout:    cart.NewCheckout(store, sessions, orderGateway, logger.Named("checkout")),
		sessions:    sessions,
		logger:      logger,
	}
}

var _ StorefrontServiceInterface = (*StorefrontService)(nil)

// OnCartChange registers a badge listener; see cart.Store.OnChange
func (s *StorefrontService) OnCartChange(fn func(count int)) func() {
	return s.store.OnChange(fn)
}

// ShowCatalog loads the catalog or search results and applies the filter and page
// selection. Every call drives its own catalog.Machine; only the last full catalog is
// shared between calls. Load failures are part of the returned view; an error is
// returned for invalid filters.
func (s *StorefrontService) ShowCatalog(ctx context.Context, query CatalogQuery) (models.CatalogView, error) {
	filters := query.Filters
	filters.Query = ""
	if filters.Sort == "" {
		filters.Sort = models.SortNewest
	}
	if err := catalog.ValidateFilters(filters); err != nil {
		return models.CatalogView{}, err
	}

	src := catalog.FullCatalog()
	if term := strings.TrimSpace(query.Term); term != "" {
		src = catalog.SearchFor(term)
	}

	machine := catalog.NewMachine(s.catalog,
		catalog.WithSnapshot(s.snapshot),
		catalog.WithSearchLimit(s.searchLimit),
		catalog.WithLogger(s.logger.Named("catalog")),
	)
	if err := machine.Load(ctx, src); err != nil {
		s.logger.Warn("catalog page shows the error state", zap.Error(err))
	}

	if err := machine.SetFilters(filters); err != nil {
		return models.CatalogView{}, err
	}
	if query.Page > 1 {
		machine.GoToPage(query.Page)
	}
	return machine.View(), nil
}

// ShowItem loads one catalog item
func (s *StorefrontService) ShowItem(ctx context.Context, id int) (*models.CatalogItem, error) {
	if id <= 0 {
		return nil, models.NewValidationError("id", "item id must be a positive integer")
	}
	item, err := s.catalog.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", id, err)
	}
	return item, nil
}

// AddToCart puts one unit of item id into the cart. Title and price come from the
// last loaded catalog when the item is on it, otherwise from the catalog service.
func (s *StorefrontService) AddToCart(ctx context.Context, id int) (*models.CatalogItem, error) {
	item, ok := s.snapshot.Item(id)
	if !ok {
		loaded, err := s.ShowItem(ctx, id)
		if err != nil {
			return nil, err
		}
		item = *loaded
	}

	if err := s.store.Add(ctx, models.LineID(strconv.Itoa(item.ID)), item.Title, item.Price); err != nil {
		return nil, fmt.Errorf("failed to add item %d to cart: %w", id, err)
	}
	s.logger.Info("item added to cart", zap.Int("item_id", item.ID), zap.String("title", item.Title))
	return &item, nil
}

// ShowCart prices the cart
func (s *StorefrontService) ShowCart(ctx context.Context) cart.Outcome {
	return s.reconciler.Run(ctx)
}

// IncrementLine adds a unit to a cart line and re-prices the cart
func (s *StorefrontService) IncrementLine(ctx context.Context, id string) (cart.Outcome, error) {
	if err := s.store.Increment(ctx, models.LineID(id)); err != nil {
		return cart.Outcome{}, err
	}
	return s.reconciler.Run(ctx), nil
}

// DecrementLine removes a unit from a cart line and re-prices the cart
func (s *StorefrontService) DecrementLine(ctx context.Context, id string) (cart.Outcome, error) {
	if err := s.store.Decrement(ctx, models.LineID(id)); err != nil {
		return cart.Outcome{}, err
	}
	return s.reconciler.Run(ctx), nil
}

// RemoveLine deletes a cart line and re-prices the cart
func (s *StorefrontService) RemoveLine(ctx context.Context, id string) (cart.Outcome, error) {
	if err := s.store.Remove(ctx, models.LineID(id)); err != nil {
		return cart.Outcome{}, err
	}
	return s.reconciler.Run(ctx), nil
}

// ClearCart empties the cart
func (s *StorefrontService) ClearCart(ctx context.Context) (cart.Outcome, error) {
	if err := s.store.Clear(ctx); err != nil {
		return cart.Outcome{}, err
	}
	return s.reconciler.Run(ctx), nil
}

// Checkout places an order for the cart
func (s *StorefrontService) Checkout(ctx context.Context) (models.OrderResult, error) {
	return s.checkout.Submit(ctx)
}

// Login exchanges credentials for a token and stores it with the email
func (s *StorefrontService) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.NewValidationError("email", "email is required")
	}
	if password == "" {
		return models.NewValidationError("password", "password is required")
	}

	token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		var httpErr *gateway.HTTPError
		if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusBadRequest) {
			return fmt.Errorf("failed to log in: %w: %w", models.ErrInvalidCredentials, err)
		}
		return fmt.Errorf("failed to log in: %w", err)
	}
	if err := s.sessions.Save(ctx, models.Session{Token: token.AccessToken, Email: email}); err != nil {
		return err
	}
	s.logger.Info("logged in", zap.String("email", email))
	return nil
}

// Logout forgets the token, the email and the cart
func (s *StorefrontService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("logged out")
	return nil
}

// Page returns the header data shown on every page. Storage failures degrade to an
// empty badge.
func (s *StorefrontService) Page(ctx context.Context, title string) render.Page {
	page := render.Page{Title: title}
	if count, err := s.store.TotalItemCount(ctx); err != nil {
		s.logger.Warn("failed to count cart items", zap.Error(err))
	} else {
		page.Badge = count
	}
	if session, err := s.sessions.Get(ctx); err != nil {
		s.logger.Warn("failed to read session", zap.Error(err))
	} else {
		page.Email = session.Email
	}
	return page
}
