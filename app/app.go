package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"audiobook-storefront/app/controller"
	"audiobook-storefront/app/router"
	"audiobook-storefront/config"
	"audiobook-storefront/db"
	"audiobook-storefront/gateway"
	"audiobook-storefront/render"
	"audiobook-storefront/repository"
	"audiobook-storefront/service"
)

// App holds the wired storefront for one process
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Storefront *service.StorefrontService
	Covers     *service.CoverService
	Export     *service.ExportService
	Catalog    gateway.CatalogGatewayInterface

	database *sql.DB
}

// Initialize initializes the application
func Initialize(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize storage port
	store, database, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Timeout()}

	// Initialize gateways
	catalogGateway := gateway.NewCatalogGateway(cfg.Services.CatalogURL, httpClient, logger.Named("gateway.catalog"))
	pricingGateway := gateway.NewPricingGateway(cfg.Services.CartURL, httpClient, logger.Named("gateway.pricing"))
	orderGateway := gateway.NewOrderGateway(cfg.Services.OrdersURL, httpClient, logger.Named("gateway.orders"))
	authGateway := gateway.NewAuthGateway(cfg.Services.AuthURL, httpClient, logger.Named("gateway.auth"))

	// Initialize services
	storefront := service.NewStorefrontService(
		catalogGateway,
		pricingGateway,
		orderGateway,
		authGateway,
		repository.NewCartRepository(store),
		repository.NewSessionRepository(store),
		cfg.SearchLimit,
		logger.Named("storefront"),
	)
	covers := service.NewCoverService(
		catalogGateway,
		service.NewImageCache(cfg.Covers.CacheDir),
		httpClient,
		cfg.Covers.Size,
		logger.Named("covers"),
	)
	export := service.NewExportService(cfg.Export.ChromePath, cfg.ExportTimeout(), logger.Named("export"))

	return &App{
		Config:     cfg,
		Logger:     logger,
		Storefront: storefront,
		Covers:     covers,
		Export:     export,
		Catalog:    catalogGateway,
		database:   database,
	}, nil
}

// openStorage opens the storage port selected by cfg. The returned *sql.DB is nil
// unless the postgres backend is used.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (repository.KeyValueRepositoryInterface, *sql.DB, error) {
	switch cfg.Kind {
	case config.StorageMemory:
		return repository.NewMemoryKeyValueRepository(), nil, nil
	case config.StorageFile, "":
		return repository.NewFileKeyValueRepository(cfg.Path, logger.Named("storage")), nil, nil
	case config.StoragePostgres:
		database, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		repo := repository.NewPostgresKeyValueRepository(database, cfg.Namespace, logger.Named("storage"))
		if err := repo.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Info("using postgres storage", zap.String("namespace", cfg.Namespace))
		return repo, database, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}

// Handler builds the HTTP front. baseURL is where the export service reaches the
// render route.
func (a *App) Handler(baseURL string) (http.Handler, error) {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, err
	}

	controllers := &router.Controllers{
		Catalog: controller.NewCatalogController(a.Storefront, a.Covers, a.Export, renderer, baseURL, a.Logger.Named("http")),
		Cart:    controller.NewCartController(a.Storefront, renderer, a.Logger.Named("http")),
		Session: controller.NewSessionController(a.Storefront, renderer, a.Logger.Named("http")),
	}

	mux := http.NewServeMux()
	router.SetupRoutes(mux, controllers)
	return mux, nil
}

// Close releases the database connection, if any
func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	if err := a.database.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
