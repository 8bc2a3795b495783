package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
)

// ErrNoCover is returned for an item without a cover image
var ErrNoCover = errors.New("item has no cover image")

// maxCoverBytes bounds a downloaded cover
const maxCoverBytes = 10 << 20

// prefetchWorkers is how many covers are downloaded at once
const prefetchWorkers = 4

// CoverService serves optimized cover images, downloading and caching them on first use
type CoverService struct {
	catalog gateway.CatalogGatewayInterface
	cache   *ImageCache
	http    *http.Client
	size    string
	logger  *zap.Logger
}

// NewCoverService creates a new CoverService
func NewCoverService(catalog gateway.CatalogGatewayInterface, cache *ImageCache, httpClient *http.Client, size string, logger *zap.Logger) *CoverService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: gateway.DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if size != SizeThumb {
		size = SizeMedium
	}
	return &CoverService{catalog: catalog, cache: cache, http: httpClient, size: size, logger: logger}
}

var _ CoverServiceInterface = (*CoverService)(nil)

// Cover returns the optimized cover of itemID
func (s *CoverService) Cover(ctx context.Context, itemID int) ([]byte, error) {
	data, ok, err := s.cache.Read(itemID, s.size)
	if err != nil {
		s.logger.Warn("cover cache read failed", zap.Int("item_id", itemID), zap.Error(err))
	}
	if ok {
		return data, nil
	}

	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", itemID, err)
	}
	return s.fetch(ctx, *item)
}

// Prefetch warms the cache for every item with a cover. Failures are logged and
// skipped; only cancellation of ctx is returned.
func (s *CoverService) Prefetch(ctx context.Context, items []models.CatalogItem) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchWorkers)

	for _, item := range items {
		if item.CoverImageURL == "" {
			continue
		}
		if _, ok, _ := s.cache.Read(item.ID, s.size); ok {
			continue
		}
		item := item
		g.Go(func() error {
			if _, err := s.fetch(gctx, item); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("cover prefetch failed", zap.Int("item_id", item.ID), zap.Error(err))
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *CoverService) fetch(ctx context.Context, item models.CatalogItem) ([]byte, error) {
	if item.CoverImageURL == "" {
		return nil, ErrNoCover
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.CoverImageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cover request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover endpoint returned status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}

	optimized, err := OptimizeImage(raw, s.size)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Write(item.ID, s.size, optimized); err != nil {
		s.logger.Warn("cover cache write failed", zap.Int("item_id", item.ID), zap.Error(err))
	}
	s.logger.Debug("cover cached",
		zap.Int("item_id", item.ID),
		zap.String("size", s.size),
		zap.Int("bytes", len(optimized)),
	)
	return optimized, nil
}
