package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"audiobook-storefront/models"
)

// DefaultSearchLimit is the limit sent with search requests when none is given
const DefaultSearchLimit = 100

// CatalogGateway talks to the catalog service
type CatalogGateway struct {
	client client
}

// NewCatalogGateway creates a CatalogGateway for baseURL
func NewCatalogGateway(baseURL string, httpClient *http.Client, logger *zap.Logger) *CatalogGateway {
	return &CatalogGateway{client: newClient(baseURL, httpClient, logger)}
}

var _ CatalogGatewayInterface = (*CatalogGateway)(nil)

// ListItems handles GET /api/v1/catalog-items. The service answers either with
// {"items": [...]} or with a bare array.
func (g *CatalogGateway) ListItems(ctx context.Context) ([]models.CatalogItem, error) {
	const op = "list catalog items"
	data, err := g.client.do(ctx, request{Op: op, Method: http.MethodGet, Path: "/api/v1/catalog-items"})
	if err != nil {
		return nil, err
	}
	return decodeItems(op, data)
}

// Search handles GET /api/v1/search?q=<term>&limit=<n>
func (g *CatalogGateway) Search(ctx context.Context, term string, limit int) ([]models.CatalogItem, error) {
	const op = "search catalog"
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	query := url.Values{}
	query.Set("q", term)
	query.Set("limit", strconv.Itoa(limit))

	data, err := g.client.do(ctx, request{Op: op, Method: http.MethodGet, Path: "/api/v1/search", Query: query})
	if err != nil {
		return nil, err
	}
	return decodeItems(op, data)
}

// GetItem handles GET /api/v1/catalog-items/{id}
func (g *CatalogGateway) GetItem(ctx context.Context, id int) (*models.CatalogItem, error) {
	const op = "get catalog item"
	var item models.CatalogItem
	err := g.client.doJSON(ctx, request{
		Op:     op,
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/v1/catalog-items/%d", id),
	}, &item)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%s %d: %w", op, id, models.ErrItemNotFound)
		}
		return nil, err
	}
	if item.ID == 0 {
		return nil, &ShapeError{Op: op, Reason: "missing id"}
	}
	return &item, nil
}

// decodeItems accepts a bare array or an object with an items (or legacy audiobooks) array
func decodeItems(op string, data []byte) ([]models.CatalogItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ShapeError{Op: op, Reason: "empty body"}
	}

	switch trimmed[0] {
	case '[':
		var items []models.CatalogItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &ShapeError{Op: op, Reason: "malformed item array", Err: err}
		}
		return nonNil(items), nil
	case '{':
		var envelope struct {
			Items      []models.CatalogItem `json:"items"`
			Audiobooks []models.CatalogItem `json:"audiobooks"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, &ShapeError{Op: op, Reason: "malformed item envelope", Err: err}
		}
		switch {
		case envelope.Items != nil:
			return envelope.Items, nil
		case envelope.Audiobooks != nil:
			return envelope.Audiobooks, nil
		}
		return nil, &ShapeError{Op: op, Reason: "missing items"}
	default:
		return nil, &ShapeError{Op: op, Reason: "expected array or object"}
	}
}

func nonNil(items []models.CatalogItem) []models.CatalogItem {
	if items == nil {
		return []models.CatalogItem{}
	}
	return items
}
