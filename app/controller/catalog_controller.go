package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"audiobook-storefront/models"
	"audiobook-storefront/render"
	"audiobook-storefront/service"
)

// pngRetention is how long exported PNG pages stay downloadable
const pngRetention = 10 * time.Minute

var validFormats = map[string]bool{
	service.FormatPDF: true,
	service.FormatPNG: true,
}

// CatalogController serves the listing, item and cover routes and the catalog export
type CatalogController struct {
	pages
	covers  service.CoverServiceInterface
	export  service.ExportServiceInterface
	baseURL string

	pngStorage      map[string]map[int][]byte
	pngStorageMutex sync.RWMutex
}

// NewCatalogController creates a new CatalogController. baseURL is the address the
// export browser loads the render route from.
func NewCatalogController(
	storefront service.StorefrontServiceInterface,
	covers service.CoverServiceInterface,
	export service.ExportServiceInterface,
	renderer render.Renderer,
	baseURL string,
	logger *zap.Logger,
) *CatalogController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogController{
		pages:      pages{storefront: storefront, renderer: renderer, logger: logger},
		covers:     covers,
		export:     export,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pngStorage: make(map[string]map[int][]byte),
	}
}

// parseCatalogQuery reads q, genre, author, price, sort and page
func parseCatalogQuery(values url.Values) (service.CatalogQuery, error) {
	query := service.CatalogQuery{
		Term: strings.TrimSpace(values.Get("q")),
		Filters: models.FilterState{
			Genre:  strings.TrimSpace(values.Get("genre")),
			Author: strings.TrimSpace(values.Get("author")),
			Price:  strings.TrimSpace(values.Get("price")),
			Sort:   strings.TrimSpace(values.Get("sort")),
		},
		Page: 1,
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return query, models.NewValidationError("page", "page must be a positive integer")
		}
		query.Page = n
	}
	return query, nil
}

// ListCatalog handles GET /catalog?q=&genre=&author=&price=&sort=&page=
func (c *CatalogController) ListCatalog(w http.ResponseWriter, r *http.Request) {
	c.showCatalog(w, r, false)
}

// RenderCatalog handles GET /catalog/render with the same parameters as /catalog.
// Returns the page without interactive controls (used by chromedp for PDF/PNG generation)
func (c *CatalogController) RenderCatalog(w http.ResponseWriter, r *http.Request) {
	c.showCatalog(w, r, true)
}

func (c *CatalogController) showCatalog(w http.ResponseWriter, r *http.Request, printMode bool) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	query, err := parseCatalogQuery(r.URL.Query())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	view, err := c.storefront.ShowCatalog(r.Context(), query)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	title := "Catalog"
	if view.Query != "" {
		title = fmt.Sprintf("Search: %s", view.Query)
	}
	page := c.page(r, title)
	page.Print = printMode
	c.write(w, r, http.StatusOK, page, func(out io.Writer, page render.Page) error {
		return c.renderer.Catalog(out, page, view)
	})
}

// ShowItem handles GET /items/{id}
func (c *CatalogController) ShowItem(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	item, err := c.storefront.ShowItem(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.write(w, r, http.StatusOK, c.page(r, item.Title), func(out io.Writer, page render.Page) error {
		return c.renderer.Item(out, page, *item)
	})
}

// Cover handles GET /covers/{id}
// Returns the optimized JPEG cover of an item
func (c *CatalogController) Cover(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	id, err := pathID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := c.covers.Cover(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		c.logger.Warn("cover unavailable", zap.Int("item_id", id), zap.Int("status", status), zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		c.logger.Warn("failed to write cover", zap.Int("item_id", id), zap.Error(err))
	}
}

// ExportCatalog handles GET /catalog/export?format=pdf|png plus the /catalog parameters.
// PDF is returned as an attachment; PNG pages are kept for download and listed as JSON.
func (c *CatalogController) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	values := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(values.Get("format")))
	if format == "" {
		format = service.FormatPDF
	}
	if !validFormats[format] {
		http.Error(w, "Invalid format. Valid formats: pdf, png", http.StatusBadRequest)
		return
	}
	values.Del("format")

	query, err := parseCatalogQuery(values)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	view, err := c.storefront.ShowCatalog(ctx, query)
	if err != nil {
		http.Error(w, render.UserMessage(err), statusFor(err))
		return
	}
	if err := c.covers.Prefetch(ctx, view.Items); err != nil {
		c.logger.Warn("cover prefetch interrupted", zap.Error(err))
	}

	renderURL := c.baseURL + "/catalog/render"
	if encoded := values.Encode(); encoded != "" {
		renderURL += "?" + encoded
	}
	exportID := uuid.NewString()

	switch format {
	case service.FormatPDF:
		pdfData, err := c.export.GeneratePDF(ctx, renderURL)
		if err != nil {
			c.logger.Error("failed to generate PDF", zap.String("url", renderURL), zap.Error(err))
			http.Error(w, fmt.Sprintf("Failed to generate PDF: %v", err), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ExportFileName(exportID, service.FormatPDF, 0)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdfData); err != nil {
			c.logger.Warn("failed to write PDF response", zap.Error(err))
		}

	case service.FormatPNG:
		pngs, err := c.export.GeneratePNG(ctx, renderURL)
		if err != nil {
			c.logger.Error("failed to generate PNG", zap.String("url", renderURL), zap.Error(err))
			http.Error(w, fmt.Sprintf("Failed to generate PNG: %v", err), http.StatusInternalServerError)
			return
		}
		c.storePNGs(exportID, pngs)

		type PageLink struct {
			Page     int    `json:"page"`
			URL      string `json:"url"`
			Filename string `json:"filename"`
		}
		links := make([]PageLink, 0, len(pngs))
		for i := 1; i <= len(pngs); i++ {
			if _, ok := pngs[i]; !ok {
				continue
			}
			links = append(links, PageLink{
				Page:     i,
				URL:      fmt.Sprintf("/catalog/export/png?export=%s&page=%d", exportID, i),
				Filename: service.ExportFileName(exportID, service.FormatPNG, i),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"exportId":   exportID,
			"totalPages": len(pngs),
			"pages":      links,
		}); err != nil {
			c.logger.Warn("failed to encode export response", zap.Error(err))
		}
	}
}

// storePNGs keeps pages downloadable for pngRetention
func (c *CatalogController) storePNGs(exportID string, pngs map[int][]byte) {
	c.pngStorageMutex.Lock()
	c.pngStorage[exportID] = pngs
	c.pngStorageMutex.Unlock()

	time.AfterFunc(pngRetention, func() {
		c.pngStorageMutex.Lock()
		delete(c.pngStorage, exportID)
		c.pngStorageMutex.Unlock()
	})
}

// DownloadPNGPage handles GET /catalog/export/png?export=ID&page=N
func (c *CatalogController) DownloadPNGPage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	exportID := strings.TrimSpace(r.URL.Query().Get("export"))
	if exportID == "" {
		http.Error(w, "export parameter is required", http.StatusBadRequest)
		return
	}
	pageNum, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil || pageNum < 1 {
		http.Error(w, "Invalid page number", http.StatusBadRequest)
		return
	}

	c.pngStorageMutex.RLock()
	pngData, ok := c.pngStorage[exportID][pageNum]
	c.pngStorageMutex.RUnlock()
	if !ok {
		http.Error(w, "Export expired or not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ExportFileName(exportID, service.FormatPNG, pageNum)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pngData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pngData); err != nil {
		c.logger.Warn("failed to write PNG response", zap.Error(err))
	}
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("id", "item id must be a positive integer, got %q", raw)
	}
	return id, nil
}
