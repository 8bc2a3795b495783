package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"sort"
	"strconv"

	"audiobook-storefront/cart"
	"audiobook-storefront/catalog"
	"audiobook-storefront/models"
	"audiobook-storefront/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// HTMLRenderer renders pages for the HTTP front
type HTMLRenderer struct {
	tmpl *template.Template
}

var _ Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the embedded templates
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"price":   utils.FormatPrice,
		"genre":   catalog.GenreDisplayName,
		"rating":  ratingLabel,
		"pageURL": pageURL,
		"coverURL": func(item models.CatalogItem) string {
			if item.CoverImageURL == "" {
				return ""
			}
			return "/covers/" + strconv.Itoa(item.ID)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// pageURL links to page n of the listing with the current filters and query
func pageURL(view models.CatalogView, n int) string {
	q := url.Values{}
	if view.Query != "" {
		q.Set("q", view.Query)
	}
	if view.Filters.Genre != "" {
		q.Set("genre", view.Filters.Genre)
	}
	if view.Filters.Author != "" {
		q.Set("author", view.Filters.Author)
	}
	if view.Filters.Price != "" {
		q.Set("price", view.Filters.Price)
	}
	if view.Filters.Sort != "" && view.Filters.Sort != models.SortNewest {
		q.Set("sort", view.Filters.Sort)
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if len(q) == 0 {
		return "/catalog"
	}
	return "/catalog?" + q.Encode()
}

type orderField struct {
	Key   string
	Value interface{}
}

func (h *HTMLRenderer) execute(w io.Writer, name string, data interface{}) error {
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return nil
}

// Catalog renders a listing page
func (h *HTMLRenderer) Catalog(w io.Writer, page Page, view models.CatalogView) error {
	return h.execute(w, "catalog", struct {
		Page  Page
		View  models.CatalogView
		Sorts []string
	}{
		Page: page,
		View: view,
		Sorts: []string{
			models.SortNewest, models.SortOldest, models.SortPriceLow,
			models.SortPriceHigh, models.SortRating, models.SortPopular,
		},
	})
}

// Item renders a detail page
func (h *HTMLRenderer) Item(w io.Writer, page Page, item models.CatalogItem) error {
	return h.execute(w, "item", struct {
		Page Page
		Item models.CatalogItem
	}{page, item})
}

// Cart renders the cart page
func (h *HTMLRenderer) Cart(w io.Writer, page Page, outcome cart.Outcome) error {
	return h.execute(w, "cart", struct {
		Page    Page
		Failed  bool
		Message string
		View    models.CartView
	}{
		Page:    page,
		Failed:  outcome.Kind == cart.OutcomeFailed,
		Message: UserMessage(outcome.Reason),
		View:    outcome.View,
	})
}

// Order renders the order confirmation
func (h *HTMLRenderer) Order(w io.Writer, page Page, result models.OrderResult) error {
	fields := make([]orderField, 0, len(result))
	for k, v := range result {
		fields = append(fields, orderField{Key: k, Value: v})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Key < fields[j].Key })

	return h.execute(w, "order", struct {
		Page   Page
		Fields []orderField
	}{page, fields})
}

// Message renders a short confirmation
func (h *HTMLRenderer) Message(w io.Writer, page Page, message string) error {
	return h.execute(w, "message", struct {
		Page    Page
		Message string
		IsError bool
	}{page, message, false})
}

// Error renders err as a user message
func (h *HTMLRenderer) Error(w io.Writer, page Page, err error) error {
	return h.execute(w, "message", struct {
		Page    Page
		Message string
		IsError bool
	}{page, UserMessage(err), true})
}
