package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook-storefront/config"
	"audiobook-storefront/models"
)

type fakeServices struct {
	orders atomic.Int32
}

// newFakeServices serves eight items; item 1 has a cover, even ids are history books
func newFakeServices(t *testing.T) (*fakeServices, *httptest.Server) {
	t.Helper()
	f := &fakeServices{}

	items := func(r *http.Request) []models.CatalogItem {
		out := make([]models.CatalogItem, 0, 8)
		for i := 1; i <= 8; i++ {
			genre := "fiction"
			if i%2 == 0 {
				genre = "history"
			}
			item := models.CatalogItem{
				ID:     i,
				Title:  "Книга " + strconv.Itoa(i),
				Author: &models.Author{ID: 1, Name: "Лев Толстой"},
				Price:  float64(100 * i),
				Genre:  genre,
			}
			if i == 1 {
				item.Title = "Война и мир"
				item.CoverImageURL = "http://" + r.Host + "/img/1.png"
			}
			out = append(out, item)
		}
		return out
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/catalog-items", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"items": items(r)})
	})
	mux.HandleFunc("/api/v1/catalog-items/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		for _, item := range items(r) {
			if item.ID == id {
				json.NewEncoder(w).Encode(item)
				return
			}
		}
		http.NotFound(w, r)
	})
	mux.HandleFunc("/api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		out := []models.CatalogItem{}
		for _, item := range items(r) {
			if strings.Contains(strings.ToLower(item.Title), q) {
				out = append(out, item)
			}
		}
		json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/cart/calculate", func(w http.ResponseWriter, r *http.Request) {
		var req models.PricingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := models.PricingBreakdown{Items: []models.PricingLine{}}
		total := 0.0
		for _, line := range req.Items {
			unit := float64(100 * line.ItemID)
			resp.Items = append(resp.Items, models.PricingLine{
				ItemID: line.ItemID, PricePerUnit: unit, Quantity: line.Quantity, TotalPrice: unit * float64(line.Quantity),
			})
			total += unit * float64(line.Quantity)
		}
		resp.TotalPrice = &total
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-reader@example.com" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		f.orders.Add(1)
		io.WriteString(w, `{"id": 77, "status": "created"}`)
	})
	mux.HandleFunc("/api/v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "secret" {
			http.Error(w, `{"detail":"bad credentials"}`, http.StatusUnauthorized)
			return
		}
		io.WriteString(w, `{"access_token":"tok-`+r.PostForm.Get("username")+`","token_type":"bearer"}`)
	})
	mux.HandleFunc("/img/1.png", func(w http.ResponseWriter, r *http.Request) {
		img := image.NewRGBA(image.Rect(0, 0, 600, 900))
		for x := 0; x < 600; x++ {
			img.Set(x, x, color.RGBA{R: 200, A: 255})
		}
		var buf bytes.Buffer
		assert.NoError(t, png.Encode(&buf, img))
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func newTestHandler(t *testing.T) (http.Handler, *fakeServices) {
	t.Helper()
	f, srv := newFakeServices(t)

	cfg := config.DefaultConfig()
	cfg.Storage.Kind = config.StorageMemory
	cfg.Services = config.ServicesConfig{
		CatalogURL: srv.URL,
		CartURL:    srv.URL,
		OrdersURL:  srv.URL,
		AuthURL:    srv.URL,
	}
	cfg.Covers.CacheDir = t.TempDir()
	require.NoError(t, cfg.Validate())

	a, err := Initialize(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	handler, err := a.Handler("http://127.0.0.1:0")
	require.NoError(t, err)
	return handler, f
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func post(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ServeHTTP(rec, req)
	return rec
}

func badge(n int) string {
	return `id="cart-badge">` + strconv.Itoa(n) + `<`
}

func TestPing(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(h, "/ping")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = get(h, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog", rec.Header().Get("Location"))
}

func TestCatalogRoutes(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("first page", func(t *testing.T) {
		rec := get(h, "/catalog")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Книга 8")
		assert.NotContains(t, body, "Война и мир")
		assert.Contains(t, body, badge(0))
	})

	t.Run("second page", func(t *testing.T) {
		rec := get(h, "/catalog?page=2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Война и мир")
	})

	t.Run("genre filter", func(t *testing.T) {
		rec := get(h, "/catalog?genre=history")
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Книга 2")
		assert.NotContains(t, body, "Книга 3")
	})

	t.Run("search", func(t *testing.T) {
		rec := get(h, "/catalog?q="+url.QueryEscape("война"))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Война и мир")
		assert.NotContains(t, body, "Книга 8")
	})

	t.Run("print view hides controls", func(t *testing.T) {
		rec := get(h, "/catalog/render")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), `action="/cart/items"`)
	})

	t.Run("invalid input", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(h, "/catalog?price=cheap").Code)
		assert.Equal(t, http.StatusBadRequest, get(h, "/catalog?page=zero").Code)
		assert.Equal(t, http.StatusBadRequest, get(h, "/catalog/export?format=gif").Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, post(h, "/catalog", nil).Code)
	})
}

func TestItemAndCoverRoutes(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := get(h, "/items/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Война и мир")

	assert.Equal(t, http.StatusNotFound, get(h, "/items/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/items/abc").Code)

	rec = get(h, "/covers/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	cfg, _, err := image.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Height, 300)

	assert.Equal(t, http.StatusNotFound, get(h, "/covers/2").Code)
}

func TestCartRoutes(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := post(h, "/cart/items", url.Values{"id": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))

	rec = get(h, "/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Книга 2")
	assert.Contains(t, rec.Body.String(), badge(1))

	rec = post(h, "/cart/items/2/increment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), badge(2))

	rec = post(h, "/cart/items/2/decrement", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), badge(1))

	assert.Equal(t, http.StatusNotFound, post(h, "/cart/items/5/increment", nil).Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/cart/items/2/explode", nil).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, "/cart/items", url.Values{"id": {"x"}}).Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/cart/items", url.Values{"id": {"99"}}).Code)

	rec = post(h, "/cart/items/2/remove", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), badge(0))

	post(h, "/cart/items", url.Values{"id": {"3"}})
	rec = post(h, "/cart/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), badge(0))
}

func TestCheckoutRoutes(t *testing.T) {
	h, f := newTestHandler(t)

	assert.Equal(t, http.StatusBadRequest, post(h, "/checkout", nil).Code, "empty cart")

	post(h, "/cart/items", url.Values{"id": {"1"}})
	rec := post(h, "/checkout", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please log in to place an order.")

	rec = post(h, "/login", url.Values{"email": {"reader@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong email or password.")
	assert.Equal(t, http.StatusBadRequest, post(h, "/login", url.Values{"email": {"reader@example.com"}}).Code)

	rec = post(h, "/login", url.Values{"email": {"reader@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, get(h, "/cart").Body.String(), "reader@example.com")

	rec = post(h, "/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Order placed")
	assert.Contains(t, body, "created")
	assert.Contains(t, body, badge(0))
	assert.Equal(t, int32(1), f.orders.Load())

	assert.Equal(t, http.StatusMethodNotAllowed, get(h, "/checkout").Code)

	post(h, "/cart/items", url.Values{"id": {"4"}})
	rec = post(h, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	body = get(h, "/catalog").Body.String()
	assert.NotContains(t, body, "reader@example.com")
	assert.Contains(t, body, badge(0))
}

func TestInitializeRejectsUnknownStorage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Kind = "redis"

	_, err := Initialize(context.Background(), cfg, nil)
	assert.Error(t, err)
}
