package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audiobook-storefront/catalog"
	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
	"audiobook-storefront/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("price", "bad"), http.StatusBadRequest},
		{"empty cart", fmt.Errorf("checkout: %w", models.ErrEmptyCart), http.StatusBadRequest},
		{"not authenticated", models.ErrNotAuthenticated, http.StatusUnauthorized},
		{"bad credentials", fmt.Errorf("login: %w: %w", models.ErrInvalidCredentials, &gateway.HTTPError{Op: "login", StatusCode: 401}), http.StatusUnauthorized},
		{"item not found", fmt.Errorf("load: %w", models.ErrItemNotFound), http.StatusNotFound},
		{"line not found", models.ErrLineNotFound, http.StatusNotFound},
		{"no cover", service.ErrNoCover, http.StatusNotFound},
		{"superseded", catalog.ErrSuperseded, http.StatusConflict},
		{"network", &gateway.NetworkError{Op: "list", Err: errors.New("refused")}, http.StatusBadGateway},
		{"server error", &gateway.HTTPError{Op: "list", StatusCode: 503}, http.StatusBadGateway},
		{"bad shape", &gateway.ShapeError{Op: "list", Reason: "missing items"}, http.StatusBadGateway},
		{"rejected token", &gateway.HTTPError{Op: "order", StatusCode: 403}, http.StatusUnauthorized},
		{"other http", &gateway.HTTPError{Op: "order", StatusCode: 422}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestParseCatalogQuery(t *testing.T) {
	q, err := parseCatalogQuery(url.Values{
		"q":      {"  толстой "},
		"genre":  {"fiction"},
		"author": {"Лев Толстой"},
		"price":  {"0-500"},
		"sort":   {"price-low"},
		"page":   {"3"},
	})
	require.NoError(t, err)
	assert.Equal(t, service.CatalogQuery{
		Term: "толстой",
		Filters: models.FilterState{
			Genre:  "fiction",
			Author: "Лев Толстой",
			Price:  "0-500",
			Sort:   "price-low",
		},
		Page: 3,
	}, q)

	q, err = parseCatalogQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)

	for _, page := range []string{"0", "-1", "two"} {
		_, err := parseCatalogQuery(url.Values{"page": {page}})
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr, page)
	}
}
