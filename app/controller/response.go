package controller

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"audiobook-storefront/catalog"
	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
	"audiobook-storefront/render"
	"audiobook-storefront/service"
)

// pages renders full storefront pages with the header data of the current session
type pages struct {
	storefront service.StorefrontServiceInterface
	renderer   render.Renderer
	logger     *zap.Logger
}

// write renders into a buffer first so a template failure still produces a clean 500
func (p pages) write(w http.ResponseWriter, r *http.Request, status int, page render.Page, fn func(io.Writer, render.Page) error) {
	var buf bytes.Buffer
	if err := fn(&buf, page); err != nil {
		p.logger.Error("failed to render page", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		p.logger.Warn("failed to write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// page fetches the header data for title
func (p pages) page(r *http.Request, title string) render.Page {
	return p.storefront.Page(r.Context(), title)
}

// fail logs err and renders it as an error page with the matching status
func (p pages) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		p.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	} else {
		p.logger.Info("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	p.write(w, r, status, p.page(r, "Error"), func(out io.Writer, page render.Page) error {
		return p.renderer.Error(out, page, err)
	})
}

// statusFor maps the storefront error taxonomy to an HTTP status
func statusFor(err error) int {
	var verr *models.ValidationError
	var httpErr *gateway.HTTPError
	var shapeErr *gateway.ShapeError

	switch {
	case errors.Is(err, models.ErrNotAuthenticated), errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrLineNotFound),
		errors.Is(err, service.ErrNoCover):
		return http.StatusNotFound
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrSuperseded):
		return http.StatusConflict
	case gateway.IsUnavailable(err), errors.As(err, &shapeErr):
		return http.StatusBadGateway
	case errors.As(err, &httpErr):
		if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// requireMethod answers 405 unless r uses method
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
