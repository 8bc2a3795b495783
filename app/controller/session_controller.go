package controller

import (
	"net/http"

	"go.uber.org/zap"

	"audiobook-storefront/render"
	"audiobook-storefront/service"
)

// SessionController serves login and logout
type SessionController struct {
	pages
}

// NewSessionController creates a new SessionController
func NewSessionController(storefront service.StorefrontServiceInterface, renderer render.Renderer, logger *zap.Logger) *SessionController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionController{pages: pages{storefront: storefront, renderer: renderer, logger: logger}}
}

// Login handles POST /login with form fields email and password
func (c *SessionController) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := c.storefront.Login(r.Context(), r.FormValue("email"), r.FormValue("password")); err != nil {
		c.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}

// Logout handles POST /logout
func (c *SessionController) Logout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := c.storefront.Logout(r.Context()); err != nil {
		c.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/catalog", http.StatusSeeOther)
}
