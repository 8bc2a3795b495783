package router

import (
	"net/http"

	"audiobook-storefront/app/controller"
)

type Controllers struct {
	Catalog *controller.CatalogController
	Cart    *controller.CartController
	Session *controller.SessionController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Catalog routes
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/catalog", http.StatusFound)
	})
	mux.HandleFunc("/catalog", controllers.Catalog.ListCatalog)

	// Print view loaded by the export browser
	mux.HandleFunc("/catalog/render", controllers.Catalog.RenderCatalog)
	mux.HandleFunc("/catalog/export", controllers.Catalog.ExportCatalog)
	mux.HandleFunc("/catalog/export/png", controllers.Catalog.DownloadPNGPage)

	mux.HandleFunc("/items/{id}", controllers.Catalog.ShowItem)
	mux.HandleFunc("/covers/{id}", controllers.Catalog.Cover)

	// Cart routes
	mux.HandleFunc("/cart", controllers.Cart.ShowCart)
	mux.HandleFunc("/cart/items", controllers.Cart.AddItem)
	mux.HandleFunc("/cart/items/{id}/{action}", controllers.Cart.UpdateLine)
	mux.HandleFunc("/cart/clear", controllers.Cart.Clear)
	mux.HandleFunc("/checkout", controllers.Cart.Checkout)

	// Session routes
	mux.HandleFunc("/login", controllers.Session.Login)
	mux.HandleFunc("/logout", controllers.Session.Logout)
}
