package router

import (
	"net/http"

	"saniteetti/internal/config"
	"saniteetti/internal/handler"
	"saniteetti/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	storefrontHandler *handler.StorefrontHandler,
	auth config.AuthConfig,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()
	admin := middleware.AdminAuth(auth.AdminUser, auth.AdminPass, logger)
	protect := func(h http.HandlerFunc) http.Handler { return admin(h) }

	mux.HandleFunc("GET /api/health", handler.Health)

	// Orders
	mux.HandleFunc("POST /api/orders", orderHandler.Create)
	mux.Handle("GET /api/orders", protect(orderHandler.List))
	mux.Handle("GET /api/orders/export", protect(orderHandler.Export))
	mux.Handle("GET /api/orders/{orderId}", protect(orderHandler.Get))
	mux.Handle("POST /api/orders/{orderId}/shipped", protect(orderHandler.MarkShipped))

	// Catalog
	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productHandler.Get)
	mux.HandleFunc("GET /api/categories", productHandler.Categories)
	mux.Handle("POST /api/products", protect(productHandler.Create))
	mux.Handle("PUT /api/products/{id}", protect(productHandler.Update))
	mux.Handle("DELETE /api/products/{id}", protect(productHandler.Delete))
	mux.Handle("POST /api/categories", protect(productHandler.AddCategory))
	mux.Handle("DELETE /api/categories/{id}", protect(productHandler.DeleteCategory))

	// Storefront session
	mux.HandleFunc("GET /api/cart", storefrontHandler.Cart)
	mux.HandleFunc("DELETE /api/cart", storefrontHandler.ClearCart)
	mux.HandleFunc("POST /api/cart/items", storefrontHandler.AddItem)
	mux.HandleFunc("POST /api/cart/items/{id}/decrement", storefrontHandler.RemoveItem)
	mux.HandleFunc("POST /api/checkout/open", storefrontHandler.OpenCheckout)
	mux.HandleFunc("PUT /api/checkout/contact", storefrontHandler.UpdateContact)
	mux.HandleFunc("POST /api/checkout/advance", storefrontHandler.Advance)
	mux.HandleFunc("POST /api/checkout/back", storefrontHandler.Back)
	mux.HandleFunc("PUT /api/checkout/billing", storefrontHandler.UpdateBilling)
	mux.HandleFunc("POST /api/checkout/submit", storefrontHandler.Submit)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)
	h = middleware.Recovery(logger)(h)

	return h
}
