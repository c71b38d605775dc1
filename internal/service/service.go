package service

import (
	"context"

	"saniteetti/internal/catalog"
	"saniteetti/internal/model"
)

// OrderService defines operations for the order lifecycle.
type OrderService interface {
	// CreateOrder validates req, assigns the next order id, persists the order
	// and sends the order e-mails. When only the e-mails fail the stored order
	// is returned together with the notification error.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error)

	// ListOrders returns every order, newest first.
	ListOrders(ctx context.Context) ([]model.Order, error)

	// GetOrder returns a single order.
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// MarkShipped moves an order to shipped and sends the shipped e-mail
	// according to the configured policy.
	MarkShipped(ctx context.Context, id string) (*model.Order, error)
}

// ProductDetail is a product together with the products shown next to it.
type ProductDetail struct {
	Product model.Product   `json:"product"`
	Related []model.Product `json:"related"`
}

// CategorySummary is a category with its product count.
type CategorySummary struct {
	model.Category
	Count int `json:"count"`
}

// CatalogService defines catalog browsing and administration.
type CatalogService interface {
	// ListProducts returns the products matching filter.
	ListProducts(filter catalog.Filter) []model.Product

	// GetProduct returns a product with its related products.
	GetProduct(id string) (*ProductDetail, error)

	// Categories returns every category with its product count.
	Categories() []CategorySummary

	// SaveProduct creates or replaces a product.
	SaveProduct(ctx context.Context, form model.ProductForm) (*model.Product, error)

	// DeleteProduct removes a product and prunes it from every cart.
	DeleteProduct(ctx context.Context, id string) error

	// AddCategory registers a new category.
	AddCategory(ctx context.Context, nameFi, nameEn string) (*model.Category, error)

	// DeleteCategory removes a category, moving its products to the fallback category.
	DeleteCategory(ctx context.Context, id string) error
}
