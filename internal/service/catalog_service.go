package service

import (
	"context"
	"fmt"

	"saniteetti/internal/catalog"
	"saniteetti/internal/model"

	"github.com/rs/zerolog"
)

// relatedProducts is the number of products shown next to a product.
const relatedProducts = 3

// CartPruner removes a deleted product from open carts.
type CartPruner interface {
	DropProduct(productID string) int
}

// catalogService implements CatalogService.
type catalogService struct {
	store  *catalog.Store
	carts  CartPruner
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store *catalog.Store, carts CartPruner, logger zerolog.Logger) CatalogService {
	return &catalogService{
		store:  store,
		carts:  carts,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// ListProducts returns the products matching filter.
func (s *catalogService) ListProducts(filter catalog.Filter) []model.Product {
	if filter.Category != "" && filter.Category != catalog.AllCategories {
		filter.Category = s.store.NormalizeCategoryID(filter.Category)
	}
	products := s.store.ListProducts(filter)

	s.logger.Debug().
		Str("query", filter.Query).
		Str("category", filter.Category).
		Str("sort", filter.Sort).
		Int("count", len(products)).
		Msg("listed products")

	return products
}

// GetProduct returns a product with its related products.
func (s *catalogService) GetProduct(id string) (*ProductDetail, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, ok := s.store.Product(id)
	if !ok {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return &ProductDetail{
		Product: product,
		Related: s.store.Related(id, relatedProducts),
	}, nil
}

// Categories returns every category with its product count.
func (s *catalogService) Categories() []CategorySummary {
	counts := s.store.CountByCategory()
	categories := s.store.Categories()

	out := make([]CategorySummary, len(categories))
	for i, c := range categories {
		out[i] = CategorySummary{Category: c, Count: counts[c.ID]}
	}
	return out
}

// SaveProduct creates or replaces a product.
func (s *catalogService) SaveProduct(ctx context.Context, form model.ProductForm) (*model.Product, error) {
	product, err := s.store.UpsertProduct(ctx, form)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", form.ID).Msg("failed to save product")
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes a product and prunes it from every cart.
func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	pruned := s.carts.DropProduct(id)
	s.logger.Info().Str("product_id", id).Int("carts_pruned", pruned).Msg("product deleted")
	return nil
}

// AddCategory registers a new category.
func (s *catalogService) AddCategory(ctx context.Context, nameFi, nameEn string) (*model.Category, error) {
	category, err := s.store.AddCategory(ctx, nameFi, nameEn)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", nameFi).Msg("failed to add category")
		return nil, fmt.Errorf("failed to add category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes a category, moving its products to the fallback category.
func (s *catalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("category_id", id).Msg("failed to delete category")
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
