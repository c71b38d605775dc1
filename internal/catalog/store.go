// Package catalog maintains products and categories with referential
// integrity, persisted through a blob store on every mutation.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"saniteetti/internal/model"
	"saniteetti/internal/storage"

	"github.com/rs/zerolog"
)

// Blob keys for the persisted catalog.
const (
	ProductsKey   = "saniteetti-products-v1"
	CategoriesKey = "saniteetti-categories-v1"
)

// Store owns the product and category lists.
type Store struct {
	mu         sync.RWMutex
	products   []model.Product
	categories []model.Category
	// issued holds every product id ever seen so ids are never reused.
	issued map[string]struct{}

	blobs   storage.BlobStore
	aliases *AliasTable
	now     func() time.Time
	logger  zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for product id allocation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAliases overrides the category alias table.
func WithAliases(t *AliasTable) Option {
	return func(s *Store) { s.aliases = t }
}

// NewStore loads the catalog from blobs, falling back to the built-in
// catalog when a blob is absent or unparsable.
func NewStore(ctx context.Context, blobs storage.BlobStore, logger zerolog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		blobs:   blobs,
		aliases: DefaultAliases(),
		now:     time.Now,
		issued:  make(map[string]struct{}),
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	s.products, s.categories = s.reconcile(products, categories)
	for _, p := range s.products {
		s.issued[p.ID] = struct{}{}
	}

	s.logger.Info().
		Int("products", len(s.products)).
		Int("categories", len(s.categories)).
		Int("alias_table_version", s.aliases.Version).
		Msg("catalog loaded")

	return s, nil
}

func (s *Store) loadProducts(ctx context.Context) ([]model.Product, error) {
	data, err := s.blobs.Get(ctx, ProductsKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().Msg("no stored products, using default catalog")
			return DefaultProducts(), nil
		}
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil || products == nil {
		s.logger.Warn().Err(err).Msg("stored products unparsable, using default catalog")
		return DefaultProducts(), nil
	}
	return products, nil
}

func (s *Store) loadCategories(ctx context.Context) ([]model.Category, error) {
	data, err := s.blobs.Get(ctx, CategoriesKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().Msg("no stored categories, using default categories")
			return DefaultCategories(), nil
		}
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	var categories []model.Category
	if err := json.Unmarshal(data, &categories); err == nil && categories != nil {
		return categories, nil
	}

	// Older storefronts stored a plain list of category names.
	var names []string
	if err := json.Unmarshal(data, &names); err == nil && names != nil {
		categories = make([]model.Category, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			categories = append(categories, model.Category{
				ID:    name,
				Names: map[string]string{model.LangFI: name, model.LangEN: name},
			})
		}
		return categories, nil
	}

	s.logger.Warn().Msg("stored categories unparsable, using default categories")
	return DefaultCategories(), nil
}

// reconcile normalises imported data so every invariant holds: category ids
// are canonical and unique, the sentinel exists, every product resolves to a
// category and has at least one image.
func (s *Store) reconcile(products []model.Product, categories []model.Category) ([]model.Product, []model.Category) {
	outCats := make([]model.Category, 0, len(categories)+1)
	seen := make(map[string]bool)
	for _, c := range categories {
		c = c.Clone()
		c.ID = s.aliases.Normalize(c.ID)
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		outCats = append(outCats, c)
	}
	if !seen[model.OtherCategoryID] {
		outCats = append(outCats, model.OtherCategory())
		seen[model.OtherCategoryID] = true
	}

	outProducts := make([]model.Product, 0, len(products))
	for _, p := range products {
		p = p.Clone()
		raw := strings.TrimSpace(p.Category)
		p.Category = s.aliases.Normalize(raw)
		if !seen[p.Category] {
			outCats = append(outCats, newCategory(p.Category, raw))
			seen[p.Category] = true
		}
		p.Images = cleanImages(p.Images)
		outProducts = append(outProducts, p)
	}

	return outProducts, outCats
}

// NormalizeCategoryID maps a raw category name to its canonical id.
func (s *Store) NormalizeCategoryID(raw string) string {
	return s.aliases.Normalize(raw)
}

// UpsertProduct validates form and creates or replaces a product.
func (s *Store) UpsertProduct(ctx context.Context, form model.ProductForm) (model.Product, error) {
	name := strings.TrimSpace(form.Name)
	sku := strings.TrimSpace(form.SKU)
	rawCategory := strings.TrimSpace(form.Category)

	if name == "" || sku == "" || rawCategory == "" {
		return model.Product{}, model.ErrValidation.WithMessage("Fill name, SKU, category, price and stock")
	}

	price, err := parsePrice(form.Price)
	if err != nil {
		return model.Product{}, model.ErrValidation.WithMessage(err.Error())
	}

	stock, err := parseStock(form.Stock)
	if err != nil {
		return model.Product{}, model.ErrValidation.WithMessage(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product := model.Product{
		ID:          strings.TrimSpace(form.ID),
		Name:        name,
		SKU:         sku,
		Description: strings.TrimSpace(form.Description),
		Category:    s.aliases.Normalize(rawCategory),
		Price:       price,
		PriceUnit:   strings.TrimSpace(form.PriceUnit),
		UnitNote:    strings.TrimSpace(form.UnitNote),
		Stock:       stock,
		Images:      cleanImages(form.Images),
	}
	if product.Description == "" {
		product.Description = name
	}
	if product.PriceUnit == "" {
		product.PriceUnit = DefaultPriceUnit
	}

	var products []model.Product
	if product.ID != "" {
		idx := s.indexOfProduct(product.ID)
		if idx < 0 {
			return model.Product{}, model.ErrProductNotFound
		}
		products = cloneProducts(s.products)
		products[idx] = product
	} else {
		product.ID = s.allocateProductID()
		products = make([]model.Product, 0, len(s.products)+1)
		products = append(products, product)
		products = append(products, cloneProducts(s.products)...)
	}

	categories := s.categories
	categoriesChanged := false
	if s.indexOfCategory(product.Category) < 0 {
		categories = append(cloneCategories(s.categories), newCategory(product.Category, rawCategory))
		categoriesChanged = true
	}

	if err := s.commit(ctx, products, categories, true, categoriesChanged); err != nil {
		return model.Product{}, err
	}
	s.issued[product.ID] = struct{}{}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("category", product.Category).
		Bool("new_category", categoriesChanged).
		Msg("product saved")

	return product.Clone(), nil
}

// DeleteProduct removes a product. Carts holding the id must be pruned by the
// caller.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfProduct(id)
	if idx < 0 {
		return model.ErrProductNotFound
	}

	products := make([]model.Product, 0, len(s.products)-1)
	products = append(products, cloneProducts(s.products[:idx])...)
	products = append(products, cloneProducts(s.products[idx+1:])...)

	if err := s.commit(ctx, products, s.categories, true, false); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// AddCategory registers a category under the normalised Finnish name.
func (s *Store) AddCategory(ctx context.Context, nameFi, nameEn string) (model.Category, error) {
	nameFi = strings.TrimSpace(nameFi)
	nameEn = strings.TrimSpace(nameEn)
	if nameFi == "" {
		return model.Category{}, model.ErrValidation.WithMessage("Category name is required")
	}
	if nameEn == "" {
		nameEn = nameFi
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := model.Category{
		ID:    s.aliases.Normalize(nameFi),
		Names: map[string]string{model.LangFI: nameFi, model.LangEN: nameEn},
	}

	for _, c := range s.categories {
		if c.ID == category.ID || hasName(c, nameFi) || hasName(c, nameEn) {
			return model.Category{}, model.ErrCategoryExists
		}
	}

	categories := append(cloneCategories(s.categories), category)
	if err := s.commit(ctx, s.products, categories, false, true); err != nil {
		return model.Category{}, err
	}

	s.logger.Info().Str("category_id", category.ID).Msg("category added")
	return category.Clone(), nil
}

// DeleteCategory removes a category and moves its products to the sentinel
// category, recreating the sentinel when needed.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfCategory(id)
	if idx < 0 && id != model.OtherCategoryID {
		return model.ErrCategoryNotFound
	}

	categories := make([]model.Category, 0, len(s.categories))
	hasOther := false
	for _, c := range s.categories {
		if c.ID == id {
			continue
		}
		if c.ID == model.OtherCategoryID {
			hasOther = true
		}
		categories = append(categories, c.Clone())
	}
	if !hasOther {
		categories = append(categories, model.OtherCategory())
	}

	products := cloneProducts(s.products)
	moved := 0
	for i := range products {
		if products[i].Category == id {
			products[i].Category = model.OtherCategoryID
			moved++
		}
	}

	if err := s.commit(ctx, products, categories, moved > 0, true); err != nil {
		return err
	}

	s.logger.Info().
		Str("category_id", id).
		Int("products_moved", moved).
		Msg("category deleted")

	return nil
}

// Product returns a copy of the product with id.
func (s *Store) Product(id string) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfProduct(id)
	if idx < 0 {
		return model.Product{}, false
	}
	return s.products[idx].Clone(), true
}

// Products returns a copy of all products in catalog order.
func (s *Store) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Categories returns a copy of all categories.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.categories)
}

// Category returns a copy of the category with id.
func (s *Store) Category(id string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOfCategory(id)
	if idx < 0 {
		return model.Category{}, false
	}
	return s.categories[idx].Clone(), true
}

// CountByCategory returns the number of products per category id.
func (s *Store) CountByCategory() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.categories))
	for _, c := range s.categories {
		counts[c.ID] = 0
	}
	for _, p := range s.products {
		counts[p.Category]++
	}
	return counts
}

// Related returns up to n other products in catalog order.
func (s *Store) Related(id string, n int) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	related := make([]model.Product, 0, n)
	for _, p := range s.products {
		if len(related) == n {
			break
		}
		if p.ID != id {
			related = append(related, p.Clone())
		}
	}
	return related
}

// Flush writes the current products and categories to the blob store.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.products, s.categories, true, true)
}

// commit persists the touched blobs and swaps the new state in. Memory is
// only updated after every write succeeded.
func (s *Store) commit(ctx context.Context, products []model.Product, categories []model.Category, writeProducts, writeCategories bool) error {
	if writeProducts {
		if err := s.put(ctx, ProductsKey, products); err != nil {
			return err
		}
	}

	if writeCategories {
		if err := s.put(ctx, CategoriesKey, categories); err != nil {
			if writeProducts {
				// Put the previous product list back so both blobs agree again.
				if rbErr := s.put(ctx, ProductsKey, s.products); rbErr != nil {
					s.logger.Error().Err(rbErr).Msg("failed to restore products blob")
				}
			}
			return err
		}
	}

	s.products = products
	s.categories = categories
	return nil
}

func (s *Store) put(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to persist catalog")
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	return nil
}

func (s *Store) allocateProductID() string {
	ms := s.now().UnixMilli()
	for {
		id := "p-" + strconv.FormatInt(ms, 10)
		if _, taken := s.issued[id]; !taken {
			return id
		}
		ms++
	}
}

func (s *Store) indexOfProduct(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfCategory(id string) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func newCategory(id, raw string) model.Category {
	if raw == "" {
		raw = id
	}
	if id == model.OtherCategoryID {
		return model.OtherCategory()
	}
	return model.Category{
		ID:    id,
		Names: map[string]string{model.LangFI: raw, model.LangEN: raw},
	}
}

func hasName(c model.Category, name string) bool {
	if c.ID == name {
		return true
	}
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

func parsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("price must be a number")
	}
	if v < 0 {
		return 0, fmt.Errorf("price cannot be negative")
	}
	return v, nil
}

func parseStock(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("stock must be a whole number")
	}
	if v < 0 {
		return 0, fmt.Errorf("stock cannot be negative")
	}
	return v, nil
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 {
		out = append(out, PlaceholderImage)
	}
	return out
}

func cloneProducts(in []model.Product) []model.Product {
	out := make([]model.Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func cloneCategories(in []model.Category) []model.Category {
	out := make([]model.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
