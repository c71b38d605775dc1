package service

import (
	"context"
	"errors"
	"testing"

	"saniteetti/internal/catalog"
	"saniteetti/internal/model"
	"saniteetti/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartPruner is a mock implementation of CartPruner.
type MockCartPruner struct {
	mock.Mock
}

func (m *MockCartPruner) DropProduct(productID string) int {
	args := m.Called(productID)
	return args.Int(0)
}

func newCatalogService(t *testing.T) (CatalogService, *MockCartPruner, *storage.MemoryStore) {
	t.Helper()
	blobs := storage.NewMemoryStore()
	store, err := catalog.NewStore(context.Background(), blobs, zerolog.Nop())
	require.NoError(t, err)
	pruner := new(MockCartPruner)
	return NewCatalogService(store, pruner, zerolog.Nop()), pruner, blobs
}

func TestCatalogService_ListProducts_NormalisesCategory(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	products := svc.ListProducts(catalog.Filter{Category: "hand soap"})

	require.Len(t, products, 1)
	assert.Equal(t, "soap5", products[0].ID)
}

func TestCatalogService_GetProduct(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	detail, err := svc.GetProduct("spray")
	require.NoError(t, err)
	assert.Equal(t, "spray", detail.Product.ID)
	assert.Len(t, detail.Related, 3)
	for _, p := range detail.Related {
		assert.NotEqual(t, "spray", p.ID)
	}

	_, err = svc.GetProduct("")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
	_, err = svc.GetProduct("missing")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func TestCatalogService_Categories(t *testing.T) {
	svc, _, _ := newCatalogService(t)

	summaries := svc.Categories()

	counts := make(map[string]int)
	for _, s := range summaries {
		counts[s.ID] = s.Count
	}
	assert.Equal(t, 2, counts["Käsipyyhkeet"])
	assert.Equal(t, 1, counts["Saippuat"])
	assert.Equal(t, 0, counts[model.OtherCategoryID])
}

func TestCatalogService_DeleteProduct_PrunesCarts(t *testing.T) {
	svc, pruner, _ := newCatalogService(t)
	ctx := context.Background()

	pruner.On("DropProduct", "bag").Return(2)

	require.NoError(t, svc.DeleteProduct(ctx, "bag"))
	pruner.AssertExpectations(t)

	err := svc.DeleteProduct(ctx, "bag")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
	pruner.AssertNumberOfCalls(t, "DropProduct", 1)
}

func TestCatalogService_SaveProduct(t *testing.T) {
	svc, _, blobs := newCatalogService(t)
	ctx := context.Background()

	product, err := svc.SaveProduct(ctx, model.ProductForm{
		Name: "Mikrokuituliina", SKU: "MK1", Category: "cleaning", Price: "4,90", Stock: "12",
	})
	require.NoError(t, err)
	assert.Equal(t, "Puhdistus", product.Category)

	blobs.PutErr = errors.New("read-only")
	_, err = svc.SaveProduct(ctx, model.ProductForm{
		Name: "Other", SKU: "O1", Category: "Muut", Price: "1", Stock: "1",
	})
	assert.ErrorIs(t, err, model.ErrPersistence)
}

func TestCatalogService_Categories_AddAndDelete(t *testing.T) {
	svc, _, _ := newCatalogService(t)
	ctx := context.Background()

	category, err := svc.AddCategory(ctx, "Suojaimet", "Protection")
	require.NoError(t, err)
	assert.Equal(t, "Suojaimet", category.ID)

	_, err = svc.AddCategory(ctx, "Suojaimet", "")
	assert.ErrorIs(t, err, model.ErrCategoryExists)

	require.NoError(t, svc.DeleteCategory(ctx, "Suojaimet"))
	assert.ErrorIs(t, svc.DeleteCategory(ctx, "Suojaimet"), model.ErrCategoryNotFound)
}
