package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"saniteetti/internal/catalog"
	"saniteetti/internal/model"
	"saniteetti/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(filter catalog.Filter) []model.Product {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Product)
}

func (m *MockCatalogService) GetProduct(id string) (*service.ProductDetail, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProductDetail), args.Error(1)
}

func (m *MockCatalogService) Categories() []service.CategorySummary {
	args := m.Called()
	return args.Get(0).([]service.CategorySummary)
}

func (m *MockCatalogService) SaveProduct(ctx context.Context, form model.ProductForm) (*model.Product, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) AddCategory(ctx context.Context, nameFi, nameEn string) (*model.Category, error) {
	args := m.Called(ctx, nameFi, nameEn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func numberedProducts(n int) []model.Product {
	out := make([]model.Product, n)
	for i := range out {
		out[i] = model.Product{ID: fmt.Sprintf("p%d", i+1), Name: fmt.Sprintf("Product %d", i+1), Category: "paperit", Price: float64(i + 1)}
	}
	return out
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		query          string
		expectedFilter catalog.Filter
		expectedStatus int
		expectedIDs    []string
		expectedPages  int
		expectService  bool
	}{
		{
			name:           "First page by default",
			query:          "",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11", "p12"},
			expectedPages:  3,
			expectService:  true,
		},
		{
			name:           "Last partial page",
			query:          "?page=3",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"p25", "p26"},
			expectedPages:  3,
			expectService:  true,
		},
		{
			name:           "Page beyond the end is empty",
			query:          "?page=9",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{},
			expectedPages:  3,
			expectService:  true,
		},
		{
			name:           "Huge page is empty",
			query:          "?page=9223372036854775807",
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{},
			expectedPages:  3,
			expectService:  true,
		},
		{
			name:           "Filters are passed through",
			query:          "?query=pyyhe&category=paperit&sort=price&lang=en&pageSize=5",
			expectedFilter: catalog.Filter{Query: "pyyhe", Category: "paperit", Sort: "price", Lang: "en"},
			expectedStatus: http.StatusOK,
			expectedIDs:    []string{"p1", "p2", "p3", "p4", "p5"},
			expectedPages:  6,
			expectService:  true,
		},
		{
			name:           "Invalid page",
			query:          "?page=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Zero page",
			query:          "?page=0",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Page size too large",
			query:          "?pageSize=1000",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCatalogService)
			if tt.expectService {
				mockService.On("ListProducts", tt.expectedFilter).Return(numberedProducts(26))
			}

			w := httptest.NewRecorder()
			NewProductHandler(mockService, logger).List(w, httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp ProductListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, 26, resp.Total)
			assert.Equal(t, tt.expectedPages, resp.Pages)
			ids := []string{}
			for _, p := range resp.Products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)
		})
	}
}

func TestProductHandler_Get(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Found", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("GetProduct", "p1").Return(&service.ProductDetail{
			Product: model.Product{ID: "p1", Name: "Paper"},
			Related: []model.Product{{ID: "p2"}},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products/p1", nil)
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Get(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp service.ProductDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Paper", resp.Product.Name)
		assert.Len(t, resp.Related, 1)
	})

	t.Run("Not found", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("GetProduct", "nope").Return(nil, model.ErrProductNotFound)

		req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Get(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, model.ErrCodeProductNotFound, decodeError(t, w).Error)
	})
}

func TestProductHandler_Save(t *testing.T) {
	logger := zerolog.Nop()

	form := model.ProductForm{Name: "Paper", Category: "paperit", Price: "12,50"}

	t.Run("Create ignores a client id", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("SaveProduct", mock.Anything, form).Return(&model.Product{ID: "p-1", Name: "Paper"}, nil)

		withID := form
		withID.ID = "forged"
		body, _ := json.Marshal(withID)
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Create(w, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body)))

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Update takes the id from the path", func(t *testing.T) {
		expected := form
		expected.ID = "p-7"
		mockService := new(MockCatalogService)
		mockService.On("SaveProduct", mock.Anything, expected).Return(&model.Product{ID: "p-7"}, nil)

		body, _ := json.Marshal(form)
		req := httptest.NewRequest(http.MethodPut, "/api/products/p-7", bytes.NewReader(body))
		req.SetPathValue("id", "p-7")
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Validation failure", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("SaveProduct", mock.Anything, form).
			Return(nil, fmt.Errorf("failed to save product: %w", model.ErrValidation.WithMessage("Price must be a number")))

		body, _ := json.Marshal(form)
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Create(w, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Price must be a number", decodeError(t, w).Message)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		mockService := new(MockCatalogService)
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Create(w, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("{")))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
	})
}

func TestProductHandler_Categories(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("List", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("Categories").Return([]service.CategorySummary{
			{Category: model.Category{ID: "paperit", Names: map[string]string{"fi": "Paperit", "en": "Paper"}}, Count: 4},
		})

		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).Categories(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp CategoryListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Categories, 1)
		assert.Equal(t, 4, resp.Categories[0].Count)
		assert.Equal(t, "paperit", resp.Categories[0].ID)
	})

	t.Run("Add duplicate", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("AddCategory", mock.Anything, "Paperit", "").
			Return(nil, fmt.Errorf("failed to add category: %w", model.ErrCategoryExists))

		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).AddCategory(w,
			httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(`{"nameFi":"Paperit"}`)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Add", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("AddCategory", mock.Anything, "Saippuat", "Soaps").
			Return(&model.Category{ID: "saippuat", Names: map[string]string{"fi": "Saippuat", "en": "Soaps"}}, nil)

		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).AddCategory(w,
			httptest.NewRequest(http.MethodPost, "/api/categories", bytes.NewBufferString(`{"nameFi":"Saippuat","nameEn":"Soaps"}`)))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("Delete unknown", func(t *testing.T) {
		mockService := new(MockCatalogService)
		mockService.On("DeleteCategory", mock.Anything, "nope").Return(model.ErrCategoryNotFound)

		req := httptest.NewRequest(http.MethodDelete, "/api/categories/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		NewProductHandler(mockService, logger).DeleteCategory(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_Delete(t *testing.T) {
	mockService := new(MockCatalogService)
	mockService.On("DeleteProduct", mock.Anything, "p1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil)
	req.SetPathValue("id", "p1")
	w := httptest.NewRecorder()
	NewProductHandler(mockService, zerolog.Nop()).Delete(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}
