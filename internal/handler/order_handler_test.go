package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saniteetti/internal/export"
	"saniteetti/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) MarkShipped(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func testOrder(id string) *model.Order {
	return &model.Order{
		ID:        id,
		Lang:      "fi",
		Status:    model.OrderStatusNew,
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Customer:  model.Customer{Company: "Oy Ab", Contact: "Anna", Email: "anna@example.fi", Address: "Katu 1"},
		Items:     []model.OrderItem{{ProductID: "p1", Name: "Paper", Quantity: 2, UnitPrice: 10, PriceUnit: "€ / säkki"}},
		Subtotal:  20,
		Shipping:  15,
		Total:     35,
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	validRequest := &model.OrderRequest{
		Customer: model.Customer{Company: "Oy Ab", Email: "anna@example.fi"},
		Items:    []model.OrderItem{{ProductID: "p1", Quantity: 2}},
		Lang:     "fi",
		Total:    35,
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectedCode   string
		expectedStored string
		expectService  bool
	}{
		{
			name:           "Success",
			requestBody:    validRequest,
			mockReturn:     testOrder("11001"),
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Missing fields",
			requestBody:    &model.OrderRequest{},
			mockError:      model.ErrInvalidOrder,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidOrder,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Mail failure after the order was stored",
			requestBody:    validRequest,
			mockReturn:     testOrder("11002"),
			mockError:      fmt.Errorf("%w: smtp down", model.ErrNotificationFailed),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeNotificationFailed,
			expectedStored: "11002",
			expectService:  true,
		},
		{
			name:           "Persistence failure",
			requestBody:    validRequest,
			mockError:      fmt.Errorf("%w: disk full", model.ErrPersistence),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodePersistence,
			expectService:  true,
		},
		{
			name:           "Unclassified failure",
			requestBody:    validRequest,
			mockError:      errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			if tt.expectService {
				mockService.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.expectedCode, resp.Error)
				assert.Equal(t, tt.expectedStored, resp.OrderID)
			} else {
				var resp model.CreateOrderResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "11001", resp.OrderID)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Returns orders", func(t *testing.T) {
		mockService := new(MockOrderService)
		mockService.On("ListOrders", mock.Anything).Return([]model.Order{*testOrder("11002"), *testOrder("11001")}, nil)

		w := httptest.NewRecorder()
		NewOrderHandler(mockService, logger).List(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var resp model.OrderListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Orders, 2)
		assert.Equal(t, "11002", resp.Orders[0].ID)
	})

	t.Run("Empty list is an empty array", func(t *testing.T) {
		mockService := new(MockOrderService)
		mockService.On("ListOrders", mock.Anything).Return(nil, nil)

		w := httptest.NewRecorder()
		NewOrderHandler(mockService, logger).List(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"orders":[]}`, w.Body.String())
	})

	t.Run("Store failure", func(t *testing.T) {
		mockService := new(MockOrderService)
		mockService.On("ListOrders", mock.Anything).Return(nil, model.ErrPersistence)

		w := httptest.NewRecorder()
		NewOrderHandler(mockService, logger).List(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestOrderHandler_Get(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		orderID        string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
	}{
		{name: "Found", orderID: "11001", mockReturn: testOrder("11001"), expectedStatus: http.StatusOK},
		{name: "Not found", orderID: "99999", mockError: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			mockService.On("GetOrder", mock.Anything, tt.orderID).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.orderID, nil)
			req.SetPathValue("orderId", tt.orderID)
			w := httptest.NewRecorder()

			NewOrderHandler(mockService, logger).Get(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_MarkShipped(t *testing.T) {
	logger := zerolog.Nop()

	shipped := testOrder("11001")
	shippedAt := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	shipped.Status = model.OrderStatusShipped
	shipped.ShippedAt = &shippedAt

	tests := []struct {
		name           string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
	}{
		{name: "Shipped", mockReturn: shipped, expectedStatus: http.StatusOK},
		{name: "Unknown order", mockError: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound},
		{name: "Mail not configured", mockReturn: shipped, mockError: model.ErrMailNotConfigured, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			mockService.On("MarkShipped", mock.Anything, "11001").Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodPost, "/api/orders/11001/shipped", nil)
			req.SetPathValue("orderId", "11001")
			w := httptest.NewRecorder()

			NewOrderHandler(mockService, logger).MarkShipped(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp model.ShippedResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.OK)
				assert.Equal(t, model.OrderStatusShipped, resp.Order.Status)
			}
		})
	}
}

func TestOrderHandler_Export(t *testing.T) {
	mockService := new(MockOrderService)
	mockService.On("ListOrders", mock.Anything).Return([]model.Order{*testOrder("11001")}, nil)

	handler := NewOrderHandler(mockService, zerolog.Nop())
	handler.now = func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	handler.Export(w, httptest.NewRequest(http.MethodGet, "/api/orders/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orders-20260314-")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	cell, err := f.GetCellValue(export.OrdersSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "11001", cell)
}
