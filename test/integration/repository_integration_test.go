package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"saniteetti/internal/model"
	"saniteetti/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresOrderAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	repo := repository.NewPostgresOrderRepository(testDB.Pool, zerolog.Nop())

	request := model.OrderRequest{
		Customer: model.Customer{Company: "Oy Ab", Email: "anna@example.fi"},
		Items:    []model.OrderItem{{ProductID: "towel", Name: "WC-paperi", Quantity: 1, UnitPrice: 15.86}},
		Lang:     "fi",
		Subtotal: 15.86,
		Shipping: 15,
		Total:    30.86,
	}

	t.Run("Concurrent submissions get distinct ids", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		srv := NewTestServer(t, repo)

		const n = 8
		ids := make(chan string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := &client{t: t, server: srv.Handler}
				w := c.do(http.MethodPost, "/api/orders", request)
				if w.Code != http.StatusCreated {
					ids <- fmt.Sprintf("status %d", w.Code)
					return
				}
				var resp model.CreateOrderResponse
				_ = json.Unmarshal(w.Body.Bytes(), &resp)
				ids <- resp.OrderID
			}()
		}
		wg.Wait()
		close(ids)

		seen := map[string]bool{}
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		for i := 0; i < n; i++ {
			assert.True(t, seen[fmt.Sprintf("%d", 11002+i)])
		}
	})

	t.Run("Shipped transition survives a new server", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		admin := &client{t: t, server: NewTestServer(t, repo).Handler, admin: true}

		w := admin.do(http.MethodPost, "/api/orders", request)
		require.Equal(t, http.StatusCreated, w.Code)

		w = admin.do(http.MethodPost, "/api/orders/11002/shipped", nil)
		require.Equal(t, http.StatusOK, w.Code)

		restarted := &client{t: t, server: NewTestServer(t, repository.NewPostgresOrderRepository(testDB.Pool, zerolog.Nop())).Handler, admin: true}
		w = restarted.do(http.MethodGet, "/api/orders/11002", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var order model.Order
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
		assert.Equal(t, model.OrderStatusShipped, order.Status)
		assert.NotNil(t, order.ShippedAt)
		assert.Equal(t, request.Items, order.Items)
	})
}
