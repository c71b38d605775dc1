package handler

import (
	"net/http"
	"time"

	"saniteetti/internal/export"
	"saniteetti/internal/model"
	"saniteetti/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	loc     *time.Location
	now     func() time.Time
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler. Exported timestamps are shown
// in Finnish local time.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		loc = time.UTC
	}
	return &OrderHandler{
		service: service,
		loc:     loc,
		now:     time.Now,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /api/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, model.OrderListResponse{Orders: orders})
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		if order != nil {
			h.logger.Warn().Str("order_id", order.ID).Msg("order stored but e-mail failed")
			err = &storedOrderError{orderID: order.ID, err: err}
		}
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateOrderResponse{OrderID: order.ID})
}

// Get handles GET /api/orders/{orderId} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// MarkShipped handles POST /api/orders/{orderId}/shipped requests.
func (h *OrderHandler) MarkShipped(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("orderId")
	order, err := h.service.MarkShipped(r.Context(), id)
	if err != nil {
		if order != nil {
			h.logger.Warn().Str("order_id", id).Msg("order shipped but e-mail failed")
		}
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.ShippedResponse{OK: true, Order: *order})
}

// Export handles GET /api/orders/export requests with an xlsx workbook.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	data, err := export.OrdersXLSX(orders, h.loc)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(h.now().In(h.loc))+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to write export")
	}
}
