package handler

import (
	"net/http"

	"saniteetti/internal/cart"
	"saniteetti/internal/checkout"
	"saniteetti/internal/model"
	"saniteetti/internal/storefront"

	"github.com/rs/zerolog"
)

// SessionHeader identifies the visitor's storefront session.
const SessionHeader = "X-Session-ID"

// CheckoutView is the client-facing state of a checkout.
type CheckoutView struct {
	Step    checkout.State     `json:"step"`
	Form    model.CheckoutForm `json:"form"`
	OrderID string             `json:"orderId,omitempty"`
}

// CartView is the full storefront state returned by every cart and checkout call.
type CartView struct {
	SessionID   string       `json:"sessionId"`
	Items       []cart.Line  `json:"items"`
	Totals      cart.Totals  `json:"totals"`
	OrderPlaced bool         `json:"orderPlaced"`
	Checkout    CheckoutView `json:"checkout"`
}

// AddItemRequest adds a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// SubmitRequest carries the language the order e-mails are written in.
type SubmitRequest struct {
	Lang string `json:"lang"`
}

// StorefrontHandler serves the session cart and checkout.
type StorefrontHandler struct {
	sessions *storefront.Registry
	products cart.ProductLookup
	orders   checkout.OrderCreator
	logger   zerolog.Logger
}

// NewStorefrontHandler creates a new storefront handler.
func NewStorefrontHandler(
	sessions *storefront.Registry,
	products cart.ProductLookup,
	orders checkout.OrderCreator,
	logger zerolog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		sessions: sessions,
		products: products,
		orders:   orders,
		logger:   logger.With().Str("handler", "storefront").Logger(),
	}
}

// Cart handles GET /api/cart requests.
func (h *StorefrontHandler) Cart(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error { return nil })
}

// AddItem handles POST /api/cart/items requests.
func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		if _, ok := h.products.Product(req.ProductID); !ok {
			return model.ErrProductNotFound
		}
		s.Cart.Add(req.ProductID, req.Quantity)
		return nil
	})
}

// RemoveItem handles POST /api/cart/items/{id}/decrement requests.
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		s.Cart.Remove(id)
		return nil
	})
}

// ClearCart handles DELETE /api/cart requests.
func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		s.Cart.Clear()
		return nil
	})
}

// OpenCheckout handles POST /api/checkout/open requests.
func (h *StorefrontHandler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		s.Checkout.Open()
		return nil
	})
}

// UpdateContact handles PUT /api/checkout/contact requests.
func (h *StorefrontHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var form model.ContactForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		s.Checkout.UpdateContact(form)
		return nil
	})
}

// UpdateBilling handles PUT /api/checkout/billing requests.
func (h *StorefrontHandler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	var form model.BillingForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		s.Checkout.UpdateBilling(form)
		return nil
	})
}

// Advance handles POST /api/checkout/advance requests.
func (h *StorefrontHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		return s.Checkout.Advance(s.Cart, h.products)
	})
}

// Back handles POST /api/checkout/back requests.
func (h *StorefrontHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(s *storefront.Session) error {
		return s.Checkout.Back()
	})
}

// Submit handles POST /api/checkout/submit requests.
func (h *StorefrontHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	h.serve(w, r, http.StatusCreated, func(s *storefront.Session) error {
		order, err := s.Checkout.Submit(r.Context(), s.Cart, h.products, req.Lang, h.orders)
		if err != nil {
			if order != nil {
				h.logger.Warn().Str("session_id", s.ID).Str("order_id", order.ID).Msg("order stored but e-mail failed")
				return &storedOrderError{orderID: order.ID, err: err}
			}
			return err
		}
		h.logger.Info().Str("session_id", s.ID).Str("order_id", order.ID).Msg("checkout submitted")
		return nil
	})
}

// serve resolves the caller's session, applies fn under the session lock and
// answers with the resulting view. The session id is echoed on every
// response, including errors, so a new visitor keeps the session it was issued.
func (h *StorefrontHandler) serve(w http.ResponseWriter, r *http.Request, status int, fn func(s *storefront.Session) error) {
	session, created := h.sessions.Session(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, session.ID)
	if created {
		h.logger.Debug().Str("session_id", session.ID).Msg("issued storefront session")
	}

	var view CartView
	err := h.sessions.With(session, func(s *storefront.Session) error {
		if err := fn(s); err != nil {
			return err
		}
		view = h.view(s)
		return nil
	})
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, status, view)
}

func (h *StorefrontHandler) view(s *storefront.Session) CartView {
	lines := s.Cart.Lines(h.products)
	if lines == nil {
		lines = []cart.Line{}
	}
	return CartView{
		SessionID:   s.ID,
		Items:       lines,
		Totals:      s.Cart.Totals(h.products, h.sessions.Pricing()),
		OrderPlaced: s.Cart.OrderPlaced(),
		Checkout: CheckoutView{
			Step:    s.Checkout.State(),
			Form:    s.Checkout.Form(),
			OrderID: s.Checkout.OrderID(),
		},
	}
}
